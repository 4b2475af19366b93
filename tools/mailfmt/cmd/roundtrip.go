package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-globalmail/message"
)

// ErrRoundTripMismatch is returned by the roundtrip command when the message
// written back differs from the input.
var ErrRoundTripMismatch = errors.New("the message did not round-trip")

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [message]",
	Short: "Check that a message is written back exactly as it was read",
	Args:  cobra.MaximumNArgs(1),
	RunE:  RoundTrip,
}

// RoundTrip parses the message, writes it back with WriteTo, and prints a line
// diff when the two differ.
func RoundTrip(cmd *cobra.Command, args []string) error {
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	msg, err := message.Parse(bytes.NewReader(in),
		message.WithUnlimitedRecursion(),
		message.WithLogger(logger))
	if err != nil {
		return err
	}

	out := &bytes.Buffer{}
	if _, err := msg.WriteTo(out); err != nil {
		return err
	}

	return CompareRoundTrip(cmd.OutOrStdout(), string(in), out.String())
}

// CompareRoundTrip writes a line diff of the two texts to w and returns
// ErrRoundTripMismatch if they differ.
func CompareRoundTrip(w io.Writer, in, out string) error {
	if in == out {
		_, err := fmt.Fprintln(w, "ok")
		return err
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(in, out)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s%q\n", prefix, line); err != nil {
				return err
			}
		}
	}

	return ErrRoundTripMismatch
}
