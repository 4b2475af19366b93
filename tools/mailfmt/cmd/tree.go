package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/go-globalmail/message"
	"github.com/zostay/go-globalmail/message/walker"
)

var treeCmd = &cobra.Command{
	Use:   "tree [message]",
	Short: "Show the part structure of a message",
	Args:  cobra.MaximumNArgs(1),
	RunE:  Tree,
}

// Tree prints one line per part with its media type, followed by any defects
// recorded on the part.
func Tree(cmd *cobra.Command, args []string) error {
	msg, err := parseInput(cmd, args, message.WithUnlimitedRecursion())
	if err != nil {
		return err
	}

	return PrintTree(cmd.OutOrStdout(), msg)
}

// PrintTree writes the part tree of msg to w.
func PrintTree(w io.Writer, msg message.Generic) error {
	return walker.Parts(func(depth, _ int, part message.Part) error {
		indent := strings.Repeat("  ", depth)

		mt, err := part.GetHeader().GetMediaType()
		if err != nil || mt == "" {
			mt = "(none)"
		}

		line := indent + mt
		if n := len(part.GetParts()); part.IsMultipart() {
			line += fmt.Sprintf(" [%d parts]", n)
		}
		if cte, err := part.GetHeader().GetTransferEncoding(); err == nil && cte != "" {
			line += " " + cte
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		for _, d := range part.Defects() {
			if _, err := fmt.Fprintf(w, "%s  ! %v\n", indent, d); err != nil {
				return err
			}
		}

		return nil
	}).Walk(msg)
}
