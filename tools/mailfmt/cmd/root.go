// Package cmd implements the mailfmt commands, which parse, inspect, and
// regenerate email messages from files or standard input.
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	// every charset IANA knows about
	_ "github.com/zostay/go-globalmail/message/header/encoding"

	"github.com/zostay/go-globalmail/message"
)

var (
	rootCmd = &cobra.Command{
		Use:               "mailfmt",
		Short:             "Parse, inspect, and reformat email messages",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
	}

	verbose bool
	logger  = zerolog.Nop()
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser defects and other details to stderr")

	rootCmd.AddCommand(reformatCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(roundtripCmd)
	rootCmd.AddCommand(qpCmd)
}

// Execute runs the command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		TimeFormat: time.RFC3339,
	}
	logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return nil
}

// openInput returns the file named by the first argument, or standard input
// when there is no argument or the argument is "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(args[0])
}

// readInput reads all of the input named by the arguments.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	in, err := openInput(cmd, args)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	return io.ReadAll(in)
}

// parseInput parses the message named by the arguments and logs its defects.
func parseInput(cmd *cobra.Command, args []string, opts ...message.ParseOption) (message.Generic, error) {
	in, err := openInput(cmd, args)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	opts = append(opts, message.WithLogger(logger))
	msg, err := message.Parse(in, opts...)
	if err != nil {
		return msg, err
	}

	for _, d := range message.AllDefects(msg) {
		logger.Warn().Err(d).Msg("message defect")
	}

	return msg, nil
}
