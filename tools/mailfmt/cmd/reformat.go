package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-globalmail/message"
	"github.com/zostay/go-globalmail/message/policy"
)

var (
	reformatCmd = &cobra.Command{
		Use:   "reformat [message]",
		Short: "Rewrite a message according to a generation policy",
		Long: `Parse the message and write it out again following the chosen policy. The
policy starts from a preset or a YAML policy file and the remaining flags
override individual settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: Reformat,
	}

	policyFile    string
	presetName    string
	allowUTF8     bool
	preferredCTE  string
	maxLineLength int
	useCRLF       bool
)

func init() {
	reformatCmd.Flags().StringVarP(&policyFile, "policy", "p", "", "YAML policy file")
	reformatCmd.Flags().StringVar(&presetName, "preset", "default", "preset policy: default, smtp, smtputf8, or http")
	reformatCmd.Flags().BoolVar(&allowUTF8, "utf8", false, "allow UTF-8 in header fields")
	reformatCmd.Flags().StringVar(&preferredCTE, "cte", "", "preferred transfer encoding: 7bit, 8bit, base64, or quoted-printable")
	reformatCmd.Flags().IntVar(&maxLineLength, "max-line", 78, "maximum line length, 0 for no limit")
	reformatCmd.Flags().BoolVar(&useCRLF, "crlf", false, "use CRLF line separators")
}

// buildPolicy builds the policy named by the reformat flags.
func buildPolicy(cmd *cobra.Command) (*policy.Policy, error) {
	var (
		base *policy.Policy
		err  error
	)
	if policyFile != "" {
		f, err := os.Open(policyFile)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		base, err = policy.Load(f)
		if err != nil {
			return nil, err
		}
	} else {
		base, err = policy.Named(presetName)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	opts := make([]policy.Option, 0, 4)
	if flags.Changed("utf8") {
		opts = append(opts, policy.WithAllowUTF8(allowUTF8))
	}
	if flags.Changed("cte") {
		opts = append(opts, policy.WithPreferredTransferEncoding(preferredCTE))
	}
	if flags.Changed("max-line") {
		opts = append(opts, policy.WithMaxLineLength(maxLineLength))
	}
	if flags.Changed("crlf") {
		sep := policy.LF
		if useCRLF {
			sep = policy.CRLF
		}
		opts = append(opts, policy.WithLineSeparator(sep))
	}

	return base.Clone(opts...)
}

// Reformat parses a message and generates it again under a policy.
func Reformat(cmd *cobra.Command, args []string) error {
	pol, err := buildPolicy(cmd)
	if err != nil {
		return err
	}
	logger.Debug().Stringer("policy", pol).Msg("reformatting")

	msg, err := parseInput(cmd, args, message.WithUnlimitedRecursion())
	if err != nil {
		return err
	}

	_, err = message.NewGenerator(cmd.OutOrStdout(), pol).Flatten(msg)
	return err
}
