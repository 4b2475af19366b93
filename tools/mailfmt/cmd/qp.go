package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/zostay/go-globalmail/message/transfer"
)

var (
	qpCmd = &cobra.Command{
		Use:   "qp",
		Short: "Quoted-printable encoding and decoding",
	}

	qpEncodeCmd = &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a file as quoted-printable",
		Args:  cobra.MaximumNArgs(1),
		RunE:  QPEncode,
	}

	qpDecodeCmd = &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a quoted-printable file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  QPDecode,
	}

	qpLineLength int
	qpCRLF       bool
)

func init() {
	qpEncodeCmd.Flags().IntVar(&qpLineLength, "max-line", transfer.DefaultLineLength, "maximum encoded line length")
	qpEncodeCmd.Flags().BoolVar(&qpCRLF, "crlf", false, "input and output lines end in CRLF")

	qpCmd.AddCommand(qpEncodeCmd)
	qpCmd.AddCommand(qpDecodeCmd)
}

// QPEncode writes the input encoded as quoted-printable.
func QPEncode(cmd *cobra.Command, args []string) error {
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	eol := "\n"
	if qpCRLF {
		eol = "\r\n"
	}

	_, err = cmd.OutOrStdout().Write(transfer.EncodeQuotedPrintable(in, qpLineLength, eol))
	return err
}

// QPDecode writes the decoded input. Malformed escapes are passed through and
// logged as a warning.
func QPDecode(cmd *cobra.Command, args []string) error {
	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out, err := transfer.DecodeQuotedPrintable(in)
	var malformed *transfer.MalformedEscapeError
	if errors.As(err, &malformed) {
		logger.Warn().Ints("offsets", malformed.Offsets).Msg("malformed quoted-printable escapes")
	} else if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
