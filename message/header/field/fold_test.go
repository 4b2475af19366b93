package field_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-globalmail/message"
	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/header/field"
	"github.com/zostay/go-globalmail/message/policy"
)

func TestNewFoldEncoding(t *testing.T) {
	t.Parallel()

	_, err := field.NewFoldEncoding("", 78, 998)
	assert.ErrorIs(t, err, field.ErrFoldIndent)

	_, err = field.NewFoldEncoding(" x", 78, 998)
	assert.ErrorIs(t, err, field.ErrFoldIndent)

	_, err = field.NewFoldEncoding("    ", 4, 998)
	assert.ErrorIs(t, err, field.ErrFoldIndent)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, field.DoNotFold, 998)
	assert.ErrorIs(t, err, field.ErrFoldWidth)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, 78, field.DoNotFold)
	assert.ErrorIs(t, err, field.ErrFoldWidth)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, 998, 78)
	assert.ErrorIs(t, err, field.ErrFoldWidth)

	vf, err := field.NewFoldEncoding(field.DefaultFoldIndent, field.DoNotFold, field.DoNotFold)
	assert.NoError(t, err)
	assert.Equal(t, field.DoNotFold, vf.Width())

	vf, err = field.NewFoldEncoding("\t", 4, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, vf.Width())
}

func TestFoldEncoding_Unfold(t *testing.T) {
	t.Parallel()

	uf := field.DefaultFoldEncoding.Unfold([]byte("a\r\n b\n\tc\n d\n"))
	assert.Equal(t, []byte("a b\tc d"), uf)
}

func TestFoldEncoding_Fold(t *testing.T) {
	t.Parallel()

	vf, err := field.NewFoldEncoding(field.DefaultFoldIndent, 10, 20)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"Short", "a b c d", "a b c d\n"},
		{"AtSpace", "aaaaa bbbbb", "aaaaa\n bbbbb\n"},
		{"AfterColon", "Name: xxxxxxxxx", "Name:\n xxxxxxxxx\n"},
		{"KeepsBreaks", "A: one\n two", "A: one\n two\n"},
		{"IndentsBareContinuation", "A: one\ntwo three", "A: one\n two three\n"},
		{"LongRun", "A: aaaaaaaaaaaaaaa b", "A:\n aaaaaaaaaaaaaaa\n b\n"},
		{"Forced", "aaaaabbbbbcccccdddddeeeeefffff", "aaaaabbbbb\n cccccdddd\n deeeeefffff\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			n, err := vf.Fold(buf, []byte(test.in), field.Break("\n"))
			assert.NoError(t, err)
			assert.Equal(t, test.out, buf.String())
			assert.Equal(t, int64(len(test.out)), n)
		})
	}
}

func TestFoldEncoding_DoNotFold(t *testing.T) {
	t.Parallel()

	long := "X-Long: " + strings.Repeat("word ", 40)
	buf := &bytes.Buffer{}
	_, err := field.DoNotFoldEncoding.Fold(buf, []byte(long), field.Break("\r\n"))
	assert.NoError(t, err)
	assert.Equal(t, long+"\r\n", buf.String())
}

// headerLines returns the header lines of a generated message.
func headerLines(out []byte, eol string) []string {
	head, _, _ := strings.Cut(string(out), eol+eol)
	return strings.Split(head, eol)
}

func TestFoldEncoding_PolicyWidths(t *testing.T) {
	t.Parallel()

	narrow := policy.Must(policy.New(
		policy.WithMaxLineLength(40),
		policy.WithLineSeparator("\r\n"),
	))

	values := []string{
		strings.Repeat("Ⓐ", 10) + " plain words " + strings.Repeat("①②③ ", 12) + "end",
		strings.TrimSpace(strings.Repeat("just some ascii words ", 10)),
		"Grüße aus Köln," + strings.Repeat(" naïve café", 8),
	}

	// raw UTF-8 can only be folded at whitespace
	unbroken := strings.Repeat("Ⓐ", 120)

	pols := map[string]*policy.Policy{
		"Default":  policy.Default,
		"SMTP":     policy.SMTP,
		"SMTPUTF8": policy.SMTPUTF8,
		"Narrow":   narrow,
	}

	for name, pol := range pols {
		pol := pol
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			vs := values
			if !pol.AllowUTF8() {
				vs = append([]string{unbroken}, values...)
			}

			for _, v := range vs {
				h := &header.Header{}
				h.SetSubject(v)
				h.SetMediaType("text/plain")
				out, err := message.Generate(message.NewOpaque(h, []byte("body\n")), pol)
				require.NoError(t, err)

				for _, line := range headerLines(out, pol.LineSeparator()) {
					assert.LessOrEqual(t, len(line), pol.MaxLineLength(), line)
				}

				back, err := message.Parse(bytes.NewReader(out))
				require.NoError(t, err)
				subj, err := back.GetHeader().GetSubject()
				assert.NoError(t, err)
				assert.Equal(t, v, subj)
			}
		})
	}
}

func TestFoldEncoding_EncodedWordsAfterColon(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetSubject(strings.Repeat("Ⓐ", 120))
	out, err := message.Generate(message.NewOpaque(h, []byte("body\n")), policy.SMTP)
	require.NoError(t, err)

	lines := headerLines(out, "\r\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "Subject:", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, " =?utf-8?b?"), line)
		assert.Len(t, line, 73)
	}
}
