package message_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-globalmail/message"
)

const nestedMultipart = "Subject: test\n" +
	"Content-Type: multipart/mixed; boundary=frontier\n" +
	"\n" +
	"This is the preamble.\n" +
	"--frontier\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"part one\n" +
	"--frontier\n" +
	"Content-Type: multipart/alternative; boundary=inner\n" +
	"\n" +
	"--inner\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"plain\n" +
	"--inner\n" +
	"Content-Type: text/html\n" +
	"\n" +
	"<p>html</p>\n" +
	"--inner--\n" +
	"--frontier--\n" +
	"This is the epilogue.\n"

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"LF", nestedMultipart},
		{"CRLF", strings.ReplaceAll(nestedMultipart, "\n", "\r\n")},
		{"NoEpilogue", strings.TrimSuffix(nestedMultipart, "\nThis is the epilogue.\n")},
		{"FoldedHeader", "Subject: a subject\n\tthat is folded\nX-Empty:\n\nbody\n"},
		{"EmptyHeader", "\nbody only\n"},
		{"HeaderOnly", "Subject: no body\n\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			msg, err := message.Parse(strings.NewReader(test.in))
			require.NoError(t, err)
			assert.Empty(t, message.AllDefects(msg))

			out := &bytes.Buffer{}
			n, err := msg.WriteTo(out)
			assert.NoError(t, err)
			assert.Equal(t, int64(len(test.in)), n)
			assert.Equal(t, test.in, out.String())
		})
	}
}

func TestParse_Structure(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(nestedMultipart))
	require.NoError(t, err)

	mm, isMultipart := msg.(*message.Multipart)
	require.True(t, isMultipart)

	parts := mm.GetParts()
	require.Len(t, parts, 2)

	one, isOpaque := parts[0].(*message.Opaque)
	require.True(t, isOpaque)
	txt, err := one.Text()
	assert.NoError(t, err)
	assert.Equal(t, "part one", txt)

	alt, isMultipart := parts[1].(*message.Multipart)
	require.True(t, isMultipart)
	require.Len(t, alt.GetParts(), 2)

	html, isOpaque := alt.GetParts()[1].(*message.Opaque)
	require.True(t, isOpaque)
	txt, err = html.Text()
	assert.NoError(t, err)
	assert.Equal(t, "<p>html</p>", txt)
}

func TestParse_WithMaxDepth(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(nestedMultipart), message.WithoutRecursion())
	require.NoError(t, err)

	parts := msg.GetParts()
	require.Len(t, parts, 2)
	assert.IsType(t, &message.Opaque{}, parts[1])

	out := &bytes.Buffer{}
	_, err = msg.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, nestedMultipart, out.String())
}

func nestedRFC822(levels int) string {
	return strings.Repeat("Content-Type: message/rfc822\n\n", levels) + "Subject: inner\n\nhi\n"
}

func TestParse_Encapsulated(t *testing.T) {
	t.Parallel()

	in := nestedRFC822(3)
	msg, err := message.Parse(strings.NewReader(in))
	require.NoError(t, err)

	depth := 0
	for {
		enc, isEncapsulated := msg.(*message.Encapsulated)
		if !isEncapsulated {
			break
		}
		depth++
		msg = enc.Message()
	}
	assert.Equal(t, 3, depth)

	subj, err := msg.GetHeader().GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "inner", subj)
}

func TestParse_WithMaxNesting(t *testing.T) {
	t.Parallel()

	in := nestedRFC822(6)

	msg, err := message.Parse(strings.NewReader(in),
		message.WithUnlimitedRecursion(),
		message.WithMaxNesting(3))
	assert.ErrorIs(t, err, message.ErrTooDeep)
	assert.NotNil(t, msg)

	// quietly truncated by the depth limit instead
	msg, err = message.Parse(strings.NewReader(in),
		message.WithMaxDepth(2),
		message.WithMaxNesting(3))
	require.NoError(t, err)
	require.IsType(t, &message.Encapsulated{}, msg)
	child := msg.GetParts()[0]
	require.IsType(t, &message.Encapsulated{}, child)
	assert.IsType(t, &message.Opaque{}, child.GetParts()[0])

	_, err = message.Parse(strings.NewReader(in), message.WithUnlimitedRecursion())
	assert.NoError(t, err)
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += n
	return n, err
}

func TestParse_WithoutMultipart(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("0123456789abcdef", 1024)
	in := "Subject: lazy\nContent-Type: text/plain\n\n" + body
	cr := &countingReader{r: strings.NewReader(in)}

	msg, err := message.Parse(cr, message.WithoutMultipart(), message.WithChunkSize(64))
	require.NoError(t, err)
	assert.Equal(t, 64, cr.n)

	op, isOpaque := msg.(*message.Opaque)
	require.True(t, isOpaque)

	subj, err := op.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "lazy", subj)

	got, err := op.Body()
	assert.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.Equal(t, len(in), cr.n)
}

func TestParse_WithoutMultipartIgnoresParts(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(nestedMultipart), message.WithoutMultipart())
	require.NoError(t, err)
	assert.IsType(t, &message.Opaque{}, msg)

	out := &bytes.Buffer{}
	_, err = msg.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, nestedMultipart, out.String())
}

func TestParse_ErrLargeHeader(t *testing.T) {
	t.Parallel()

	in := "Subject: " + strings.Repeat("x", 100) + "\n\nbody"

	_, err := message.Parse(strings.NewReader(in), message.WithMaxHeaderLength(32))
	assert.ErrorIs(t, err, message.ErrLargeHeader)

	_, err = message.Parse(strings.NewReader(in),
		message.WithMaxHeaderLength(32),
		message.WithoutMultipart())
	assert.ErrorIs(t, err, message.ErrLargeHeader)

	_, err = message.Parse(strings.NewReader(in), message.WithMaxHeaderLength(0))
	assert.NoError(t, err)
}

func TestParse_ErrLargePart(t *testing.T) {
	t.Parallel()

	in := "Content-Type: multipart/mixed; boundary=b\n\n" +
		"--b\n" +
		"Content-Type: text/plain\n\n" +
		strings.Repeat("too long ", 50) + "\n" +
		"--b--\n"

	msg, err := message.Parse(strings.NewReader(in),
		message.WithChunkSize(16),
		message.WithMaxPartLength(64))
	assert.ErrorIs(t, err, message.ErrLargePart)
	assert.IsType(t, &message.Opaque{}, msg)
}

func TestParse_DecodeTransferEncoding(t *testing.T) {
	t.Parallel()

	const in = "Content-Type: text/plain\n" +
		"Content-Transfer-Encoding: base64\n" +
		"\n" +
		"aGVsbG8sIHdvcmxk\n"

	msg, err := message.Parse(strings.NewReader(in), message.DecodeTransferEncoding())
	require.NoError(t, err)

	op, isOpaque := msg.(*message.Opaque)
	require.True(t, isOpaque)
	assert.False(t, op.IsEncoded())

	body, err := op.Body()
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", string(body))

	// the same with a header-only parse, decoding as the body is read
	msg, err = message.Parse(strings.NewReader(in),
		message.DecodeTransferEncoding(),
		message.WithoutMultipart())
	require.NoError(t, err)

	got, err := io.ReadAll(msg.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", string(got))
}

func TestParse_DeliveryStatus(t *testing.T) {
	t.Parallel()

	const in = "Content-Type: message/delivery-status\n" +
		"\n" +
		"Reporting-MTA: dns; mail.example.com\n" +
		"\n" +
		"Final-Recipient: rfc822; someone@example.com\n" +
		"Action: failed\n"

	msg, err := message.Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.IsType(t, &message.Opaque{}, msg)
}

func structuralKinds(msg message.Generic) []message.DefectKind {
	var kinds []message.DefectKind
	for _, d := range message.AllDefects(msg) {
		var spe *message.StructuralParseError
		if errors.As(d, &spe) {
			kinds = append(kinds, spe.Kind)
		}
	}
	return kinds
}

func TestParse_Defects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		err     error
		msgType message.Generic
		kinds   []message.DefectKind
	}{
		{
			name:    "MissingBoundaryTop",
			in:      "Content-Type: multipart/mixed\n\n--x\n\nhi\n--x--\n",
			err:     message.ErrNoBoundary,
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.MissingBoundaryParameter},
		},
		{
			name: "MissingBoundaryNested",
			in: "Content-Type: multipart/mixed; boundary=outer\n\n" +
				"--outer\n" +
				"Content-Type: multipart/alternative\n\n" +
				"stuff\n" +
				"--outer--\n",
			msgType: &message.Multipart{},
			kinds:   []message.DefectKind{message.MissingBoundaryParameter},
		},
		{
			name:    "NoBoundaryDelimiter",
			in:      "Content-Type: multipart/mixed; boundary=xyz\n\nno parts here\n",
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.NoBoundaryDelimiter},
		},
		{
			name: "MissingCloseDelimiter",
			in: "Content-Type: multipart/mixed; boundary=xyz\n\n" +
				"--xyz\n" +
				"Content-Type: text/plain\n\n" +
				"the only part\n",
			msgType: &message.Multipart{},
			kinds:   []message.DefectKind{message.MissingCloseDelimiter},
		},
		{
			name:    "MissingHeaderBodySeparator",
			in:      "Subject: hi\nX-Other: yes\n",
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.MissingHeaderBodySeparator},
		},
		{
			name:    "HeaderBadStart",
			in:      " leading junk\nSubject: hi\n\nbody\n",
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.HeaderBadStart},
		},
		{
			name:    "InvalidDate",
			in:      "Date: sometime last week\nSubject: hi\n\nbody\n",
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.InvalidDate},
		},
		{
			name:    "DuplicateDate",
			in:      "Date: Mon, 05 Dec 2022 17:09:53 +0000\nDate: Tue, 06 Dec 2022 17:09:53 +0000\n\nbody\n",
			msgType: &message.Opaque{},
			kinds:   []message.DefectKind{message.InvalidDate},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			msg, err := message.Parse(strings.NewReader(test.in))
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
			} else {
				assert.NoError(t, err)
			}

			require.NotNil(t, msg)
			assert.IsType(t, test.msgType, msg)
			assert.Equal(t, test.kinds, structuralKinds(msg))

			// the defective input still makes a round trip, except for the
			// skipped junk
			if test.name == "HeaderBadStart" {
				return
			}

			out := &bytes.Buffer{}
			_, err = msg.WriteTo(out)
			assert.NoError(t, err)
			assert.Equal(t, test.in, out.String())
		})
	}
}

func TestParse_CodecDecodeWarning(t *testing.T) {
	t.Parallel()

	const in = "Content-Type: message/global\n" +
		"Content-Transfer-Encoding: base64\n" +
		"\n" +
		"U3ViamVjdDogaGkKCmJvZHkK!!!\n"

	msg, err := message.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.IsType(t, &message.Encapsulated{}, msg)

	defects := msg.Defects()
	require.Len(t, defects, 1)
	var warning *message.CodecDecodeWarning
	assert.True(t, errors.As(defects[0], &warning))
	assert.Equal(t, "base64", warning.Encoding)

	subj, err := msg.GetParts()[0].GetHeader().GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "hi", subj)
}
