package message_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	gomessage "github.com/emersion/go-message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zostay/go-globalmail/message"
	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/header/field"
	"github.com/zostay/go-globalmail/message/policy"
	"github.com/zostay/go-globalmail/message/transfer"
)

func makeUTF8Text(t *testing.T, content string) *message.Opaque {
	h := &header.Header{}
	h.SetMediaType("text/plain")
	require.NoError(t, h.SetCharset("utf-8"))
	return message.NewOpaque(h, []byte(content))
}

func TestGenerate_8BitBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pol    *policy.Policy
		expect string
	}{
		{"SMTP", policy.SMTP,
			"Content-Type: text/plain; charset=utf-8\r\n" +
				"Content-Transfer-Encoding: quoted-printable\r\n" +
				"\r\n" +
				"caf=C3=A9\r\n"},
		{"Default", policy.Default,
			"Content-Type: text/plain; charset=utf-8\n" +
				"\n" +
				"café\n"},
		{"Base64", policy.Must(policy.New(
			policy.WithPreferredTransferEncoding(policy.Base64),
		)),
			"Content-Type: text/plain; charset=utf-8\n" +
				"Content-Transfer-Encoding: base64\n" +
				"\n" +
				"Y2Fmw6kK\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			m := makeUTF8Text(t, "café\n")

			out, err := message.Generate(m, test.pol)
			require.NoError(t, err)
			assert.Equal(t, test.expect, string(out))

			// the message itself is untouched
			_, err = m.GetTransferEncoding()
			assert.ErrorIs(t, err, header.ErrNoSuchField)
		})
	}
}

func TestGenerate_EncodedWords(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetSubject(circledABC)
	m := message.NewOpaque(h, []byte("hi\n"))

	out, err := message.Generate(m, policy.Default)
	require.NoError(t, err)
	assert.Equal(t, "Subject: =?utf-8?b?4pK24pK34pK4?=\n\nhi\n", string(out))

	out, err = message.Generate(m, policy.SMTPUTF8)
	require.NoError(t, err)
	assert.Equal(t, "Subject: "+circledABC+"\r\n\r\nhi\r\n", string(out))
}

func TestGenerate_Parsed8BitField(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(
		"Subject: " + circledABC + "\nX-Plain:   kept   as is\n\nbody\n"))
	require.NoError(t, err)

	out, err := message.Generate(msg, policy.SMTP)
	require.NoError(t, err)
	assert.Equal(t,
		"Subject: =?utf-8?b?4pK24pK34pK4?=\r\n"+
			"X-Plain:   kept   as is\r\n"+
			"\r\n"+
			"body\r\n",
		string(out))

	out, err = message.Generate(msg, policy.SMTPUTF8)
	require.NoError(t, err)
	assert.Equal(t,
		"Subject: "+circledABC+"\r\n"+
			"X-Plain:   kept   as is\r\n"+
			"\r\n"+
			"body\r\n",
		string(out))
}

func TestGenerate_LineSeparators(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(nestedMultipart))
	require.NoError(t, err)

	out, err := message.Generate(msg, policy.SMTP)
	require.NoError(t, err)
	assert.Equal(t, strings.ReplaceAll(nestedMultipart, "\n", "\r\n"), string(out))

	back, err := message.Parse(bytes.NewReader(out))
	require.NoError(t, err)

	out, err = message.Generate(back, policy.Default)
	require.NoError(t, err)
	assert.Equal(t, nestedMultipart, string(out))
}

func TestGenerate_LongLines(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 1200) + "\n"

	h := &header.Header{}
	h.SetMediaType("text/plain")
	m := message.NewOpaque(h, []byte(long))

	out, err := message.Generate(m, policy.SMTP)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out),
		"Content-Type: text/plain\r\nContent-Transfer-Encoding: quoted-printable\r\n\r\n"))

	for _, line := range strings.Split(string(out), "\r\n") {
		assert.LessOrEqual(t, len(line), 78)
	}

	back, err := message.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	op, isOpaque := back.(*message.Opaque)
	require.True(t, isOpaque)

	content, err := op.Content()
	assert.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 1200)+"\r\n", string(content))
}

func TestGenerate_Encapsulated(t *testing.T) {
	t.Parallel()

	inner := makeUTF8Text(t, "café\n")
	inner.SetSubject(circledABC)

	msg, err := message.Embed(inner)
	require.NoError(t, err)

	mt, err := msg.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "message/global", mt)

	out, err := message.Generate(msg, policy.SMTP)
	require.NoError(t, err)
	assert.False(t, transfer.Is8Bit(out))

	s := string(out)
	assert.Contains(t, s, "Content-Type: message/global\r\n")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.Contains(t, s, "Content-Transfer-Encoding: quoted-printable\r\n")
	assert.Contains(t, s, "Subject: =E2=92=B6=E2=92=B7=E2=92=B8\r\n")
	assert.Contains(t, s, "caf=C3=A9\r\n")

	// the embedding is untouched
	_, err = msg.GetTransferEncoding()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	back, err := message.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	enc, isEncapsulated := back.(*message.Encapsulated)
	require.True(t, isEncapsulated)

	subj, err := enc.Message().GetHeader().GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, circledABC, subj)

	// 8bit transports get it as is
	out, err = message.Generate(msg, policy.SMTPUTF8)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Subject: "+circledABC+"\r\n")
	assert.NotContains(t, string(out), "Content-Transfer-Encoding")
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	ascii := message.NewOpaque(nil, []byte("hello\n"))

	msg, err := message.Embed(ascii)
	require.NoError(t, err)
	mt, err := msg.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "message/rfc822", mt)
	assert.Same(t, ascii, msg.Message())

	_, err = message.Embed(ascii,
		message.WithSubtype("rfc822"),
		message.WithTransferEncoding(transfer.Base64))
	assert.ErrorIs(t, err, message.ErrBadEmbedEncoding)

	msg, err = message.Embed(ascii,
		message.WithSubtype("global"),
		message.WithTransferEncoding(transfer.Base64))
	require.NoError(t, err)
	cte, err := msg.GetTransferEncoding()
	assert.NoError(t, err)
	assert.Equal(t, transfer.Base64, cte)

	out, err := message.Generate(msg, policy.SMTP)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "\r\n\r\nDQpoZWxsbw0K\r\n"))
}

func TestGenerate_MissingBoundary(t *testing.T) {
	t.Parallel()

	m := message.NewMultipart(&header.Header{}, htmlPart(), htmlPart())

	out, err := message.Generate(m, policy.Default)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Content-Type: multipart/mixed; boundary="))

	_, err = m.GetBoundary()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	back, err := message.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	require.IsType(t, &message.Multipart{}, back)
	assert.Len(t, back.GetParts(), 2)
	assert.Empty(t, message.AllDefects(back))
}

func TestGenerate_UnixFrom(t *testing.T) {
	t.Parallel()

	const from = "From alice@example.com Thu Jan  1 00:00:00 2026"

	msg, err := message.Parse(strings.NewReader(from + "\nSubject: hi\n\nbody\n"))
	require.NoError(t, err)

	out, err := message.Generate(msg, policy.SMTP)
	require.NoError(t, err)
	assert.Equal(t, from+"\r\nSubject: hi\r\n\r\nbody\r\n", string(out))
}

func TestGenerator_Flatten(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	g := message.NewGenerator(buf, nil)
	assert.Same(t, policy.Default, g.Policy())

	n, err := g.Flatten(makeUTF8Text(t, "one\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	n, err = g.Flatten(makeUTF8Text(t, "two\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("Content-Type: text/plain; charset=utf-8\n\ntwo\n")), n)

	_, err = g.Flatten(nil)
	assert.NoError(t, err)
}

func TestGenerate_Interop(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	m := message.MultipartMixed(
		makeUTF8Text(t, "café\n"),
		message.AttachmentBytes("dot.png", png, "", transfer.Base64),
	)
	m.Set(header.MIMEVersion, "1.0")

	out, err := message.Generate(m, policy.SMTP)
	require.NoError(t, err)

	e, err := gomessage.Read(bytes.NewReader(out))
	require.NoError(t, err)

	mr := e.MultipartReader()
	require.NotNil(t, mr)

	p, err := mr.NextPart()
	require.NoError(t, err)
	mt, params, err := p.Header.ContentType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.Equal(t, "utf-8", params["charset"])
	body, err := io.ReadAll(p.Body)
	assert.NoError(t, err)
	assert.Equal(t, "café\r\n", string(body))

	p, err = mr.NextPart()
	require.NoError(t, err)
	mt, _, err = p.Header.ContentType()
	assert.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	body, err = io.ReadAll(p.Body)
	assert.NoError(t, err)
	assert.Equal(t, png, body)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGenerate_HeaderRoundTrip(t *testing.T) {
	t.Parallel()

	for name, pol := range map[string]*policy.Policy{
		"HTTP":    policy.HTTP,
		"SMTP":    policy.SMTP,
		"Default": policy.Default,
	} {
		pol := pol
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rapid.Check(t, headerRoundTrip(pol))
		})
	}
}

func TestGenerate_HeaderSpacesRoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"ⒶⒷⒸ  ①②③", "ⒶⒷⒸ   x", "x  ⒶⒷⒸ", "a   b"} {
		h := &header.Header{}
		h.SetSubject(v)
		out, err := message.Generate(message.NewOpaque(h, []byte("x\n")), policy.SMTP)
		require.NoError(t, err)
		assert.True(t, field.IsASCII(string(out)))

		back, err := message.Parse(bytes.NewReader(out))
		require.NoError(t, err)
		subj, err := back.GetHeader().GetSubject()
		assert.NoError(t, err)
		assert.Equal(t, v, subj)
	}
}

func headerRoundTrip(pol *policy.Policy) func(*rapid.T) {
	return func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`X-[A-Za-z]{1,10}`), 1, 8).Draw(t, "names")

		h := &header.Header{}
		bodies := make([]string, len(names))
		for i, name := range names {
			bodies[i] = rapid.StringMatching(`[a-zA-Z0-9éü✓]([a-zA-Z0-9éü✓ ,.]{0,60}[a-zA-Z0-9éü✓.])?`).Draw(t, "body")
			h.Add(name, bodies[i])
		}

		out, err := message.Generate(message.NewOpaque(h, []byte("x\n")), pol)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		back, err := message.Parse(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}

		fields := back.GetHeader().ListFields()
		if len(fields) != len(names) {
			t.Fatalf("got %d fields, want %d", len(fields), len(names))
		}
		for i, f := range fields {
			if f.Name() != names[i] || f.Body() != bodies[i] {
				t.Fatalf("field %d: got %q: %q, want %q: %q", i, f.Name(), f.Body(), names[i], bodies[i])
			}
		}
	}
}
