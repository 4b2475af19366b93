package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-globalmail/message/header/field"
)

func TestNew(t *testing.T) {
	t.Parallel()

	f := field.New("Subject", "testing")

	assert.Equal(t, "Subject: testing", f.String())
	assert.Equal(t, []byte("Subject: testing"), f.Bytes())
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "testing", f.Body())

	f.SetName("X-Subject")
	assert.Equal(t, "X-Subject: testing", f.String())
	assert.Equal(t, []byte("X-Subject: testing"), f.Bytes())
	assert.Equal(t, "X-Subject", f.Name())
	assert.Equal(t, "testing", f.Body())

	f.SetBody("foo bar baz")
	assert.Equal(t, "X-Subject: foo bar baz", f.String())
	assert.Equal(t, []byte("X-Subject: foo bar baz"), f.Bytes())
	assert.Equal(t, "X-Subject", f.Name())
	assert.Equal(t, "foo bar baz", f.Body())

	f.SetRaw([]byte("sUBJECT: TESTING"))
	assert.Equal(t, "sUBJECT: TESTING", f.String())
	assert.Equal(t, []byte("sUBJECT: TESTING"), f.Bytes())
	assert.Equal(t, "X-Subject", f.Name())
	assert.Equal(t, "foo bar baz", f.Body())

	f.SetName("Subject")
	assert.Equal(t, "Subject: foo bar baz", f.String())
	assert.Equal(t, []byte("Subject: foo bar baz"), f.Bytes())
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "foo bar baz", f.Body())

	f.SetRaw([]byte("oopsie poopsie"))
	assert.Equal(t, "oopsie poopsie", f.String())
	assert.Equal(t, []byte("oopsie poopsie"), f.Bytes())
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "foo bar baz", f.Body())
}

func TestParse(t *testing.T) {
	t.Parallel()

	f := field.Parse(field.Line("Subject : =?utf-8?b?4pK24pK34pK4?= and\r\n more\r\n"), []byte("\r\n"))
	assert.Equal(t, "Subject", f.Name())
	assert.Equal(t, "ⒶⒷⒸ and more", f.Body())
	assert.True(t, f.IsParsed())
	assert.Equal(t, "Subject : =?utf-8?b?4pK24pK34pK4?= and\r\n more", f.String())
	assert.Equal(t, [][]byte{
		[]byte("Subject : =?utf-8?b?4pK24pK34pK4?= and"),
		[]byte(" more"),
	}, f.Raw.Lines())
	assert.False(t, f.Raw.Is8Bit())

	f = field.Parse(field.Line("From: ⒶⒷⒸ.①②③@mydomain.com\n"), []byte("\n"))
	assert.Equal(t, "ⒶⒷⒸ.①②③@mydomain.com", f.Body())
	assert.True(t, f.Raw.Is8Bit())

	c := f.Clone()
	c.SetBody("changed")
	assert.False(t, c.IsParsed())
	assert.True(t, f.IsParsed())
	assert.Equal(t, "ⒶⒷⒸ.①②③@mydomain.com", f.Body())
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	lines, err := field.ParseLines([]byte("A: 1\nB: 2\n  3\nC: 4\n"), []byte("\n"))
	assert.NoError(t, err)
	assert.Equal(t, field.Lines{
		field.Line("A: 1\n"),
		field.Line("B: 2\n  3\n"),
		field.Line("C: 4\n"),
	}, lines)
}

func TestEncodeWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain text", field.EncodeWords("plain text"))
	assert.Equal(t,
		"Hello =?utf-8?b?4pK24pK34pK4IOKRoOKRoeKRog==?= bye",
		field.EncodeWords("Hello ⒶⒷⒸ ①②③ bye"))

	dec, err := field.Decode(field.EncodeWords("Hello ⒶⒷⒸ ①②③ bye"))
	assert.NoError(t, err)
	assert.Equal(t, "Hello ⒶⒷⒸ ①②③ bye", dec)

	// repeated spaces go inside the encoded text
	assert.Equal(t,
		"=?utf-8?b?4pK24pK34pK4ICDikaDikaHikaI=?=",
		field.EncodeWords("ⒶⒷⒸ  ①②③"))
	assert.Equal(t,
		"=?utf-8?b?4pK24pK34pK4IA==?= bye",
		field.EncodeWords("ⒶⒷⒸ  bye"))

	for _, s := range []string{"ⒶⒷⒸ  ①②③", "ⒶⒷⒸ   bye", "hi  ⒶⒷⒸ", " ⒶⒷⒸ  ①"} {
		dec, err := field.Decode(field.EncodeWords(s))
		assert.NoError(t, err)
		assert.Equal(t, s, dec)
	}
}
