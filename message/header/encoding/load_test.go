package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-globalmail/message/header/encoding"
	"github.com/zostay/go-globalmail/message/header/field"
)

func TestCharsetDecoder(t *testing.T) {
	t.Parallel()

	dec, err := encoding.CharsetDecoder("iso-8859-15", []byte{0x41, 0xa4})
	assert.NoError(t, err)
	assert.Equal(t, "A€", dec)

	dec, err = encoding.CharsetDecoder("us-ascii", []byte("ⒶⒷⒸ"))
	assert.NoError(t, err)
	assert.Equal(t, "ⒶⒷⒸ", dec)

	_, err = encoding.CharsetDecoder("x-no-such-thing", []byte("abc"))
	assert.ErrorIs(t, err, field.ErrUnsupportedCharset)
}

func TestCharsetEncoder(t *testing.T) {
	t.Parallel()

	enc, err := encoding.CharsetEncoder("windows-1252", "A€")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x41, 0x80}, enc)

	_, err = encoding.CharsetEncoder("x-no-such-thing", "abc")
	assert.ErrorIs(t, err, field.ErrUnsupportedCharset)
}

func TestInstalled(t *testing.T) {
	t.Parallel()

	dec, err := field.CharsetDecoder("koi8-r", []byte{0xf0, 0xd2, 0xc9})
	assert.NoError(t, err)
	assert.Equal(t, "При", dec)
}
