// Package globalmail is a library for reading, building, and writing email
// messages, including internationalized messages as described by RFC 6532.
// Header fields may carry raw UTF-8, nested messages may be message/global,
// and the library will still produce 7-bit safe output for transports that
// need it.
//
// The code is split according to part of message rather than according to
// feature. A message is treated as a message.Opaque, a message.Multipart, or a
// message.Encapsulated. The message.Opaque is a header and a body that the
// library assigns no meaning to beyond its transfer encoding and charset. The
// message.Multipart breaks a multipart/* body into sub-parts, which may be
// further multipart parts or opaque parts. The message.Encapsulated holds a
// single nested message found in a message/rfc822 or message/global part.
//
// To read messages, use message.Parse() on an io.Reader or a
// message.FeedParser when the message arrives a piece at a time. The parser is
// lenient: problems it can work around are recorded as defects on the part
// rather than returned as errors. See message.AllDefects().
//
// To build messages, use message.Buffer, or the message.NewOpaque(),
// message.NewMultipart(), and message.Embed() constructors.
//
// There are two ways to write a message. WriteTo() reproduces the message as
// it was read, byte-for-byte, so that changing one header field leaves the
// rest of the message untouched. This matters to mail filtering software that
// must pass messages through unharmed. A message.Generator instead writes the
// message according to a policy.Policy, which chooses line separators, line
// length, whether header fields may carry UTF-8, and which transfer encoding
// to use for content that cannot be sent as-is.
//
// Header fields are managed with header.Header, which offers typed accessors
// for the common fields. Low-level access to individual field.Field objects is
// also available. The quoted-printable and base64 codecs are in the transfer
// package.
package globalmail
