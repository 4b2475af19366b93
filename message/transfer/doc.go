// Package transfer contains the Content-Transfer-Encoding codecs. Only the
// quoted-printable and base64 encodings transform bytes. The identity
// encodings (7bit, 8bit, binary, or no header at all) leave the bytes as-is.
//
// The codec works on whole byte slices first: EncodeQuotedPrintable,
// DecodeQuotedPrintable, EncodeBase64, and DecodeBase64. The streaming
// encoders and decoders and the Transcodings registry are built on top of
// those functions.
//
// For the sake of this package, "decoded" means the bytes are in the form
// named by the charset of the part, and "encoded" means the bytes are in the
// form named by the Content-Transfer-Encoding header.
//
// Decoding is total. Malformed input never stops a decode. The best-effort
// result is always returned, possibly together with a warning such as
// *MalformedEscapeError that callers may record and otherwise ignore.
package transfer
