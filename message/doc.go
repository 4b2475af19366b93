// Package message reads and writes internationalized email messages. Header
// fields and bodies may carry raw UTF-8 as RFC 6532 allows, and messages of
// type message/global may nest another internationalized message inside a
// base64 or quoted-printable transfer encoding.
//
// Every message is a Generic, which is always one of three types:
//
// * *Opaque is a leaf part that holds content.
//
// * *Multipart is a multipart/* part that holds sub-parts.
//
// * *Encapsulated is a message/* part that holds a nested message.
//
// Messages are read with Parse or, for input that arrives in pieces, a
// FeedParser:
//
//	msg, err := message.Parse(r)
//	if err != nil {
//	  panic(err)
//	}
//
// The parser tolerates broken input. Whatever it had to work around is
// recorded on the part as a defect. See AllDefects.
//
// A parsed message can be written back out byte for byte with WriteTo. To
// write a message for a particular transport, use Generate or a Generator with
// a policy.Policy, which decides the line separator, the maximum line length,
// whether raw UTF-8 is allowed in headers, and what transfer encoding to use
// for 8-bit content:
//
//	out, err := message.Generate(msg, policy.SMTP)
//
// New messages are built with NewOpaque, NewMultipart, Embed, or a Buffer.
package message
