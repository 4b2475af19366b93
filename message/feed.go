package message

import (
	"bytes"
)

type feedState int

const (
	stateHeaders feedState = iota // still looking for the end of the header
	stateBody                     // header found, collecting the body
	stateDone                     // closed or failed
)

// FeedParser parses a message that arrives in pieces. Write each piece as it
// arrives, then call Close to get the parsed message. The header is checked
// against the WithMaxHeaderLength() limit as the pieces arrive. Everything
// else happens on Close.
//
// On Close, the header is split from the body at the first double line break
// and that line break style becomes the line break of the header. A first line
// starting with "From " is kept as the Unix-From line of the header. If the
// Content-Type is multipart/*, the body is split into parts on its boundary
// and each part is parsed the same way. If it is message/*, other than
// message/delivery-status and message/global-delivery-status, the body is
// parsed as a nested message, after decoding it first if it has a base64 or
// quoted-printable Content-Transfer-Encoding. Parsing stops quietly at the
// WithMaxDepth() limit and fails with ErrTooDeep past the WithMaxNesting()
// limit.
//
// Problems that the parser can work around are recorded as defects on the
// parts rather than returned as errors. See Part.Defects().
//
// A FeedParser is not safe for concurrent use.
type FeedParser struct {
	pr     *parser
	buf    bytes.Buffer
	state  feedState
	search headerSearch
	err    error
}

// NewFeedParser returns a FeedParser configured with the given options. The
// WithoutMultipart() option parses the header only, but the body is still
// collected in memory.
func NewFeedParser(opts ...ParseOption) *FeedParser {
	return &FeedParser{pr: newParser(opts)}
}

// Write adds the bytes to the message being parsed. It fails with
// ErrLargeHeader when the header grows past the configured limit and with
// ErrParserClosed after Close. Once Write fails, every later call fails the
// same way.
func (fp *FeedParser) Write(p []byte) (int, error) {
	if fp.state == stateDone {
		return 0, ErrParserClosed
	}
	if fp.err != nil {
		return 0, fp.err
	}

	fp.buf.Write(p)

	if fp.state == stateHeaders {
		fp.checkHeader()
		if fp.err != nil {
			return 0, fp.err
		}
	}

	return len(p), nil
}

// Feed is Write without the byte count.
func (fp *FeedParser) Feed(p []byte) error {
	_, err := fp.Write(p)
	return err
}

// checkHeader looks for the end of the header in the bytes added since the
// last check.
func (fp *FeedParser) checkHeader() {
	end := fp.search.next(fp.buf.Bytes())
	switch {
	case end >= 0 && fp.pr.maxHeaderLen > 0 && end > fp.pr.maxHeaderLen:
		fp.err = ErrLargeHeader
	case end >= 0:
		fp.state = stateBody
	case fp.pr.maxHeaderLen > 0 && fp.buf.Len() > fp.pr.maxHeaderLen:
		fp.err = ErrLargeHeader
	}
}

// Close finishes parsing and returns the message. Whenever possible, the
// message is returned even when an error is returned. Calling Close again
// returns ErrParserClosed.
func (fp *FeedParser) Close() (Generic, error) {
	if fp.state == stateDone {
		return nil, ErrParserClosed
	}
	fp.state = stateDone

	if fp.err != nil {
		return nil, fp.err
	}

	msg := fp.pr.parseToOpaque(fp.buf.Bytes(), true, 0)
	return fp.pr.parse(msg, 0, false)
}
