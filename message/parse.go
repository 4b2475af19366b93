package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-globalmail/internal/scanner"
	"github.com/zostay/go-globalmail/message/header"
	"github.com/zostay/go-globalmail/message/header/field"
	"github.com/zostay/go-globalmail/message/header/param"
	"github.com/zostay/go-globalmail/message/transfer"
)

var (
	// ErrNoBoundary means a top-level multipart has no boundary parameter.
	// The message is returned as an *Opaque along with it.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrLargeHeader means the header is longer than WithMaxHeaderLength
	// allows.
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

	// ErrLargePart means a part is longer than WithMaxPartLength allows.
	ErrLargePart = errors.New("a message part exceeds the maximum parse length")

	// ErrTooDeep means parts nest deeper than WithMaxNesting allows.
	ErrTooDeep = errors.New("message parts are nested too deeply")

	// ErrParserClosed is returned when a FeedParser is used after Close.
	ErrParserClosed = errors.New("the parser has been closed")
)

// headerSeparators are the blank lines that may end a header, in the order
// they are tried. The line break of each is its first half.
var headerSeparators = [][]byte{
	[]byte("\r\n\r\n"),
	[]byte("\n\r\n\r"),
	[]byte("\n\n"),
	[]byte("\r\r"),
}

// headerEnd returns the offset just past the blank line that ends the header
// in buf and the line break that blank line uses, or -1 if there is none yet.
// When buf begins at the start of the header, a line break right away is an
// empty header.
func headerEnd(buf []byte, atStart bool) (int, []byte) {
	for _, sep := range headerSeparators {
		if lb := sep[:len(sep)/2]; atStart && bytes.HasPrefix(buf, lb) {
			return len(lb), lb
		}
	}

	for _, sep := range headerSeparators {
		if ix := bytes.Index(buf, sep); ix >= 0 {
			return ix + len(sep), sep[:len(sep)/2]
		}
	}
	return -1, nil
}

// headerSearch looks for the end of a header that is read in pieces without
// searching the same bytes twice.
type headerSearch struct {
	from int
}

// next returns the end of the header in buf, which holds everything read so
// far, or -1 if it has not arrived yet.
func (s *headerSearch) next(buf []byte) int {
	if end, _ := headerEnd(buf[s.from:], s.from == 0); end >= 0 {
		return s.from + end
	}

	// the longest separator may begin in the last three bytes
	s.from = max(len(buf)-3, 0)
	return -1
}

// splitUnixFrom cuts an mbox "From " envelope line off the front of data.
func splitUnixFrom(data []byte) (string, []byte) {
	if !bytes.HasPrefix(data, []byte("From ")) {
		return "", data
	}

	eol := bytes.IndexAny(data, "\r\n")
	if eol < 0 {
		return string(data), nil
	}

	rest := data[eol+1:]
	if data[eol] == '\r' && len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	return string(data[:eol]), rest
}

// record logs a defect and adds it to the list.
func (pr *parser) record(defects []error, depth int, err error) []error {
	pr.logger.Debug().Err(err).Int("depth", depth).Msg("message defect")
	return append(defects, err)
}

// parseToOpaque reads the header of one part and keeps its body undecoded.
// The envelope line is only looked for at the top of the input.
func (pr *parser) parseToOpaque(data []byte, top bool, depth int) *Opaque {
	var unixFrom string
	if top {
		unixFrom, data = splitUnixFrom(data)
	}

	hdr, body := data, []byte(nil)
	end, lb := headerEnd(data, true)
	found := end >= 0
	if found {
		hdr, body = data[:end-len(lb)], data[end:]
	} else {
		lb = header.DetectBreak(data).Bytes()
	}

	var defects []error
	head, err := header.Parse(hdr, header.Break(lb))
	if head == nil {
		head = &header.Header{}
		head.SetBreak(header.Break(lb))
	}

	var bad *field.BadStartError
	if errors.As(err, &bad) {
		defects = pr.record(defects, depth, &StructuralParseError{
			Kind:   HeaderBadStart,
			Detail: fmt.Sprintf("%d bytes skipped", len(bad.BadStart)),
			Err:    bad,
		})
	}

	if !found && len(data) > 0 {
		defects = pr.record(defects, depth, &StructuralParseError{Kind: MissingHeaderBodySeparator})
	}

	if _, err := head.GetDate(); err != nil && !errors.Is(err, header.ErrNoSuchField) {
		defects = pr.record(defects, depth, &StructuralParseError{Kind: InvalidDate, Err: err})
	}

	head.SetUnixFrom(unixFrom)

	return &Opaque{
		Header:      *head,
		body:        body,
		encoded:     true,
		noSeparator: !found,
		defects:     defects,
	}
}

// Parse reads a whole message from r and parses it as a FeedParser would,
// returning a *Multipart, *Encapsulated, or *Opaque.
//
// With WithoutMultipart, only the header is read. The rest of r becomes the
// body of the returned *Opaque and is read when first needed, so r must stay
// usable until then.
//
// Parse returns what it managed to parse whenever it can, even with an error.
// After ErrLargeHeader, r may have been partly read.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := newParser(opts)
	if pr.maxDepth == 0 {
		return pr.parseHeaderOnly(r)
	}

	fp := &FeedParser{pr: pr}
	chunk := make([]byte, pr.chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if _, werr := fp.Write(chunk[:n]); werr != nil {
				return nil, werr
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			return fp.Close()
		case err != nil:
			return nil, err
		}
	}
}

// parseHeaderOnly reads r only up to the end of the header.
func (pr *parser) parseHeaderOnly(r io.Reader) (Generic, error) {
	var (
		buf    bytes.Buffer
		search headerSearch
	)
	chunk := make([]byte, pr.chunkSize)
	for {
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		if end := search.next(buf.Bytes()); end >= 0 {
			if pr.maxHeaderLen > 0 && end > pr.maxHeaderLen {
				return nil, ErrLargeHeader
			}

			data := buf.Bytes()
			msg := pr.parseToOpaque(data[:end], true, 0)
			msg.body = nil
			msg.rest = &remainder{data[end:], r}
			return pr.leaf(msg, 0, false), nil
		}

		if pr.maxHeaderLen > 0 && buf.Len() > pr.maxHeaderLen {
			return nil, ErrLargeHeader
		}

		if err != nil {
			// the input ended inside the header
			return pr.leaf(pr.parseToOpaque(buf.Bytes(), true, 0), 0, false), nil
		}
	}
}

// leaf finishes a part that is not parsed further. It gets utf-8 as its
// default charset inside message/global or under a UTF-8 policy, and its body
// is decoded when DecodeTransferEncoding was given.
func (pr *parser) leaf(msg *Opaque, depth int, inGlobal bool) *Opaque {
	if inGlobal || pr.policy.AllowUTF8() {
		msg.defaultCharset = "utf-8"
	}

	if !pr.decode || !msg.encoded {
		return msg
	}

	// a multipart left unparsed keeps its body as is
	if mt, err := msg.GetMediaType(); err == nil && strings.HasPrefix(mt, "multipart/") {
		return msg
	}

	msg.encoded = false
	if msg.rest != nil {
		msg.rest = transfer.ApplyTransferDecoding(&msg.Header, msg.rest)
		return msg
	}

	cte, _ := msg.GetTransferEncoding()
	if transfer.IsIdentity(cte) {
		return msg
	}

	var err error
	msg.body, err = transfer.Decode(cte, msg.body)
	if err != nil {
		msg.defects = pr.record(msg.defects, depth, &CodecDecodeWarning{
			Encoding: transfer.Normalize(cte),
			Err:      err,
		})
	}
	return msg
}

// parse turns msg into a *Multipart or *Encapsulated when its Content-Type
// calls for it and the depth limits allow.
func (pr *parser) parse(msg *Opaque, depth int, inGlobal bool) (Generic, error) {
	switch {
	case pr.maxNesting > 0 && depth > pr.maxNesting:
		return pr.leaf(msg, depth, inGlobal), ErrTooDeep
	case pr.maxDepth >= 0 && depth >= pr.maxDepth:
		return pr.leaf(msg, depth, inGlobal), nil
	}

	// a Content-Type with broken parameters still names its type
	pv, _ := msg.GetContentType()
	if pv == nil {
		return pr.leaf(msg, depth, inGlobal), nil
	}

	switch pv.Type() {
	case "multipart":
		return pr.parseMultipart(msg, pv, depth, inGlobal)
	case "message":
		// delivery status reports hold blocks of fields, not a message
		if sub := pv.Subtype(); sub != "delivery-status" && sub != "global-delivery-status" {
			return pr.parseEncapsulated(msg, pv, depth, inGlobal)
		}
	}

	return pr.leaf(msg, depth, inGlobal), nil
}

// parseEncapsulated parses the body of a message/* part, decoding a base64
// or quoted-printable body first. Everything below message/global defaults
// to utf-8.
func (pr *parser) parseEncapsulated(
	msg *Opaque,
	pv *param.Value,
	depth int,
	inGlobal bool,
) (Generic, error) {
	defects := msg.defects

	var raw []byte
	inner := msg.body
	if cte, _ := msg.GetTransferEncoding(); !transfer.IsIdentity(cte) {
		var err error
		raw = msg.body
		inner, err = transfer.Decode(cte, msg.body)
		if err != nil {
			defects = pr.record(defects, depth, &CodecDecodeWarning{
				Encoding: transfer.Normalize(cte),
				Err:      err,
			})
		}
	}

	global := inGlobal || pv.Subtype() == "global"
	child, err := pr.parse(pr.parseToOpaque(inner, false, depth+1), depth+1, global)
	if err != nil {
		return pr.leaf(msg, depth, inGlobal), err
	}

	return &Encapsulated{
		Header:  msg.Header,
		msg:     child,
		raw:     raw,
		defects: defects,
	}, nil
}

// parseMultipart splits the body of a multipart/* part at its boundary and
// parses each part.
func (pr *parser) parseMultipart(
	msg *Opaque,
	pv *param.Value,
	depth int,
	inGlobal bool,
) (Generic, error) {
	boundary := pv.Boundary()
	if boundary == "" {
		msg.defects = pr.record(msg.defects, depth, &StructuralParseError{
			Kind:   MissingBoundaryParameter,
			Detail: pv.MediaType(),
		})
		var err error
		if depth == 0 {
			err = ErrNoBoundary
		}
		return pr.leaf(msg, depth, inGlobal), err
	}

	prefix, suffix, chunks, err := pr.splitParts(msg.body, boundary, msg.Break())
	if err != nil {
		return pr.leaf(msg, depth, inGlobal), err
	}

	if prefix == nil {
		msg.defects = pr.record(msg.defects, depth, &StructuralParseError{
			Kind:   NoBoundaryDelimiter,
			Detail: boundary,
		})
		return pr.leaf(msg, depth, inGlobal), nil
	}

	defects := msg.defects
	if suffix == nil {
		defects = pr.record(defects, depth, &StructuralParseError{
			Kind:   MissingCloseDelimiter,
			Detail: boundary,
		})
	}

	parts := make([]Part, 0, len(chunks))
	for _, chunk := range chunks {
		part, err := pr.parse(pr.parseToOpaque(chunk, false, depth+1), depth+1, inGlobal)
		if err != nil {
			return pr.leaf(msg, depth, inGlobal), err
		}
		parts = append(parts, part)
	}

	return &Multipart{
		Header:  msg.Header,
		prefix:  prefix,
		suffix:  suffix,
		parts:   parts,
		defects: defects,
	}, nil
}

// delimiters are the boundary lines of one multipart body.
type delimiters struct {
	first  []byte // "--b" LB, at the very start of the body
	middle []byte // LB "--b" LB
	close  []byte // LB "--b--" LB
	last   []byte // LB "--b--", at the very end of the body
}

func newDelimiters(boundary string, lb header.Break) delimiters {
	dash := "--" + boundary
	return delimiters{
		first:  []byte(dash + lb.String()),
		middle: []byte(lb.String() + dash + lb.String()),
		close:  []byte(lb.String() + dash + "--" + lb.String()),
		last:   []byte(lb.String() + dash + "--"),
	}
}

// splitParts cuts a multipart body into the preamble, the parts, and the
// epilogue. A nil prefix means no opening delimiter was found and a nil
// suffix means no closing one was.
//
// Every byte ends up somewhere so the body can be written back unchanged. The
// line break before the opening delimiter is the end of the prefix and the one
// after the closing delimiter starts the suffix. The line breaks around the
// other delimiters belong to the delimiters.
func (pr *parser) splitParts(
	body []byte,
	boundary string,
	lb header.Break,
) (prefix, suffix []byte, parts [][]byte, err error) {
	d := newDelimiters(boundary, lb)

	const (
		atStart = iota
		inParts
		atEnd
		done
	)
	state := atStart

	split := func(data []byte, atEOF bool) (int, []byte, error) {
		switch state {
		case atStart:
			if !atEOF && len(data) < len(d.first) {
				return 0, nil, nil
			}

			state = inParts
			if bytes.HasPrefix(data, d.first) {
				prefix = []byte{}
				return len(d.first), nil, scanner.ErrContinue
			}
			return 0, nil, scanner.ErrContinue

		case inParts:
			ix := bytes.Index(data, d.middle)
			switch {
			case ix >= 0 && prefix == nil:
				prefix = bytes.Clone(data[:ix+len(lb)])
				return ix + len(d.middle), nil, nil
			case ix >= 0:
				return ix + len(d.middle), data[:ix], nil
			case atEOF:
				state = atEnd
				return 0, nil, scanner.ErrContinue
			}
			return 0, nil, nil

		case atEnd:
			state = done
			if prefix == nil {
				return len(data), nil, nil
			}

			if ix := bytes.Index(data, d.close); ix >= 0 {
				suffix = bytes.Clone(data[ix+len(d.last):])
				return len(data), data[:ix], nil
			}
			if bytes.HasSuffix(data, d.last) {
				suffix = []byte{}
				return len(data), data[:len(data)-len(d.last)], nil
			}
			if len(data) > 0 {
				// unclosed, so the rest is the last part
				return len(data), data, nil
			}
			return 0, nil, nil
		}

		return len(data), nil, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, pr.chunkSize), pr.maxPartLen)
	sc.Split(scanner.MakeSplitFuncExitByAdvance(split))
	for sc.Scan() {
		parts = append(parts, bytes.Clone(sc.Bytes()))
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, nil, ErrLargePart
		}
		return nil, nil, nil, err
	}

	return prefix, suffix, parts, nil
}
