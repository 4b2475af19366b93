package message

import (
	"bufio"

	"github.com/rs/zerolog"

	"github.com/zostay/go-globalmail/message/policy"
)

// Parser defaults.
const (
	// DefaultMaxMultipartDepth is how many levels of parts are parsed before
	// deeper ones are left as *Opaque.
	DefaultMaxMultipartDepth = 10

	// DefaultMaxNesting is the depth at which parsing fails with ErrTooDeep.
	DefaultMaxNesting = 64

	// DefaultChunkSize is how many bytes Parse reads at a time.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength limits how far to look for the end of a header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize

	// DefaultMaxPartLength limits the size of a single part.
	DefaultMaxPartLength = 32 << 20
)

// parser holds the settings shared by Parse, FeedParser, and the readers of
// buffered parts.
type parser struct {
	maxHeaderLen int
	maxPartLen   int
	maxDepth     int // < 0 for no limit
	maxNesting   int // <= 0 for no limit
	chunkSize    int
	decode       bool
	policy       *policy.Policy
	logger       zerolog.Logger
}

func newParser(opts []ParseOption) *parser {
	pr := &parser{
		maxHeaderLen: DefaultMaxHeaderLength,
		maxPartLen:   DefaultMaxPartLength,
		maxDepth:     DefaultMaxMultipartDepth,
		maxNesting:   DefaultMaxNesting,
		chunkSize:    DefaultChunkSize,
		policy:       policy.Default,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(pr)
	}

	if pr.chunkSize <= 0 {
		pr.chunkSize = DefaultChunkSize
	}
	if pr.policy == nil {
		pr.policy = policy.Default
	}
	return pr
}

// ParseOption configures Parse and NewFeedParser.
type ParseOption func(pr *parser)

// WithMaxHeaderLength fails the parse with ErrLargeHeader when no header end
// is found within n bytes. A value of 0 or less removes the limit.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithMaxPartLength fails the parse with ErrLargePart when a part at any level
// is longer than n bytes.
func WithMaxPartLength(n int) ParseOption {
	return func(pr *parser) { pr.maxPartLen = n }
}

// DecodeTransferEncoding decodes the body of every leaf part while parsing.
// Without it bodies stay encoded so the message round-trips unchanged.
// Content and Text decode on demand either way.
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decode = true }
}

// WithChunkSize sets how many bytes Parse reads at a time.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.chunkSize = chunkSize }
}

// WithMaxDepth sets how many levels of parts are parsed. Parts below are left
// as *Opaque without error.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithoutMultipart makes Parse read only the header and return an *Opaque
// whose body is read from the input when first needed.
func WithoutMultipart() ParseOption {
	return WithMaxDepth(0)
}

// WithoutRecursion parses the parts of a top-level multipart but none below.
func WithoutRecursion() ParseOption {
	return WithMaxDepth(1)
}

// WithUnlimitedRecursion parses parts at any depth up to WithMaxNesting.
func WithUnlimitedRecursion() ParseOption {
	return WithMaxDepth(-1)
}

// WithMaxNesting fails the parse with ErrTooDeep when parts nest deeper than
// n. A value of 0 or less removes the limit.
func WithMaxNesting(n int) ParseOption {
	return func(pr *parser) { pr.maxNesting = n }
}

// WithPolicy sets the policy the input is expected to follow. When it allows
// UTF-8, text parts without a charset are read as utf-8.
func WithPolicy(p *policy.Policy) ParseOption {
	return func(pr *parser) { pr.policy = p }
}

// WithLogger sends a debug event for each defect found to logger.
func WithLogger(logger zerolog.Logger) ParseOption {
	return func(pr *parser) { pr.logger = logger }
}
