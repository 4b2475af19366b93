package message

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateBoundary will generate a random MIME boundary that is probably unique
// in most circumstances. The boundary is built from a random UUID and never
// contains characters that need quoting in a Content-Type parameter.
func GenerateBoundary() string {
	return "_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "_"
}

// GenerateSafeBoundary will generate a random MIME boundary that is guaranteed
// to be safe with the given corpus of data. Use this when you want to generate
// a boundary for a known set of parts:
//
//	boundary := message.GenerateSafeBoundary(strings.Join(parts, ""))
//
// using this is likely to be total overkill, but in case you're paranoid.
func GenerateSafeBoundary(contents string) string {
	for {
		boundary := GenerateBoundary()
		if !strings.Contains(contents, boundary) {
			return boundary
		}
	}
}
