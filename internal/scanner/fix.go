// Package scanner adapts bufio.SplitFunc for split functions that track state
// and consume input without producing a token for it.
package scanner

import (
	"bufio"
	"errors"
)

// ErrContinue may be returned by a split function wrapped with
// MakeSplitFuncExitByAdvance to have it called again right away on the data
// that remains after advancing. It is never passed on to the bufio.Scanner.
var ErrContinue = errors.New("split func continue")

// MakeSplitFuncExitByAdvance wraps split so that input may be consumed without
// a token being returned.
//
// A plain bufio.SplitFunc stops the scan at EOF as soon as it returns a nil
// token, even when it advanced over bytes and more remain. The wrapped function
// keeps calling split on the remaining data until one of these happens:
//
//   - split returns a token
//   - split returns an error other than ErrContinue
//   - split asks for more input by advancing 0 bytes
//   - split consumes all of the data
//
// The returned advance is the sum of every advance made along the way.
func MakeSplitFuncExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		total := 0
		for {
			advance, token, err := split(data, atEOF)

			if errors.Is(err, ErrContinue) {
				data = data[advance:]
				total += advance
				continue
			}

			if token != nil || err != nil || advance == 0 || advance >= len(data) {
				return total + advance, token, err
			}

			data = data[advance:]
			total += advance
		}
	}
}
