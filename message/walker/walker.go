// Package walker visits the parts of a parsed message tree. Both
// *message.Multipart and *message.Encapsulated are branches, so the parts of a
// message/global or message/rfc822 attachment are visited like any others.
package walker

import (
	"errors"

	"github.com/zostay/go-globalmail/message"
)

// SkipParts may be returned by a Parts or Processor callback to have the walk
// skip the sub-parts of the current part and carry on with the next sibling.
var SkipParts = errors.New("skip sub-parts")

// Parts is called for each part of a message. The depth is 0 for the message
// itself. The index i is the position of the part among its siblings.
type Parts func(depth, i int, part message.Part) error

// Walk performs a depth first traversal starting with the message itself. If
// the callback returns an error other than SkipParts, the walk stops and the
// error is returned.
func (w Parts) Walk(msg message.Generic) error {
	type entry struct {
		depth int
		i     int
		part  message.Part
	}

	stack := []entry{{0, 0, msg}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		err := w(e.depth, e.i, e.part)
		if errors.Is(err, SkipParts) {
			continue
		} else if err != nil {
			return err
		}

		parts := e.part.GetParts()
		for i := len(parts) - 1; i >= 0; i-- {
			stack = append(stack, entry{e.depth + 1, i, parts[i]})
		}
	}

	return nil
}

// WalkLeaves works like Walk, but only calls the callback for the parts that
// hold content rather than sub-parts.
func (w Parts) WalkLeaves(msg message.Generic) error {
	var lw Parts = func(depth, i int, part message.Part) error {
		if part.IsMultipart() {
			return nil
		}
		return w(depth, i, part)
	}
	return lw.Walk(msg)
}

// WalkBranches works like Walk, but only calls the callback for the parts that
// hold sub-parts.
func (w Parts) WalkBranches(msg message.Generic) error {
	var bw Parts = func(depth, i int, part message.Part) error {
		if !part.IsMultipart() {
			return nil
		}
		return w(depth, i, part)
	}
	return bw.Walk(msg)
}

// Processor is called for each part with the ancestry of the part, from the
// outermost. The parents are empty for the message the walk started on.
type Processor func(part message.Part, parents []message.Part) error

// Process calls the processor for msg and every part below it, depth first.
// Returning SkipParts skips the sub-parts of the current part. Any other error
// stops the walk and is returned.
func Process(processor Processor, msg message.Generic) error {
	return process(processor, msg, make([]message.Part, 0, 10))
}

func process(processor Processor, part message.Part, parents []message.Part) error {
	err := processor(part, parents)
	if errors.Is(err, SkipParts) {
		return nil
	} else if err != nil {
		return err
	}

	parents = append(parents, part)
	for _, sub := range part.GetParts() {
		if err := process(processor, sub, parents); err != nil {
			return err
		}
	}

	return nil
}
