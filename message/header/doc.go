// Package header models an email message header: an ordered list of fields,
// duplicates allowed, looked up by case-insensitive name, plus the optional
// Unix-From envelope line that precedes the header in mbox style input.
//
// Field bodies are stored as Unicode. Nothing is encoded when a value is set.
// Whether a body is written as raw UTF-8 or as RFC 2047 encoded words is
// decided when the message is generated. Parsed fields remember their wire
// bytes, so an untouched header can be written back byte for byte.
//
// Get, GetAll, Add, Set, and SetAll are the core operations. The typed
// accessors (addresses, dates, parameterized values) are layered on top.
package header
