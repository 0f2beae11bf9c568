// Package errors provides structured, positioned error handling for GeoETL.
// Every read-path failure is classified by Kind and can carry the source
// position (line, column, record, byte offset, field) where it occurred.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a GeoETL error for programmatic handling.
type Kind uint8

const (
	// KindOther is an uncategorized error.
	KindOther Kind = iota
	// KindIo is a backend or transport failure.
	KindIo
	// KindParse is a malformed record or geometry.
	KindParse
	// KindSchemaInference means no viable schema could be derived.
	KindSchemaInference
)

func (k Kind) String() string {
	switch k {
	case KindIo:
		return "io"
	case KindParse:
		return "parse"
	case KindSchemaInference:
		return "schema-inference"
	default:
		return "other"
	}
}

// SourcePosition locates a failure within a source file. All indices are
// 1-based; zero means "unknown". It is attached to errors only, never to
// successfully decoded data.
type SourcePosition struct {
	Line       uint64
	Column     uint64
	ByteOffset uint64
	Record     uint64
	Field      uint64
}

// IsZero reports whether the position carries no location metadata.
func (p SourcePosition) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.ByteOffset == 0 && p.Record == 0 && p.Field == 0
}

func (p SourcePosition) String() string {
	var parts []string
	if p.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", p.Line))
	}
	if p.Column > 0 {
		parts = append(parts, fmt.Sprintf("column %d", p.Column))
	}
	if p.Record > 0 {
		parts = append(parts, fmt.Sprintf("record %d", p.Record))
	}
	if p.ByteOffset > 0 {
		parts = append(parts, fmt.Sprintf("byte %d", p.ByteOffset))
	}
	if p.Field > 0 {
		parts = append(parts, fmt.Sprintf("field %d", p.Field))
	}
	if len(parts) == 0 {
		return "unknown position"
	}
	return strings.Join(parts, ", ")
}

// Error is the structured error type for all GeoETL read and write paths.
type Error struct {
	Kind    Kind
	Message string
	// Pos is the source position of the failure, when known.
	Pos *SourcePosition
	// Context describes what was being read, typically a URL or column name.
	Context string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	switch e.Kind {
	case KindIo:
		sb.WriteString("I/O error")
	case KindParse:
		sb.WriteString("Parse error")
	case KindSchemaInference:
		sb.WriteString("Schema inference error")
	default:
		if e.Context != "" {
			return fmt.Sprintf("%s (%s)", e.Message, e.Context)
		}
		return e.Message
	}
	if e.Context != "" {
		fmt.Fprintf(&sb, " while reading %s", e.Context)
	}
	if e.Pos != nil && !e.Pos.IsZero() {
		fmt.Fprintf(&sb, " at %s", e.Pos)
	}
	sb.WriteString(": ")
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else if e.Err != nil {
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if stderrors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// WithContext appends context to the error without losing the original
// message. Existing context is kept and joined with "; ".
func (e *Error) WithContext(context string) *Error {
	if e.Context == "" {
		e.Context = context
	} else {
		e.Context += "; " + context
	}
	return e
}

// Io wraps a transport or backend failure.
func Io(err error, context string) *Error {
	return &Error{Kind: KindIo, Context: context, Err: err}
}

// Parse creates a parse error without position information.
func Parse(message, context string) *Error {
	return &Error{Kind: KindParse, Message: message, Context: context}
}

// ParseAt creates a parse error carrying a source position.
func ParseAt(message string, pos SourcePosition, context string) *Error {
	return &Error{Kind: KindParse, Message: message, Pos: &pos, Context: context}
}

// SchemaInference creates a schema inference failure.
func SchemaInference(message, context string) *Error {
	return &Error{Kind: KindSchemaInference, Message: message, Context: context}
}

// Otherf creates an uncategorized error from a format string.
func Otherf(format string, args ...any) *Error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error chain, or KindOther when the chain
// contains no *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
