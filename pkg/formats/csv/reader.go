package csv

import (
	"bufio"
	"fmt"
	"io"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// tokenizer state machine states.
type scanState uint8

const (
	stateFieldStart scanState = iota
	stateInField
	stateInQuotedField
	stateQuoteInQuotedField
)

// reader is a streaming delimited-text tokenizer. It handles quoted fields
// (including embedded delimiters, escaped quotes, and multi-line values),
// mixed line endings, and tracks the source position of every record so
// malformed input reports exactly where it broke. The stream terminates on
// the first malformed record.
type reader struct {
	br        *bufio.Reader
	delimiter byte
	context   string

	// Position of the next unread byte, 1-based line/column.
	line   uint64
	column uint64
	offset uint64

	// records returned so far, including any header row.
	records uint64

	// expectFields is fixed by the first record; subsequent records must
	// match its width.
	expectFields int
}

func newReader(r io.Reader, delimiter byte, context string) *reader {
	return &reader{
		br:        bufio.NewReader(r),
		delimiter: delimiter,
		context:   context,
		line:      1,
		column:    1,
	}
}

// readByte consumes one byte and advances the position counters.
func (r *reader) readByte() (byte, error) {
	c, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	r.offset++
	if c == '\n' {
		r.line++
		r.column = 1
	} else {
		r.column++
	}
	return c, nil
}

// consumeCR completes a '\r' record terminator. A directly following '\n'
// is folded into it so CRLF counts as a single line break; a lone '\r'
// terminates the record by itself.
func (r *reader) consumeCR() error {
	r.line++
	r.column = 1
	c, err := r.br.ReadByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return geoerrors.Io(err, r.context)
	}
	if c == '\n' {
		r.offset++
		return nil
	}
	if err := r.br.UnreadByte(); err != nil {
		return geoerrors.Io(err, r.context)
	}
	return nil
}

func (r *reader) pos(field int) geoerrors.SourcePosition {
	return geoerrors.SourcePosition{
		Line:       r.line,
		Column:     r.column,
		ByteOffset: r.offset,
		Record:     r.records + 1,
		Field:      uint64(field + 1),
	}
}

// Read returns the fields of the next logical record. Blank lines are
// skipped. It returns io.EOF once the input is exhausted, and a positioned
// Parse error for malformed records; both end the stream.
func (r *reader) Read() ([]string, error) {
	if err := r.skipBlankLines(); err != nil {
		return nil, err
	}

	fields := make([]string, 0, max(r.expectFields, 4))
	var field []byte
	state := stateFieldStart

	endField := func() {
		fields = append(fields, string(field))
		field = field[:0]
	}

	for {
		c, err := r.readByte()
		if err == io.EOF {
			switch state {
			case stateInQuotedField:
				return nil, geoerrors.ParseAt("unterminated quoted field", r.pos(len(fields)), r.context)
			case stateFieldStart:
				if len(fields) == 0 {
					return nil, io.EOF
				}
			}
			endField()
			return r.finishRecord(fields)
		}
		if err != nil {
			return nil, geoerrors.Io(err, r.context)
		}

		switch state {
		case stateFieldStart:
			switch c {
			case '"':
				state = stateInQuotedField
			case r.delimiter:
				endField()
			case '\r':
				if err := r.consumeCR(); err != nil {
					return nil, err
				}
				endField()
				return r.finishRecord(fields)
			case '\n':
				endField()
				return r.finishRecord(fields)
			default:
				field = append(field, c)
				state = stateInField
			}

		case stateInField:
			switch c {
			case '"':
				return nil, geoerrors.ParseAt("bare quote in unquoted field", r.pos(len(fields)), r.context)
			case r.delimiter:
				endField()
				state = stateFieldStart
			case '\r':
				if err := r.consumeCR(); err != nil {
					return nil, err
				}
				endField()
				return r.finishRecord(fields)
			case '\n':
				endField()
				return r.finishRecord(fields)
			default:
				field = append(field, c)
			}

		case stateInQuotedField:
			if c == '"' {
				state = stateQuoteInQuotedField
			} else {
				field = append(field, c)
			}

		case stateQuoteInQuotedField:
			switch c {
			case '"':
				// Escaped quote.
				field = append(field, '"')
				state = stateInQuotedField
			case r.delimiter:
				endField()
				state = stateFieldStart
			case '\r':
				if err := r.consumeCR(); err != nil {
					return nil, err
				}
				endField()
				return r.finishRecord(fields)
			case '\n':
				endField()
				return r.finishRecord(fields)
			default:
				return nil, geoerrors.ParseAt(
					fmt.Sprintf("unexpected character %q after closing quote", c),
					r.pos(len(fields)), r.context)
			}
		}
	}
}

func (r *reader) finishRecord(fields []string) ([]string, error) {
	if r.expectFields == 0 {
		r.expectFields = len(fields)
	} else if len(fields) != r.expectFields {
		return nil, geoerrors.ParseAt(
			fmt.Sprintf("record has %d fields, expected %d", len(fields), r.expectFields),
			r.pos(len(fields)-1), r.context)
	}
	r.records++
	return fields, nil
}

// skipBlankLines consumes empty lines between records.
func (r *reader) skipBlankLines() error {
	for {
		c, err := r.br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return geoerrors.Io(err, r.context)
		}
		if c == '\n' || c == '\r' {
			r.offset++
			if c == '\n' {
				r.line++
				r.column = 1
			}
			continue
		}
		if err := r.br.UnreadByte(); err != nil {
			return geoerrors.Io(err, r.context)
		}
		return nil
	}
}
