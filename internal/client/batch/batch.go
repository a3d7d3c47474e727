// Package batch is the in-memory editor for draft transaction records.
package batch

import (
	"errors"
	"fmt"
	"slices"
)

// Field is the display name of a record field.
type Field string

const (
	FieldDateTime   Field = "Transaction Date and Time"
	FieldAmount     Field = "Transaction Amount"
	FieldCardNumber Field = "Card Number"
	FieldExpiration Field = "Card Expiration Date"
	FieldCVV        Field = "CVV Code"
	FieldCardType   Field = "Card Type"
	FieldSource     Field = "Transaction Source"
	FieldID         Field = "Transaction ID"
)

// Fields lists every record field in display order.
var Fields = []Field{
	FieldDateTime,
	FieldAmount,
	FieldCardNumber,
	FieldExpiration,
	FieldCVV,
	FieldCardType,
	FieldSource,
	FieldID,
}

var (
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrUnknownField    = errors.New("unknown field")
)

// ParseField accepts a display name or a 1-based position in Fields.
func ParseField(s string) (Field, error) {
	for i, f := range Fields {
		if string(f) == s || fmt.Sprint(i+1) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

func knownField(f Field) bool {
	return slices.Contains(Fields, f)
}

// Record is one draft transaction. Values are kept exactly as entered.
type Record map[Field]string

func newRecord() Record {
	r := make(Record, len(Fields))
	for _, f := range Fields {
		r[f] = ""
	}
	return r
}

// Complete reports whether every field is non-empty. No format checks are
// made.
func (r Record) Complete() bool {
	for _, f := range Fields {
		if r[f] == "" {
			return false
		}
	}
	return true
}

// Missing lists the empty fields in display order.
func (r Record) Missing() []Field {
	var out []Field
	for _, f := range Fields {
		if r[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Editor is an ordered sequence of records. Order is insertion order and is
// only changed by Remove. Not safe for concurrent use.
type Editor struct {
	records  []Record
	revision uint64
}

func NewEditor() *Editor {
	return &Editor{}
}

// Add appends an empty record and returns its index.
func (e *Editor) Add() int {
	e.records = append(e.records, newRecord())
	e.revision++
	return len(e.records) - 1
}

// Update sets one field of the record at index.
func (e *Editor) Update(index int, field Field, value string) error {
	if err := e.check(index); err != nil {
		return err
	}
	if !knownField(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	e.records[index][field] = value
	e.revision++
	return nil
}

// Remove deletes the record at index; later records shift down by one.
func (e *Editor) Remove(index int) error {
	if err := e.check(index); err != nil {
		return err
	}
	e.records = slices.Delete(e.records, index, index+1)
	e.revision++
	return nil
}

func (e *Editor) Clear() {
	e.records = nil
	e.revision++
}

func (e *Editor) Len() int {
	return len(e.records)
}

// Record returns a copy of the record at index.
func (e *Editor) Record(index int) (Record, error) {
	if err := e.check(index); err != nil {
		return nil, err
	}
	return e.records[index].clone(), nil
}

// Records returns a copy of all records in order.
func (e *Editor) Records() []Record {
	out := make([]Record, len(e.records))
	for i, r := range e.records {
		out[i] = r.clone()
	}
	return out
}

// Revision changes on every mutation. Results computed at one revision are
// stale at any other.
func (e *Editor) Revision() uint64 {
	return e.revision
}

func (e *Editor) check(index int) error {
	if index < 0 || index >= len(e.records) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(e.records))
	}
	return nil
}
