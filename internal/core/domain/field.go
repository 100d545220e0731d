package domain

import "strings"

// NotDetermined is the literal shown wherever a value could not be extracted.
const NotDetermined = "N/D"

// Field is an extracted text value that may be absent.
type Field struct {
	value string
	ok    bool
}

func Known(value string) Field {
	return Field{value: value, ok: true}
}

func Missing() Field {
	return Field{}
}

// FieldOf returns Missing for blank input.
func FieldOf(value string) Field {
	if strings.TrimSpace(value) == "" {
		return Missing()
	}
	return Known(value)
}

func (f Field) Value() (string, bool) {
	return f.value, f.ok
}

func (f Field) IsKnown() bool {
	return f.ok
}

// Display returns the value or NotDetermined when absent.
func (f Field) Display() string {
	if !f.ok {
		return NotDetermined
	}
	return f.value
}

func (f Field) String() string {
	return f.Display()
}
