// Package intake implements the public contact and plan-order forms. Each
// form is an explicit state value; Submit returns the next state.
package intake

import (
	"time"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// Form is the visible state of one intake form.
type Form struct {
	Kind content.Kind
	// Values are the visible field values, kept on any failure.
	Values map[string]string
	// FieldErrors maps a field name to its validation message.
	FieldErrors map[string]string
	// Error is a form-level failure such as a rejected write.
	Error string
	// ConfirmedUntil is when the success confirmation disappears.
	ConfirmedUntil time.Time
}

// NewForm returns an empty form for kind.
func NewForm(kind content.Kind) Form {
	return Form{Kind: kind, Values: emptyValues(kind)}
}

func emptyValues(kind content.Kind) map[string]string {
	values := make(map[string]string)
	for _, f := range kind.Schema().EditableFields() {
		values[f.Name] = ""
	}
	return values
}

// Fields returns the form's input fields in display order.
func (f Form) Fields() []content.Field {
	return f.Kind.Schema().EditableFields()
}

// Value returns the current value of field name.
func (f Form) Value(name string) string {
	return f.Values[name]
}

// Confirmed reports whether the success confirmation is showing at now.
func (f Form) Confirmed(now time.Time) bool {
	return !f.ConfirmedUntil.IsZero() && now.Before(f.ConfirmedUntil)
}

// Tick reverts an expired confirmation.
func (f Form) Tick(now time.Time) Form {
	if !f.ConfirmedUntil.IsZero() && !now.Before(f.ConfirmedUntil) {
		f.ConfirmedUntil = time.Time{}
	}
	return f
}

// Failed reports whether the last submit was rejected.
func (f Form) Failed() bool {
	return f.Error != "" || len(f.FieldErrors) > 0
}
