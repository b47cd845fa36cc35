// Package dashboard is the admin console's CRUD workflow over every content
// kind. The console state is an explicit value; each action returns the next
// state and never mutates its receiver.
package dashboard

import (
	"fmt"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

// Mode is the modal state of the active tab.
type Mode int

const (
	Viewing Mode = iota
	Adding
	Editing
	ConfirmingDelete
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Adding:
		return "adding"
	case Editing:
		return "editing"
	case ConfirmingDelete:
		return "confirming-delete"
	}
	return "unknown"
}

// State is one admin session's console state.
type State struct {
	Tab  content.Kind
	Mode Mode
	// TargetID is the record being edited or deleted.
	TargetID string
	// Form holds the modal's field values keyed by field name.
	Form map[string]string
	// Error is the last failed action's message. The form is kept with it.
	Error string
	// Notice is the last successful action's message.
	Notice string
}

// New returns the initial state: the first tab, viewing.
func New() State {
	return State{Tab: content.Kinds()[0], Mode: Viewing}
}

// Schema returns the active tab's schema.
func (s State) Schema() content.Schema {
	return s.Tab.Schema()
}

// ModalOpen reports whether the add/edit modal is showing.
func (s State) ModalOpen() bool {
	return s.Mode == Adding || s.Mode == Editing
}

func (s State) viewing() State {
	return State{Tab: s.Tab, Mode: Viewing}
}

// SelectTab switches to kind. An open modal or pending delete is discarded
// without writing anything.
func (s State) SelectTab(kind content.Kind) (State, error) {
	if !kind.Valid() {
		return s, fmt.Errorf("%w: unknown tab %d", apperr.ErrInvalidPath, kind)
	}
	return State{Tab: kind, Mode: Viewing}, nil
}

// OpenAdd opens an empty form for the active tab.
func (s State) OpenAdd() (State, error) {
	if s.Mode != Viewing {
		return s, fmt.Errorf("%w: add while %s", apperr.ErrNotAllowed, s.Mode)
	}
	if !s.Schema().Addable() {
		return s, fmt.Errorf("%w: %s records cannot be added here", apperr.ErrNotAllowed, s.Tab)
	}
	next := s.viewing()
	next.Mode = Adding
	next.Form = map[string]string{}
	return next, nil
}

// OpenEdit opens the form pre-filled with rec and remembers its identifier.
func (s State) OpenEdit(rec content.Record) (State, error) {
	if s.Mode != Viewing {
		return s, fmt.Errorf("%w: edit while %s", apperr.ErrNotAllowed, s.Mode)
	}
	schema := s.Schema()
	if schema.AppendOnly || schema.Singleton {
		return s, fmt.Errorf("%w: %s records cannot be edited here", apperr.ErrNotAllowed, s.Tab)
	}
	if rec.ID == "" {
		return s, fmt.Errorf("%w: record without id", apperr.ErrNotFound)
	}
	next := s.viewing()
	next.Mode = Editing
	next.TargetID = rec.ID
	next.Form = schema.FormValues(rec)
	return next, nil
}

// PrefillSingleton shows the singleton tab's form with its current values.
// Singleton tabs have no add/edit distinction: the form is always open.
func (s State) PrefillSingleton(rec content.Record) (State, error) {
	if !s.Schema().Singleton {
		return s, fmt.Errorf("%w: %s is not a singleton", apperr.ErrNotAllowed, s.Tab)
	}
	next := State{Tab: s.Tab, Mode: Editing, Form: s.Schema().FormValues(rec), Notice: s.Notice}
	return next, nil
}

// SetField updates one form value. Names outside the tab's field set are
// ignored.
func (s State) SetField(name, value string) State {
	if !s.ModalOpen() {
		return s
	}
	if _, ok := s.Schema().Field(name); !ok {
		return s
	}
	next := s
	next.Form = make(map[string]string, len(s.Form)+1)
	for k, v := range s.Form {
		next.Form[k] = v
	}
	next.Form[name] = value
	return next
}

// WithForm applies every submitted value through SetField.
func (s State) WithForm(values map[string]string) State {
	for k, v := range values {
		s = s.SetField(k, v)
	}
	return s
}

// Cancel closes the modal or the delete confirmation without writing.
func (s State) Cancel() State {
	return s.viewing()
}

// RequestDelete asks for confirmation before deleting id.
func (s State) RequestDelete(id string) (State, error) {
	if s.Mode != Viewing {
		return s, fmt.Errorf("%w: delete while %s", apperr.ErrNotAllowed, s.Mode)
	}
	if s.Schema().Singleton {
		return s, fmt.Errorf("%w: %s cannot be deleted", apperr.ErrNotAllowed, s.Tab)
	}
	if id == "" {
		return s, fmt.Errorf("%w: record without id", apperr.ErrNotFound)
	}
	next := s.viewing()
	next.Mode = ConfirmingDelete
	next.TargetID = id
	return next, nil
}

// CancelDelete abandons a pending delete.
func (s State) CancelDelete() State {
	if s.Mode != ConfirmingDelete {
		return s
	}
	return s.viewing()
}
