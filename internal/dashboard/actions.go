package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

const (
	noticeSaved   = "Saved."
	noticeDeleted = "Deleted."
)

// Save writes the open form. Adding appends a new record, Editing merges the
// form into the target record, and singleton tabs always merge into the
// singleton. Only fields present in the form are written.
//
// On success the state returns to Viewing with the form cleared. On failure
// the mode and form are kept, Error is set and the error is returned.
func Save(ctx context.Context, w store.Writer, s State) (State, error) {
	if !s.ModalOpen() {
		return s, fmt.Errorf("%w: nothing to save while %s", apperr.ErrNotAllowed, s.Mode)
	}
	schema := s.Schema()
	payload, err := schema.Payload(s.Form)
	if err != nil {
		return s.failed(err), err
	}

	switch {
	case schema.Singleton:
		err = w.MergeSingleton(ctx, schema.Path, payload)
	case s.Mode == Adding:
		_, err = w.Append(ctx, schema.Path, payload)
	default:
		err = w.Merge(ctx, schema.Path, s.TargetID, payload)
	}
	if err != nil {
		return s.failed(err), err
	}

	next := s.viewing()
	next.Notice = noticeSaved
	return next, nil
}

// ConfirmDelete removes the record awaiting confirmation.
func ConfirmDelete(ctx context.Context, w store.Writer, s State) (State, error) {
	if s.Mode != ConfirmingDelete {
		return s, fmt.Errorf("%w: no delete pending", apperr.ErrNotAllowed)
	}
	if err := w.Delete(ctx, s.Schema().Path, s.TargetID); err != nil {
		return s.failed(err), err
	}
	next := s.viewing()
	next.Notice = noticeDeleted
	return next, nil
}

func (s State) failed(err error) State {
	next := s
	next.Notice = ""
	next.Error = Message(err)
	return next
}

// Message turns a write error into text for the console.
func Message(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return "This record no longer exists. It may have been deleted in another session."
	case errors.Is(err, apperr.ErrNotAllowed):
		return "That action is not available on this tab."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The save timed out. Your changes are still in the form; please try again."
	default:
		return "The change could not be saved. Your changes are still in the form; please try again."
	}
}
