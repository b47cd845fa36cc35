package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/metrics"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

// Confirmation delays used when no override is configured.
const (
	DefaultInquiryConfirm = 3 * time.Second
	DefaultOrderConfirm   = 2 * time.Second
)

const submitFailedMsg = "Something went wrong while sending. Please try again."

// Service appends intake records to the store.
type Service struct {
	w      store.Writer
	logger *slog.Logger
	now    func() time.Time

	confirm map[content.Kind]time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithConfirmDelays overrides how long the success confirmation shows.
func WithConfirmDelays(inquiry, order time.Duration) Option {
	return func(s *Service) {
		if inquiry > 0 {
			s.confirm[content.KindInquiry] = inquiry
		}
		if order > 0 {
			s.confirm[content.KindOrder] = order
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an intake Service writing to w.
func NewService(w store.Writer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		w:      w,
		logger: logger,
		now:    time.Now,
		confirm: map[content.Kind]time.Duration{
			content.KindInquiry: DefaultInquiryConfirm,
			content.KindOrder:   DefaultOrderConfirm,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ConfirmDelay returns the confirmation duration for kind.
func (s *Service) ConfirmDelay(kind content.Kind) time.Duration {
	return s.confirm[kind]
}

// Submit validates values and appends one record stamped with the current
// time. On success the returned form is empty and confirmed; on failure it
// keeps the submitted values and carries the error. Identical submissions
// each produce a new record.
func (s *Service) Submit(ctx context.Context, kind content.Kind, values map[string]string) Form {
	form := Form{Kind: kind, Values: trimmed(kind, values)}
	if kind != content.KindInquiry && kind != content.KindOrder {
		form.Error = "This form is not available."
		return form
	}

	if err := validate(kind, form.Values); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			form.FieldErrors = make(map[string]string, len(errs))
			for field, e := range errs {
				form.FieldErrors[field] = e.Error()
			}
		} else {
			form.Error = err.Error()
		}
		metrics.IntakeSubmissions.WithLabelValues(kind.Path(), "invalid").Inc()
		return form
	}

	fields := make(map[string]any, len(form.Values)+1)
	for k, v := range form.Values {
		fields[k] = v
	}
	now := s.now()
	fields["timestamp"] = now.UnixMilli()

	id, err := s.w.Append(ctx, kind.Path(), fields)
	if err != nil {
		s.logger.Error("intake: append failed",
			slog.String("path", kind.Path()),
			slog.String("error", err.Error()))
		metrics.IntakeSubmissions.WithLabelValues(kind.Path(), "error").Inc()
		form.Error = submitFailedMsg
		return form
	}

	s.logger.Info("intake: received", slog.String("path", kind.Path()), slog.String("id", id))
	metrics.IntakeSubmissions.WithLabelValues(kind.Path(), "ok").Inc()
	done := NewForm(kind)
	done.ConfirmedUntil = now.Add(s.confirm[kind])
	return done
}

// trimmed keeps only the kind's editable fields, whitespace-trimmed.
func trimmed(kind content.Kind, values map[string]string) map[string]string {
	out := make(map[string]string)
	for _, f := range kind.Schema().EditableFields() {
		out[f.Name] = strings.TrimSpace(values[f.Name])
	}
	return out
}

func validate(kind content.Kind, values map[string]string) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: empty form", apperr.ErrValidation)
	}
	keys := make([]*validation.KeyRules, 0, len(values))
	for _, f := range kind.Schema().EditableFields() {
		var rules []validation.Rule
		if !f.Optional {
			rules = append(rules, validation.Required.Error(f.Label+" is required"))
		}
		switch f.Type {
		case content.FieldEmail:
			rules = append(rules, is.EmailFormat.Error("Enter a valid email address"))
		case content.FieldLongText:
			rules = append(rules, validation.RuneLength(0, 5000))
		default:
			rules = append(rules, validation.RuneLength(0, 200))
		}
		keys = append(keys, validation.Key(f.Name, rules...))
	}
	return validation.Validate(values, validation.Map(keys...))
}
