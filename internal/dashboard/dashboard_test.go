package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
	"github.com/bwservices06-art/bwservicesweb/internal/testutil"
)

func snapshot(t *testing.T, s store.Reader, path string) []content.Record {
	t.Helper()
	snap, err := s.Snapshot(context.Background(), path)
	require.NoError(t, err)
	return snap.Records
}

func tab(t *testing.T, k content.Kind) State {
	t.Helper()
	st, err := New().SelectTab(k)
	require.NoError(t, err)
	return st
}

func TestNew(t *testing.T) {
	st := New()
	assert.Equal(t, content.KindInquiry, st.Tab)
	assert.Equal(t, Viewing, st.Mode)
}

func TestAddWorkflow(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()
	existing := testutil.Append(t, s, "services", map[string]any{"title": "Old"})

	st, err := tab(t, content.KindService).OpenAdd()
	require.NoError(t, err)
	assert.Equal(t, Adding, st.Mode)
	assert.Empty(t, st.Form)

	st = st.SetField("title", "Cloud").SetField("description", "Infra").SetField("icon", "Server").SetField("bogus", "x")
	st, err = Save(ctx, s, st)
	require.NoError(t, err)
	assert.Equal(t, Viewing, st.Mode)
	assert.Empty(t, st.Form)
	assert.Equal(t, noticeSaved, st.Notice)

	recs := snapshot(t, s, "services")
	require.Len(t, recs, 2)
	added := recs[1]
	assert.NotEqual(t, existing, added.ID)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, map[string]any{"title": "Cloud", "description": "Infra", "icon": "Server"}, added.Fields)
}

func TestEditWorkflow_MergesOnlyFormFields(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()
	id := testutil.Append(t, s, "pricing", map[string]any{"name": "Pro", "price": "$10", "description": "d", "legacy": "keep"})

	rec := snapshot(t, s, "pricing")[0]
	st, err := tab(t, content.KindPricingPlan).OpenEdit(rec)
	require.NoError(t, err)
	assert.Equal(t, Editing, st.Mode)
	assert.Equal(t, id, st.TargetID)
	assert.Equal(t, "$10", st.Form["price"])
	_, hasLegacy := st.Form["legacy"]
	assert.False(t, hasLegacy)

	st = st.SetField("price", "$20")
	st, err = Save(ctx, s, st)
	require.NoError(t, err)

	got := snapshot(t, s, "pricing")[0]
	assert.Equal(t, "$20", got.String("price"))
	assert.Equal(t, "Pro", got.String("name"))
	assert.Equal(t, "keep", got.String("legacy"))
}

func TestTabSwitchDiscardsOpenEdit(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()
	id := testutil.Append(t, s, "services", map[string]any{"title": "Original", "icon": "Code2"})
	before := snapshot(t, s, "services")

	st, err := tab(t, content.KindService).OpenEdit(before[0])
	require.NoError(t, err)
	require.Equal(t, id, st.TargetID)
	st = st.SetField("title", "Half-typed")

	st, err = st.SelectTab(content.KindProject)
	require.NoError(t, err)
	assert.Equal(t, content.KindProject, st.Tab)
	assert.Equal(t, Viewing, st.Mode)
	assert.Empty(t, st.TargetID)
	assert.Nil(t, st.Form)

	_, err = Save(ctx, s, st)
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)

	assert.Equal(t, before, snapshot(t, s, "services"))
	assert.Empty(t, snapshot(t, s, "projects"))
}

// failing rejects every write with a permission error.
type failing struct{}

var errPermission = errors.New("permission denied")

func (failing) Append(context.Context, string, map[string]any) (string, error) {
	return "", errPermission
}
func (failing) Merge(context.Context, string, string, map[string]any) error { return errPermission }
func (failing) MergeSingleton(context.Context, string, map[string]any) error {
	return errPermission
}
func (failing) Delete(context.Context, string, string) error { return errPermission }

func TestSave_RejectionKeepsForm(t *testing.T) {
	st, err := tab(t, content.KindFAQ).OpenAdd()
	require.NoError(t, err)
	st = st.SetField("question", "Q?").SetField("answer", "A.")

	next, err := Save(context.Background(), failing{}, st)
	require.ErrorIs(t, err, errPermission)
	assert.Equal(t, Adding, next.Mode)
	assert.Equal(t, "Q?", next.Form["question"])
	assert.Equal(t, "A.", next.Form["answer"])
	assert.NotEmpty(t, next.Error)
}

func TestSave_ValidationErrorKeepsForm(t *testing.T) {
	st, err := tab(t, content.KindTestimonial).OpenAdd()
	require.NoError(t, err)
	st = st.SetField("name", "N").SetField("rating", "five")

	next, err := Save(context.Background(), failing{}, st)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, next.Error, "whole number")
	assert.Equal(t, "five", next.Form["rating"])
}

func TestSave_MissingTargetSurfaces(t *testing.T) {
	s := testutil.TestStore(t)
	id := testutil.Append(t, s, "faqs", map[string]any{"question": "Q"})
	rec := snapshot(t, s, "faqs")[0]

	st, err := tab(t, content.KindFAQ).OpenEdit(rec)
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "faqs", id))

	next, err := Save(context.Background(), s, st.SetField("answer", "A"))
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, Editing, next.Mode)
	assert.Contains(t, next.Error, "no longer exists")
	assert.Empty(t, snapshot(t, s, "faqs"))
}

func TestSingletonSave(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()

	st, err := tab(t, content.KindHero).PrefillSingleton(content.NewRecord("hero", nil))
	require.NoError(t, err)
	assert.Equal(t, Editing, st.Mode)
	st, err = Save(ctx, s, st.SetField("badge", "Booked"))
	require.NoError(t, err)

	st, err = st.PrefillSingleton(mustSingleton(t, s, "hero"))
	require.NoError(t, err)
	assert.Equal(t, "Booked", st.Form["badge"])
	_, err = Save(ctx, s, st.SetField("subtitle", "Sub"))
	require.NoError(t, err)

	hero := mustSingleton(t, s, "hero")
	assert.Equal(t, "Booked", hero.String("badge"))
	assert.Equal(t, "Sub", hero.String("subtitle"))

	_, err = tab(t, content.KindHero).OpenAdd()
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	_, err = tab(t, content.KindSettings).RequestDelete("settings")
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	_, err = tab(t, content.KindFAQ).PrefillSingleton(hero)
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
}

func mustSingleton(t *testing.T, s store.Reader, path string) content.Record {
	t.Helper()
	rec, err := s.Singleton(context.Background(), path)
	require.NoError(t, err)
	return rec
}

func TestAppendOnlyTabs(t *testing.T) {
	for _, k := range []content.Kind{content.KindInquiry, content.KindOrder} {
		st := tab(t, k)
		_, err := st.OpenAdd()
		assert.ErrorIs(t, err, apperr.ErrNotAllowed, k.Path())
		_, err = st.OpenEdit(content.NewRecord("x", nil))
		assert.ErrorIs(t, err, apperr.ErrNotAllowed, k.Path())
		_, err = st.RequestDelete("x")
		assert.NoError(t, err, k.Path())
	}
}

func TestDeleteWorkflow(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()
	keep := testutil.Append(t, s, "inquiries", map[string]any{"name": "keep", "timestamp": 1})
	gone := testutil.Append(t, s, "inquiries", map[string]any{"name": "gone", "timestamp": 2})

	st, err := New().RequestDelete(gone)
	require.NoError(t, err)
	assert.Equal(t, ConfirmingDelete, st.Mode)

	cancelled := st.CancelDelete()
	assert.Equal(t, Viewing, cancelled.Mode)
	assert.Len(t, snapshot(t, s, "inquiries"), 2)

	_, err = ConfirmDelete(ctx, s, cancelled)
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)

	st, err = ConfirmDelete(ctx, s, st)
	require.NoError(t, err)
	assert.Equal(t, Viewing, st.Mode)
	assert.Equal(t, noticeDeleted, st.Notice)

	recs := snapshot(t, s, "inquiries")
	require.Len(t, recs, 1)
	assert.Equal(t, keep, recs[0].ID)
	assert.Equal(t, "keep", recs[0].String("name"))
}

func TestDelete_RejectionKeepsConfirmation(t *testing.T) {
	st, err := tab(t, content.KindProject).RequestDelete("p1")
	require.NoError(t, err)
	next, err := ConfirmDelete(context.Background(), failing{}, st)
	require.Error(t, err)
	assert.Equal(t, ConfirmingDelete, next.Mode)
	assert.Equal(t, "p1", next.TargetID)
	assert.NotEmpty(t, next.Error)
}

func TestModalExclusive(t *testing.T) {
	st, err := tab(t, content.KindService).OpenAdd()
	require.NoError(t, err)
	_, err = st.OpenEdit(content.NewRecord("a", nil))
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	_, err = st.OpenAdd()
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	_, err = st.RequestDelete("a")
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	assert.Equal(t, Viewing, st.Cancel().Mode)
}

// Two sessions edit the same plan; B's save lands after A's. Each save only
// carries the field its editor touched, so both edits survive.
func TestTwoSessions_FieldLevelLastWriteWins(t *testing.T) {
	s := testutil.TestStore(t)
	ctx := context.Background()
	testutil.Append(t, s, "pricing", map[string]any{"name": "Pro", "price": "$10", "description": "old"})
	rec := snapshot(t, s, "pricing")[0]

	a, err := tab(t, content.KindPricingPlan).OpenEdit(rec)
	require.NoError(t, err)
	b, err := tab(t, content.KindPricingPlan).OpenEdit(rec)
	require.NoError(t, err)

	a.Form = map[string]string{"price": "$99"}
	b.Form = map[string]string{"description": "new"}

	_, err = Save(ctx, s, a)
	require.NoError(t, err)
	_, err = Save(ctx, s, b)
	require.NoError(t, err)

	got := snapshot(t, s, "pricing")[0]
	assert.Equal(t, "$99", got.String("price"))
	assert.Equal(t, "new", got.String("description"))
	assert.Equal(t, "Pro", got.String("name"))
}

func TestSessions(t *testing.T) {
	ss := NewSessions(time.Hour)
	assert.Equal(t, New(), ss.Get("a"))

	st := ss.Update("a", func(st State) State {
		next, _ := st.SelectTab(content.KindFAQ)
		return next
	})
	assert.Equal(t, content.KindFAQ, st.Tab)
	assert.Equal(t, content.KindFAQ, ss.Get("a").Tab)
	assert.Equal(t, content.KindInquiry, ss.Get("b").Tab)
	assert.Equal(t, 1, ss.Len())

	ss.Drop("a")
	assert.Equal(t, 0, ss.Len())
}

func TestSessions_ExpiredAreSwept(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ss := NewSessions(time.Hour)
	ss.now = func() time.Time { return now }

	faqs := func(st State) State {
		next, _ := st.SelectTab(content.KindFAQ)
		return next
	}
	ss.Put("short", now.Add(10*time.Minute), New())
	ss.Update("short", faqs)
	ss.Update("restored", faqs)
	require.Equal(t, 2, ss.Len())

	now = now.Add(30 * time.Minute)
	assert.Equal(t, content.KindInquiry, ss.Get("short").Tab, "expired state is not served")
	assert.Equal(t, content.KindFAQ, ss.Get("restored").Tab)

	ss.Update("other", faqs)
	assert.Equal(t, 2, ss.Len())

	now = now.Add(2 * time.Hour)
	ss.Put("fresh", now.Add(time.Hour), New())
	assert.Equal(t, 1, ss.Len())
}
