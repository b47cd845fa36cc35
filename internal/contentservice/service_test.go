package contentservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/testutil"
)

func TestCreateGetUpdateDelete(t *testing.T) {
	svc := NewService(testutil.TestStore(t))
	ctx := context.Background()

	rec, err := svc.Create(ctx, "faqs", map[string]any{"question": "Q?", "answer": "A."})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, "Q?", rec.String("question"))

	rec, err = svc.Update(ctx, "faqs", rec.ID, map[string]any{"answer": "B."})
	require.NoError(t, err)
	assert.Equal(t, "Q?", rec.String("question"))
	assert.Equal(t, "B.", rec.String("answer"))

	list, err := svc.List(ctx, "faqs")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "faqs", rec.ID))
	require.NoError(t, svc.Delete(ctx, "faqs", rec.ID))
	_, err = svc.Get(ctx, "faqs", rec.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIntakeKindsAreReadOnly(t *testing.T) {
	s := testutil.TestStore(t)
	svc := NewService(s)
	ctx := context.Background()
	id := testutil.Append(t, s, "inquiries", map[string]any{"name": "Jane", "message": "hi", "timestamp": 1700000000000})

	_, err := svc.Create(ctx, "inquiries", map[string]any{"name": "Mallory", "timestamp": 1})
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)
	_, err = svc.Create(ctx, "orders", map[string]any{"name": "Mallory"})
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)

	_, err = svc.Update(ctx, "inquiries", id, map[string]any{"message": "rewritten", "timestamp": 999})
	assert.ErrorIs(t, err, apperr.ErrNotAllowed)

	rec, err := svc.Get(ctx, "inquiries", id)
	require.NoError(t, err)
	assert.Equal(t, "hi", rec.String("message"))
	assert.Equal(t, int64(1700000000000), rec.Timestamp())

	list, err := svc.List(ctx, "inquiries")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "inquiries", id))
	list, err = svc.List(ctx, "inquiries")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRejections(t *testing.T) {
	svc := NewService(testutil.TestStore(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "users", map[string]any{})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
	_, err = svc.Create(ctx, "hero", map[string]any{"badge": "x"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
	_, err = svc.List(ctx, "settings")
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
	_, err = svc.Create(ctx, "services", map[string]any{"owner": "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Update(ctx, "services", "missing", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.UpdateSingleton(ctx, "services", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestUpdateSingleton(t *testing.T) {
	svc := NewService(testutil.TestStore(t))
	ctx := context.Background()

	rec, err := svc.UpdateSingleton(ctx, "settings", map[string]any{"websiteName": "BW"})
	require.NoError(t, err)
	assert.Equal(t, "BW", rec.String("websiteName"))

	rec, err = svc.UpdateSingleton(ctx, "settings", map[string]any{"contactPhone": "+1"})
	require.NoError(t, err)
	assert.Equal(t, "BW", rec.String("websiteName"))
	assert.Equal(t, "+1", rec.String("contactPhone"))
}

func TestSchemas(t *testing.T) {
	schemas := Schemas()
	require.Len(t, schemas, 11)
	assert.Equal(t, "inquiries", schemas[0].Path)
	assert.True(t, schemas[0].AppendOnly)
	assert.True(t, schemas[len(schemas)-1].Singleton)
	for _, s := range schemas {
		for _, f := range s.Fields {
			assert.NotEmpty(t, f.Type, s.Path+"."+f.Name)
		}
	}
}

func TestSearch(t *testing.T) {
	svc := NewService(testutil.TestStore(t))
	ctx := context.Background()
	_, err := svc.Create(ctx, "faqs", map[string]any{"question": "Hosting included?", "answer": "Yes"})
	require.NoError(t, err)

	res, err := svc.Search(ctx, "hosting", "", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "faqs", res[0].Path)
	assert.Equal(t, "Hosting included?", res[0].Snippet)

	_, err = svc.Search(ctx, " ", "", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Search(ctx, "x", "nope", 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}
