package plan

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/infra"
	"wayfarer/internal/modules/budget"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	p := samplePlan()

	require.NoError(t, s.Save(ctx, p))
	p.Summary = "mutated after save"

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Summary, "store keeps its own copy")
	assert.Equal(t, "Paris, France", got.Request.Location)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("WAYFARER_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYFARER_TEST_DSN not set; skipping DB-backed tests")
	}
	ctx := context.Background()
	_, err := infra.Migrate(ctx, dsn)
	require.NoError(t, err)
	db, err := infra.NewDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s := NewStore(db)
	p := samplePlan()
	p.ID = uuid.New()
	p.Budget, err = budget.AllocateAmount(2000, 2, nil)
	require.NoError(t, err)
	p.UsedFallback = true

	require.NoError(t, s.Save(ctx, p))
	p.Degraded = true
	require.NoError(t, s.Save(ctx, p), "save is an upsert")

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.Degraded)
	assert.True(t, got.Budget.Ceilings.Accommodation.Equal(p.Budget.Ceilings.Accommodation))
	require.Len(t, got.Itinerary.Days, 2)
	assert.Equal(t, "Historic Center Walk", got.Itinerary.Days[1].Activities[0].Title)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
