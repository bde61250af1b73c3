package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := Errorf(KindGeocodeUnresolved, "no match for %q", "Atlantis")

	assert.ErrorIs(t, err, ErrGeocodeUnresolved)
	assert.NotErrorIs(t, err, ErrInvalidBudgetInput)
	assert.Equal(t, `geocode_unresolved: no match for "Atlantis"`, err.Error())
}

func TestErrorfKeepsCause(t *testing.T) {
	err := Errorf(KindSynthesisUnavailable, "engine call: %w", context.DeadlineExceeded)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrSynthesisUnavailable)
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := Errorf(KindInvalidBudgetInput, "budget must be positive")
	wrapped := fmt.Errorf("plan trip: %w", inner)

	assert.Equal(t, KindInvalidBudgetInput, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.ErrorIs(t, wrapped, ErrInvalidBudgetInput)
}
