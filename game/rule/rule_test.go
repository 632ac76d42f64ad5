package rule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Error ----

func TestError_IsMatchesReason(t *testing.T) {
	err := Errorf(ReasonRecipeNotSatisfied, "need %d more", 2)
	assert.True(t, errors.Is(err, ErrRecipeNotSatisfied))
	assert.False(t, errors.Is(err, ErrIngredientNotOwned))
	assert.Equal(t, "need 2 more", err.Error())
	assert.Equal(t, ReasonRecipeNotSatisfied, ReasonOf(err))
}

func TestError_ManaIsResource(t *testing.T) {
	err := Errorf(ReasonInsufficientMana, "mp 3 < 15")
	assert.True(t, errors.Is(err, ErrInsufficientMana))
	assert.True(t, errors.Is(err, ErrInsufficientResource))
	assert.False(t, errors.Is(ErrInsufficientResource, ErrInsufficientMana))
}

func TestReasonOf_ForeignError(t *testing.T) {
	assert.Equal(t, Reason(""), ReasonOf(errors.New("boom")))
}

// ---- Stream ----

func TestStream_Deterministic(t *testing.T) {
	a := NewStream(RNGState{Seed: 42})
	b := NewStream(RNGState{Seed: 42})
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.Equal(t, uint64(100), a.State().Counter)
}

func TestStream_ResumeFromState(t *testing.T) {
	a := NewStream(RNGState{Seed: 7})
	for i := 0; i < 10; i++ {
		a.Float64()
	}
	resumed := NewStream(a.State())
	assert.Equal(t, a.Float64(), resumed.Float64())
}

func TestStream_Ranges(t *testing.T) {
	s := NewStream(RNGState{Seed: 1})
	for i := 0; i < 10000; i++ {
		f := s.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
		n := s.IntN(7)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 7)
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 15, RoundHalfUp(15.0))
	assert.Equal(t, 3, RoundHalfUp(2.5))
	assert.Equal(t, 2, RoundHalfUp(2.49))
	assert.Equal(t, 0, RoundHalfUp(0.0))
}
