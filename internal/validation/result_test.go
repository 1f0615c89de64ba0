package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KennyMack/jobs/internal/domain"
)

func TestResultStartsUndefined(t *testing.T) {
	res := NewResult()
	assert.Equal(t, Undefined, res.State())
	assert.Empty(t, res.Messages())
	assert.NoError(t, res.Err())
}

func TestAddErrorForcesInvalid(t *testing.T) {
	res := NewResult()
	res.AddError("first")
	assert.Equal(t, Invalid, res.State())

	// success after an error cannot clear it
	res.AddSuccess("too late")
	assert.Equal(t, Invalid, res.State())
	assert.False(t, res.Finalize())
	assert.Equal(t, []string{"first", "too late"}, res.Messages())
}

func TestAddSuccessAdvancesToValid(t *testing.T) {
	res := NewResult()
	res.AddSuccess("looks good")
	assert.Equal(t, Valid, res.State())
	assert.True(t, res.Finalize())
}

func TestFinalizePromotesUndefined(t *testing.T) {
	// absence of errors means implicit validity
	res := NewResult()
	assert.True(t, res.Finalize())
	assert.Equal(t, Valid, res.State())
}

func TestResetClearsEverything(t *testing.T) {
	res := NewResult()
	res.AddError("stale")
	res.Reset()

	assert.Equal(t, Undefined, res.State())
	assert.Empty(t, res.Messages())
	assert.True(t, res.Finalize())
}

func TestErrReturnsAccumulatedMessages(t *testing.T) {
	res := NewResult()
	res.AddError("one")
	res.AddError("two")

	err := res.Err()
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"one", "two"}, vErr.Messages)

	// the error holds a copy, later mutation must not leak into it
	res.AddError("three")
	assert.Equal(t, []string{"one", "two"}, vErr.Messages)
}

func TestErrNilWhileValidOrUndefined(t *testing.T) {
	res := NewResult()
	assert.NoError(t, res.Err())

	res.AddSuccess("ok")
	assert.NoError(t, res.Err())
}
