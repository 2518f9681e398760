package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New(ErrOutOfRange, 400999, "index out of range", "", nil)

func TestDeriveMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := errSentinel.Derive("index %d not in [0, %d)", 7, 3).WithContext("index", 7)

	require.ErrorIs(t, err, errSentinel)
	assert.Equal(t, "index 7 not in [0, 3)", err.Detail)
	assert.Equal(t, 7, err.Context["index"])
	assert.Empty(t, errSentinel.Context, "sentinel must stay untouched")
	assert.NotEmpty(t, err.Stack)
}

func TestIsRejectsOtherCodes(t *testing.T) {
	t.Parallel()

	other := New(ErrOutOfRange, 400998, "other", "", nil)
	assert.False(t, errors.Is(other, errSentinel))
	assert.False(t, errors.Is(other, fmt.Errorf("plain")))
}

func TestWrapKeepsCodeAndChain(t *testing.T) {
	t.Parallel()

	base := errSentinel.Derive("detail").WithContext("size", 3)
	wrapped := Wrap(base, ErrInternal, "replay step failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrOutOfRange, wrapped.Type)
	assert.Equal(t, 400999, wrapped.Code)
	assert.Equal(t, 3, wrapped.Context["size"])
	assert.ErrorIs(t, wrapped, errSentinel)
	assert.Contains(t, wrapped.Error(), "replay step failed")

	assert.Nil(t, Wrap(nil, ErrInternal, "x"))
}

func TestWrapPlainError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	wrapped := WrapInternal(cause, "load failed")

	assert.Equal(t, ErrInternal, wrapped.Type)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "[Internal] 1: load failed (Cause: boom)", wrapped.Error())
}

func TestFromErrorAndCodeOf(t *testing.T) {
	t.Parallel()

	e := NotFound("snapshot missing")
	wrapped := fmt.Errorf("outer: %w", e)

	got, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, 404, CodeOf(wrapped))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))

	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestErrorTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OutOfRange", ErrOutOfRange.String())
	assert.Equal(t, "InvalidArg", ErrInvalidArg.String())
	assert.Equal(t, "Unknown", ErrorType(99).String())
	assert.Equal(t, "[InvalidArg] 400: bad", InvalidArg("bad").Error())
	assert.Equal(t, 416, OutOfRange("x").Code)
	assert.Equal(t, 500, Internal("x", nil).Code)
}
