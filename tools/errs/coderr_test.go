package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := ErrArgs.WrapMsg("missing field", "field", "conversationId")
	assert.True(t, ErrArgs.Is(err))
	assert.False(t, ErrRecordMiss.Is(err))
	assert.True(t, errors.Is(err, ErrArgs))
}

func TestWrapMsgKeepsCodeAndAppendsDetail(t *testing.T) {
	err := ErrRecordMiss.WrapMsg("user lookup", "id", 42)
	var ce *CodeError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, RecordMissCode, ce.Code)
	assert.Contains(t, ce.Detail, "user lookup")
	assert.Contains(t, ce.Detail, "id=42")
}

func TestWithDetailChains(t *testing.T) {
	e := ErrStore.WithDetail("insert failed").WithDetail("retrying")
	assert.Equal(t, "insert failed, retrying", e.Detail)
	// the predefined sentinel itself is untouched
	assert.Empty(t, ErrStore.Detail)
}

func TestErrorStringFormat(t *testing.T) {
	assert.Equal(t, "2001 bad request", ErrArgs.Error())
	assert.Equal(t, "3002 record not found x", ErrRecordMiss.WithDetail("x").Error())
}

func TestNewUsesUnknownCode(t *testing.T) {
	e := New("boom", "k", "v")
	assert.Equal(t, UnknownCode, e.Code)
	assert.Contains(t, e.Msg, "boom")
	assert.Contains(t, e.Msg, "k=v")
}
