package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ConversationID string `json:"conversationId"`
	Count          int    `json:"count"`
	IsTyping       bool   `json:"isTyping"`
}

func TestMapByJSONTag(t *testing.T) {
	p, err := Map[samplePayload](map[string]any{
		"conversationId": "42",
		"count":          3,
		"isTyping":       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ConversationID)
	assert.Equal(t, 3, p.Count)
	assert.True(t, p.IsTyping)
}

func TestMapWeakTyping(t *testing.T) {
	// json.Unmarshal into map[string]any yields float64 numbers
	p, err := Map[samplePayload](map[string]any{
		"conversationId": float64(42),
		"count":          "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ConversationID)
	assert.Equal(t, 7, p.Count)
}

func TestMapStrictTyping(t *testing.T) {
	_, err := Map[samplePayload](map[string]any{
		"count": "7",
	}, Options{WeaklyTypedInput: false})
	require.Error(t, err)
}

func TestMapNilPayload(t *testing.T) {
	_, err := Map[samplePayload](nil)
	require.Error(t, err)
}

func TestMapIgnoresUnknownKeys(t *testing.T) {
	p, err := Map[samplePayload](map[string]any{
		"conversationId": "9",
		"extra":          "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "9", p.ConversationID)
}
