package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater/internal/models"
)

func TestPlayRefEncoding(t *testing.T) {
	raw, err := encodePlayRef(&models.PlayRef{ID: 3, Title: "Hamlet"})
	require.NoError(t, err)

	ref, err := decodePlayRef(raw)
	require.NoError(t, err)
	assert.Equal(t, &models.PlayRef{ID: 3, Title: "Hamlet"}, ref)
}

func TestNilPlayRefIsCachedAsNull(t *testing.T) {
	raw, err := encodePlayRef(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", raw)

	ref, err := decodePlayRef(raw)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := decodePlayRef("{not json")
	assert.Error(t, err)
}
