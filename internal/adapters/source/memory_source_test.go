package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	t.Run("Возвращает копию данных", func(t *testing.T) {
		original := []byte(`{"name": "чат"}`)
		src := NewMemorySource("stdin", original)

		got, err := src.Fetch()
		require.NoError(t, err)
		assert.Equal(t, original, got)

		got[0] = 'X'
		assert.Equal(t, []byte(`{"name": "чат"}`), original)
	})

	t.Run("Пустой источник", func(t *testing.T) {
		for _, data := range [][]byte{nil, {}} {
			got, err := NewMemorySource("stdin", data).Fetch()
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Contains(t, err.Error(), "источник stdin не содержит данных")
		}
	})
}
