package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	values := map[string]string{
		"client_name":   "Acme",
		"deadline_type": "TVA",
		"period":        "Mensuel",
		"due_date":      "2025-07-01",
		"ice":           "N/A",
	}

	t.Run("substitutes known fields", func(t *testing.T) {
		got, err := RenderTemplate("Bonjour {client_name}", values)
		require.NoError(t, err)
		assert.Equal(t, "Bonjour Acme", got)
	})

	t.Run("substitutes several fields", func(t *testing.T) {
		got, err := RenderTemplate("{deadline_type} ({period}) due le {due_date}", values)
		require.NoError(t, err)
		assert.Equal(t, "TVA (Mensuel) due le 2025-07-01", got)
	})

	t.Run("unknown field is an error", func(t *testing.T) {
		_, err := RenderTemplate("Bonjour {unknown_field}", values)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown_field")
	})

	t.Run("missing optional field renders N/A when provided as such", func(t *testing.T) {
		got, err := RenderTemplate("ICE: {ice}", values)
		require.NoError(t, err)
		assert.Equal(t, "ICE: N/A", got)
	})

	t.Run("text without placeholders passes through", func(t *testing.T) {
		got, err := RenderTemplate("Merci de prendre les mesures nécessaires.", values)
		require.NoError(t, err)
		assert.Equal(t, "Merci de prendre les mesures nécessaires.", got)
	})

	t.Run("unmatched braces stay literal", func(t *testing.T) {
		got, err := RenderTemplate("rate {100%} for {client_name}", values)
		require.NoError(t, err)
		assert.Equal(t, "rate {100%} for Acme", got)
	})
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", OrNA(""))
	assert.Equal(t, "N/A", OrNA("   "))
	assert.Equal(t, "SARL", OrNA("SARL"))
}
