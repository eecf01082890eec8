package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := Setup("info", FormatJSON, &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("kind", "quiz").Msg("generated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "quiz", line["kind"])
	assert.Equal(t, "generated", line["message"])
}

func TestSetupPretty(t *testing.T) {
	var buf bytes.Buffer
	log, err := Setup("DEBUG", FormatPretty, &buf)
	require.NoError(t, err)

	log.Debug().Msg("recovered")
	assert.Contains(t, buf.String(), "recovered")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestSetupErrors(t *testing.T) {
	_, err := Setup("loud", FormatJSON, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = Setup("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
