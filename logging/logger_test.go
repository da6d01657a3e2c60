package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupWriter(&buf, "warn", "json"))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("dropped")
	log.Warn().Str("recurso", "ambitos").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "ambitos", entry["recurso"])
	assert.Equal(t, "api-tramite", entry["service"])
}

func TestSetupWriterRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, SetupWriter(&buf, "loud", "json"))
	assert.Error(t, SetupWriter(&buf, "info", "xml"))
}
