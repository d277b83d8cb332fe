package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNew_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "suministros-api", Out: &buf})

	comp := l.Component("supply")
	comp.Info().Str("supply_id", "s1").Msg("recepción registrada")
	l.Debug().Msg("no se emite")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "suministros-api", line["service"])
	assert.Equal(t, "supply", line["component"])
	assert.Equal(t, "s1", line["supply_id"])
	assert.Equal(t, "info", line["level"])
}
