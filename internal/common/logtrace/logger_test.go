package logtrace

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { InitLogger(false) })

	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Str("address", "a@icloud.com").Msg("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "a@icloud.com")

	buf.Reset()
	InitLoggerWithWriter(&buf, true)
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
