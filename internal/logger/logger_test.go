package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigureLevelAndComponent(t *testing.T) {
	defer Configure(Config{Level: "info", Pretty: true})

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	Info().Msg("hidden")
	log := With("matcher")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"component":"matcher"`) || !strings.Contains(out, `"message":"shown"`) {
		t.Fatalf("output = %s", out)
	}
}

func TestConfigureUnknownLevel(t *testing.T) {
	defer Configure(Config{Level: "info", Pretty: true})
	Configure(Config{Level: "chatty", Output: &bytes.Buffer{}})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s", zerolog.GlobalLevel())
	}
}
