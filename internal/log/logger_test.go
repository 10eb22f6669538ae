package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestBase_DisabledByDefault(t *testing.T) {
	Set(zerolog.Nop())
	l := Base()
	if l.GetLevel() != zerolog.Disabled {
		t.Fatalf("want disabled logger, got level %v", l.GetLevel())
	}
}

func TestConfigure_LevelAndComponent(t *testing.T) {
	t.Cleanup(func() { Set(zerolog.Nop()) })

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})

	l := WithComponent("repair")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked through warn level: %s", out)
	}
	if !strings.Contains(out, `"component":"repair"`) || !strings.Contains(out, "shown") {
		t.Fatalf("missing component or message: %s", out)
	}
}

func TestOr_PrefersExplicitLogger(t *testing.T) {
	var buf bytes.Buffer
	explicit := zerolog.New(&buf)
	l := Or(&explicit, "jsonio")
	l.Info().Msg("x")
	if buf.Len() == 0 {
		t.Fatalf("explicit logger was not used")
	}
}
