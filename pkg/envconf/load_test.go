package envconf

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BasicTypes(t *testing.T) {
	t.Setenv("EC_TEST_STR", "hello")
	t.Setenv("EC_TEST_INT", "42")
	t.Setenv("EC_TEST_BOOL", "true")
	t.Setenv("EC_TEST_FLOAT", "2.5")
	t.Setenv("EC_TEST_DUR", "1m30s")

	var cfg struct {
		Str   string        `env:"EC_TEST_STR"`
		Int   int           `env:"EC_TEST_INT"`
		Bool  bool          `env:"EC_TEST_BOOL"`
		Float float64       `env:"EC_TEST_FLOAT"`
		Dur   time.Duration `env:"EC_TEST_DUR"`
	}

	require.NoError(t, Load(&cfg))

	assert.Equal(t, "hello", cfg.Str)
	assert.Equal(t, 42, cfg.Int)
	assert.True(t, cfg.Bool)
	assert.InDelta(t, 2.5, cfg.Float, 0)
	assert.Equal(t, 90*time.Second, cfg.Dur)
}

func TestLoad_DefaultTag(t *testing.T) {
	var cfg struct {
		Port int `env:"EC_TEST_MISSING_PORT" default:"8080"`
	}

	require.NoError(t, Load(&cfg))
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("EC_TEST_PORT", "9090")

	var cfg struct {
		Port int `env:"EC_TEST_PORT" default:"8080"`
	}

	require.NoError(t, Load(&cfg))
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_MissingRequired(t *testing.T) {
	var cfg struct {
		DSN string `env:"EC_TEST_ABSENT"`
	}

	err := Load(&cfg)

	require.ErrorIs(t, err, ErrMissingRequired)
	assert.ErrorContains(t, err, "EC_TEST_ABSENT")
}

func TestLoad_NestedStruct(t *testing.T) {
	t.Setenv("EC_TEST_NESTED", "inner")

	var cfg struct {
		Inner struct {
			Value string `env:"EC_TEST_NESTED"`
		}
		Ptr *struct {
			Value string `env:"EC_TEST_NESTED"`
		}
	}

	require.NoError(t, Load(&cfg))

	assert.Equal(t, "inner", cfg.Inner.Value)
	require.NotNil(t, cfg.Ptr)
	assert.Equal(t, "inner", cfg.Ptr.Value)
}

func TestLoad_TextUnmarshaler(t *testing.T) {
	t.Setenv("EC_TEST_LEVEL", "warn")

	var cfg struct {
		Level slog.Level `env:"EC_TEST_LEVEL"`
	}

	require.NoError(t, Load(&cfg))
	assert.Equal(t, slog.LevelWarn, cfg.Level)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("EC_TEST_BAD_INT", "not-a-number")

	var cfg struct {
		N int `env:"EC_TEST_BAD_INT"`
	}

	assert.Error(t, Load(&cfg))
}

func TestLoad_RejectsNonStruct(t *testing.T) {
	assert.Error(t, Load(nil))

	var n int
	assert.Error(t, Load(&n))
}
