package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("PHARMACY_TEST_STR", "value")

	assert.Equal(t, "value", EnvDefault("PHARMACY_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("PHARMACY_TEST_MISSING", "def"))
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("PHARMACY_TEST_INT", "9090")
	t.Setenv("PHARMACY_TEST_BAD_INT", "nine")

	assert.Equal(t, 9090, EnvIntDefault("PHARMACY_TEST_INT", 8080))
	assert.Equal(t, 8080, EnvIntDefault("PHARMACY_TEST_BAD_INT", 8080))
	assert.Equal(t, 8080, EnvIntDefault("PHARMACY_TEST_MISSING", 8080))
}

func TestEnvDurationDefault(t *testing.T) {
	t.Setenv("PHARMACY_TEST_DUR", "2h")
	t.Setenv("PHARMACY_TEST_MS", "1500")
	t.Setenv("PHARMACY_TEST_BAD_DUR", "soon")

	assert.Equal(t, 2*time.Hour, EnvDurationDefault("PHARMACY_TEST_DUR", time.Hour))
	assert.Equal(t, 1500*time.Millisecond, EnvDurationDefault("PHARMACY_TEST_MS", time.Second))
	assert.Equal(t, time.Hour, EnvDurationDefault("PHARMACY_TEST_BAD_DUR", time.Hour))
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("PHARMACY_TEST_BOOL", "false")

	assert.False(t, EnvBoolDefault("PHARMACY_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("PHARMACY_TEST_MISSING", true))
}
