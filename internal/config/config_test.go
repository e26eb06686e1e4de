package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_OverlaysOnDefaults(t *testing.T) {
	t.Setenv("TAVOO_IDLE_EXPIRY_SECONDS", "60")
	t.Setenv("TAVOO_ONESEG", "true")
	t.Setenv("TAVOO_SERVICE_LABEL", "channel-1")

	c := FromEnv()
	assert.Equal(t, 60.0, c.IdleExpirySeconds)
	assert.True(t, c.OneSeg)
	assert.Equal(t, "channel-1", c.ServiceLabel)
	assert.Equal(t, Default().PendingValidateWindowSeconds, c.PendingValidateWindowSeconds)
}

func TestGetEnv_FallsBackWhenUnset(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("TAVOO_UNSET_TEST_VAR", "fallback"))

	t.Setenv("TAVOO_UNSET_TEST_VAR", "value")
	assert.Equal(t, "value", GetEnv("TAVOO_UNSET_TEST_VAR", "fallback"))
}

func TestGetEnvFloat_IgnoresUnparseableValue(t *testing.T) {
	t.Setenv("TAVOO_BAD_FLOAT", "not-a-number")
	assert.Equal(t, 5.0, GetEnvFloat("TAVOO_BAD_FLOAT", 5.0))
}

func TestGetEnvBool_IgnoresUnparseableValue(t *testing.T) {
	t.Setenv("TAVOO_BAD_BOOL", "not-a-bool")
	assert.False(t, GetEnvBool("TAVOO_BAD_BOOL", false))
}
