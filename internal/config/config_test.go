package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACTIVATION_TTL_MIN", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.ActivationTTL)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("ACTIVATION_TTL_MIN", "5")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.ActivationTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.CookieSecure)
}

func TestValidate_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACTIVATION_SECRET", "")
	err := Load().Validate()
	assert.ErrorContains(t, err, "JWT_SECRET, ACTIVATION_SECRET must be set")

	t.Setenv("JWT_SECRET", "session-key")
	assert.ErrorContains(t, Load().Validate(), "ACTIVATION_SECRET must be set")

	t.Setenv("ACTIVATION_SECRET", "session-key")
	assert.ErrorContains(t, Load().Validate(), "must differ")

	t.Setenv("ACTIVATION_SECRET", "activation-key")
	assert.NoError(t, Load().Validate())
}
