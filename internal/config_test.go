package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	environ := env.EnvSet{
		"LOG_LEVEL":              "DEBUG",
		"BADGER_FILEPATH":        "/tmp/badger",
		"BLUGE_FILEPATH":         "/tmp/bluge",
		"JWT_SECRET":             "secret",
		"AUTH_TOKEN_DURATION":    "24h",
		"CONNECTION_BUFFER_SIZE": "64",
		"DELIVERY_TIMEOUT":       "250ms",
		"REPUTATION_BUFFER_SIZE": "1024",
		"REPUTATION_WORKERS":     "4",
		"TELEMETRY_BUFFER_SIZE":  "256",
		"RESTART_INTERVAL":       "200ms",
		"METRIC_INTERVAL":        "10s",
		"LOW_CAPACITY_THRESHOLD": "10",
		"MAX_CONTENT_LENGTH":     "2000",
		"LIMIT_MESSAGES":         "50",
	}

	var config Config
	err := env.Unmarshal(environ, &config)

	req.NoError(err)
	req.Equal(8080, config.Port)
	req.Equal(9090, config.HealthPort)
	req.Equal(250*time.Millisecond, config.DeliveryTimeout)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.NotNil(config.LimitMessages)
	req.Equal(50, *config.LimitMessages)
	req.Equal(20, config.SearchLimit)
}

func TestConfig_LimitMessages_Is_Optional(t *testing.T) {
	req := require.New(t)
	environ := env.EnvSet{
		"LOG_LEVEL":              "INFO",
		"BADGER_FILEPATH":        "/tmp/badger",
		"BLUGE_FILEPATH":         "/tmp/bluge",
		"JWT_SECRET":             "secret",
		"AUTH_TOKEN_DURATION":    "24h",
		"CONNECTION_BUFFER_SIZE": "64",
		"DELIVERY_TIMEOUT":       "250ms",
		"REPUTATION_BUFFER_SIZE": "1024",
		"REPUTATION_WORKERS":     "4",
		"TELEMETRY_BUFFER_SIZE":  "256",
		"RESTART_INTERVAL":       "200ms",
		"METRIC_INTERVAL":        "10s",
		"LOW_CAPACITY_THRESHOLD": "10",
		"MAX_CONTENT_LENGTH":     "2000",
	}

	var config Config
	err := env.Unmarshal(environ, &config)

	// Without LIMIT_MESSAGES a history page is unbounded
	req.NoError(err)
	req.Nil(config.LimitMessages)
}

func TestConfig_Missing_Required(t *testing.T) {
	req := require.New(t)
	var config Config
	err := env.Unmarshal(env.EnvSet{"LOG_LEVEL": "INFO"}, &config)
	req.Error(err)
}
