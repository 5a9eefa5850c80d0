package telemetry

import (
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"github.com/google/uuid"
)

const (
	defaultTopicPrefix    = "devicectl"
	defaultPublishTimeout = 5 * time.Second
	defaultConnectRetries = 5
	defaultRetryInterval  = 500 * time.Millisecond
	defaultBreakerTimeout = 30 * time.Second
	defaultBreakerFails   = 5
	defaultListen         = "127.0.0.1:9475"
	defaultQueueSize      = 64
)

type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	PublishTimeout time.Duration
	ConnectRetries int
	RetryInterval  time.Duration
	BreakerTimeout time.Duration
	BreakerFails   uint32
}

func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:         "tcp://localhost:1883",
		TopicPrefix:    defaultTopicPrefix,
		PublishTimeout: defaultPublishTimeout,
		ConnectRetries: defaultConnectRetries,
		RetryInterval:  defaultRetryInterval,
		BreakerTimeout: defaultBreakerTimeout,
		BreakerFails:   defaultBreakerFails,
	}
}

func (c MQTTConfig) Validate() error {
	errFactory := errors.New()

	if c.Broker == "" {
		return errFactory.WithData(ErrInvalidConfig, "mqtt broker is required")
	}
	if c.QoS > 2 {
		return errFactory.WithData(ErrInvalidConfig, "mqtt qos must be 0, 1 or 2")
	}
	return nil
}

// withDefaults fills zero fields. An empty client ID becomes
// devicectl-<uuid>.
func (c MQTTConfig) withDefaults() MQTTConfig {
	d := DefaultMQTTConfig()
	if c.ClientID == "" {
		c.ClientID = "devicectl-" + uuid.NewString()
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = d.TopicPrefix
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = d.PublishTimeout
	}
	if c.ConnectRetries <= 0 {
		c.ConnectRetries = d.ConnectRetries
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = d.BreakerTimeout
	}
	if c.BreakerFails == 0 {
		c.BreakerFails = d.BreakerFails
	}
	return c
}

type PrometheusConfig struct {
	Listen string
}

func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{Listen: defaultListen}
}
