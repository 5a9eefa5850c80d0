package telemetry

import (
	"context"
	"encoding/json"
	"sync"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sony/gobreaker"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
	disconnectMs  = 250
)

// MQTTSink publishes each update as JSON to <prefix>/<signal>. The broker
// connection is retried with exponential backoff and publishes go through
// a circuit breaker.
type MQTTSink struct {
	cfg     MQTTConfig
	client  mqtt.Client
	breaker *gobreaker.CircuitBreaker
	log     logger.Logger

	mu     sync.Mutex
	closed bool
}

type mqttOptions struct {
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

type MQTTOption func(*mqttOptions)

// withClientFactory replaces the paho client constructor.
func withClientFactory(fn func(*mqtt.ClientOptions) mqtt.Client) MQTTOption {
	return func(o *mqttOptions) {
		o.newClient = fn
	}
}

// NewMQTTSink connects to the broker, retrying until ctx is done or the
// retry budget is spent.
func NewMQTTSink(ctx context.Context, cfg MQTTConfig, log logger.Logger, opts ...MQTTOption) (*MQTTSink, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := &mqttOptions{newClient: mqtt.NewClient}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(cfg.Broker)
	clientOpts.SetClientID(cfg.ClientID)
	clientOpts.SetUsername(cfg.Username)
	clientOpts.SetPassword(cfg.Password)
	clientOpts.SetCleanSession(true)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetWill(statusTopic(cfg.TopicPrefix), statusOffline, cfg.QoS, true)
	clientOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	})

	s := &MQTTSink{
		cfg: cfg,
		log: log,
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.ConnectRetries-1)), ctx)

	err := backoff.Retry(func() error {
		client := o.newClient(clientOpts)
		token := client.Connect()
		if !token.WaitTimeout(cfg.PublishTimeout) {
			return errFactory.New(ErrPublishTimeout)
		}
		if err := token.Error(); err != nil {
			log.Debug().Err(err).Str("broker", cfg.Broker).Msg("MQTT connect attempt failed")
			return err
		}
		s.client = client
		return nil
	}, policy)
	if err != nil {
		return nil, errFactory.Wrap(ErrConnectFailed, err).WithData(cfg.Broker)
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mqtt",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.BreakerFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	if err := s.send(statusTopic(cfg.TopicPrefix), true, statusOnline); err != nil {
		log.Warn().Err(err).Msg("Failed to publish online status")
	}

	log.Info().
		Str("broker", cfg.Broker).
		Str("client_id", cfg.ClientID).
		Str("topic_prefix", cfg.TopicPrefix).
		Msg("Connected to MQTT broker")

	return s, nil
}

func (s *MQTTSink) Publish(ctx context.Context, update Update) error {
	errFactory := errors.New()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errFactory.New(ErrSinkClosed)
	}

	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(ErrPublishTimeout, err)
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return errFactory.Wrap(ErrEncodeFailed, err)
	}

	_, err = s.breaker.Execute(func() (any, error) {
		return nil, s.send(s.Topic(update.Signal), false, payload)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return errFactory.Wrap(ErrSinkUnavailable, err)
	default:
		return errFactory.Wrap(ErrPublishFailed, err)
	}
}

// Topic returns the topic updates for signal are published to.
func (s *MQTTSink) Topic(signal Signal) string {
	return s.cfg.TopicPrefix + "/" + string(signal)
}

// Close publishes the offline status and disconnects. It is idempotent.
func (s *MQTTSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.client.IsConnected() {
		if err := s.send(statusTopic(s.cfg.TopicPrefix), true, statusOffline); err != nil {
			s.log.Debug().Err(err).Msg("Failed to publish offline status")
		}
		s.client.Disconnect(disconnectMs)
		s.log.Info().Msg("MQTT client disconnected")
	}

	return nil
}

func (s *MQTTSink) send(topic string, retained bool, payload any) error {
	token := s.client.Publish(topic, s.cfg.QoS, retained, payload)
	if !token.WaitTimeout(s.cfg.PublishTimeout) {
		return errors.New().WithData(ErrPublishTimeout, topic)
	}
	return token.Error()
}

func statusTopic(prefix string) string {
	return prefix + "/status"
}
