package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (*fakeToken) Wait() bool                     { return true }
func (*fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                 { return t.err }

func (*fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeBroker struct {
	mu          sync.Mutex
	connectErrs []error
	publishErr  error
	connects    int
	clientID    string
	messages    []published
	connected   bool
}

func (b *fakeBroker) factory(opts *mqtt.ClientOptions) mqtt.Client {
	b.mu.Lock()
	b.clientID = opts.ClientID
	b.mu.Unlock()
	return &fakeClient{broker: b}
}

func (b *fakeBroker) published() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.messages...)
}

type fakeClient struct {
	broker *fakeBroker
}

func (c *fakeClient) IsConnected() bool {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	return c.broker.connected
}

func (c *fakeClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *fakeClient) Connect() mqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	b.connects++
	if len(b.connectErrs) > 0 {
		err := b.connectErrs[0]
		b.connectErrs = b.connectErrs[1:]
		return &fakeToken{err: err}
	}
	b.connected = true
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.connected = false
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload any) mqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.publishErr != nil {
		return &fakeToken{err: b.publishErr}
	}

	var data []byte
	switch p := payload.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	}
	b.messages = append(b.messages, published{topic: topic, retained: retained, payload: data})
	return &fakeToken{}
}

func (*fakeClient) Subscribe(string, byte, mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (*fakeClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (*fakeClient) Unsubscribe(...string) mqtt.Token        { return &fakeToken{} }
func (*fakeClient) AddRoute(string, mqtt.MessageHandler)     {}
func (*fakeClient) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

func testMQTTConfig() MQTTConfig {
	cfg := DefaultMQTTConfig()
	cfg.Broker = "tcp://broker.test:1883"
	cfg.TopicPrefix = "home/laptop"
	cfg.RetryInterval = time.Millisecond
	cfg.BreakerFails = 2
	cfg.BreakerTimeout = time.Hour
	return cfg
}

func TestMQTTSinkPublishesJSON(t *testing.T) {
	broker := &fakeBroker{}
	sink, err := NewMQTTSink(context.Background(), testMQTTConfig(), logger.Default(), withClientFactory(broker.factory))
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Publish(context.Background(), Update{
		Signal:    SignalBatteryLevel,
		Value:     55,
		State:     "55%",
		Available: true,
		Timestamp: at,
	}))

	msgs := broker.published()
	require.Len(t, msgs, 2)

	assert.Equal(t, "home/laptop/status", msgs[0].topic)
	assert.True(t, msgs[0].retained)
	assert.Equal(t, "online", string(msgs[0].payload))

	assert.Equal(t, "home/laptop/battery_level", msgs[1].topic)
	assert.False(t, msgs[1].retained)

	var got Update
	require.NoError(t, json.Unmarshal(msgs[1].payload, &got))
	assert.Equal(t, SignalBatteryLevel, got.Signal)
	assert.Equal(t, 55, got.Value)
	assert.True(t, got.Timestamp.Equal(at))
}

func TestMQTTSinkGeneratesClientID(t *testing.T) {
	broker := &fakeBroker{}
	_, err := NewMQTTSink(context.Background(), testMQTTConfig(), logger.Default(), withClientFactory(broker.factory))
	require.NoError(t, err)

	assert.Regexp(t, `^devicectl-[0-9a-f-]{36}$`, broker.clientID)
}

func TestMQTTSinkRetriesConnect(t *testing.T) {
	broker := &fakeBroker{connectErrs: []error{assert.AnError, assert.AnError}}
	_, err := NewMQTTSink(context.Background(), testMQTTConfig(), logger.Default(), withClientFactory(broker.factory))
	require.NoError(t, err)
	assert.Equal(t, 3, broker.connects)
}

func TestMQTTSinkGivesUpAfterRetries(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.ConnectRetries = 2
	broker := &fakeBroker{connectErrs: []error{assert.AnError, assert.AnError, assert.AnError}}

	_, err := NewMQTTSink(context.Background(), cfg, logger.Default(), withClientFactory(broker.factory))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrConnectFailed))
	assert.Equal(t, 2, broker.connects)
}

func TestMQTTSinkBreakerOpens(t *testing.T) {
	broker := &fakeBroker{}
	sink, err := NewMQTTSink(context.Background(), testMQTTConfig(), logger.Default(), withClientFactory(broker.factory))
	require.NoError(t, err)

	broker.mu.Lock()
	broker.publishErr = assert.AnError
	broker.mu.Unlock()

	u := Update{Signal: SignalThermal, Available: true}
	for range 2 {
		err := sink.Publish(context.Background(), u)
		assert.True(t, errors.HasCode(err, ErrPublishFailed))
	}

	err = sink.Publish(context.Background(), u)
	assert.True(t, errors.HasCode(err, ErrSinkUnavailable))
}

func TestMQTTSinkClose(t *testing.T) {
	broker := &fakeBroker{}
	sink, err := NewMQTTSink(context.Background(), testMQTTConfig(), logger.Default(), withClientFactory(broker.factory))
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	msgs := broker.published()
	last := msgs[len(msgs)-1]
	assert.Equal(t, "home/laptop/status", last.topic)
	assert.Equal(t, "offline", string(last.payload))

	err = sink.Publish(context.Background(), Update{Signal: SignalBrightness})
	assert.True(t, errors.HasCode(err, ErrSinkClosed))
}

func TestMQTTConfigValidate(t *testing.T) {
	cfg := DefaultMQTTConfig()
	cfg.Broker = ""
	assert.True(t, errors.HasCode(cfg.Validate(), ErrInvalidConfig))

	cfg = DefaultMQTTConfig()
	cfg.QoS = 3
	assert.True(t, errors.HasCode(cfg.Validate(), ErrInvalidConfig))
}
