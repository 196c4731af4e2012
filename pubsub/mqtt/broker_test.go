package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/homewatch/homewatch/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	connectErrs []error
	connects    int
	publishErr  error
	published   []published
	subscribed  []map[string]byte
	unsubscribe []string
}

func (c *fakeClient) IsConnected() bool { return true }

func (c *fakeClient) Connect() MQTT.Token {
	c.connects++
	if len(c.connectErrs) > 0 {
		err := c.connectErrs[0]
		c.connectErrs = c.connectErrs[1:]
		return &fakeToken{err}
	}
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) {}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token {
	if c.publishErr != nil {
		return &fakeToken{c.publishErr}
	}
	c.published = append(c.published, published{topic, payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, _ MQTT.MessageHandler) MQTT.Token {
	c.subscribed = append(c.subscribed, filters)
	return &fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) MQTT.Token {
	c.unsubscribe = append(c.unsubscribe, topics...)
	return &fakeToken{}
}

func newTestBroker(c *fakeClient, retries uint64) *Broker {
	b := &Broker{url: "tcp://test:1883", client: c}
	b.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retries)
	}
	b.subscriber = NewSubscriber(b)
	return b
}

func TestReconnectSchedule(t *testing.T) {
	b := ReconnectBackOff()
	expected := []time.Duration{1, 2, 4, 8, 16, 32, 60, 60, 60, 60, 60, 60}
	for i, e := range expected {
		assert.Equal(t, e*time.Second, b.NextBackOff(), "retry %d", i)
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}

func TestConnectRetries(t *testing.T) {
	c := &fakeClient{connectErrs: []error{errors.New("refused"), errors.New("refused")}}
	b := newTestBroker(c, 5)
	require.NoError(t, b.Connect())
	assert.Equal(t, 3, c.connects)
	assert.True(t, b.IsConnected())
}

func TestConnectGivesUp(t *testing.T) {
	refused := errors.New("refused")
	c := &fakeClient{connectErrs: []error{refused, refused, refused, refused}}
	b := newTestBroker(c, 2)
	assert.Error(t, b.Connect())
	assert.Equal(t, 3, c.connects)
	assert.False(t, b.IsConnected())
}

func TestEnsureConnected(t *testing.T) {
	c := &fakeClient{}
	b := newTestBroker(c, 1)
	require.NoError(t, b.EnsureConnected())
	assert.Equal(t, 1, c.connects)
	require.NoError(t, b.EnsureConnected())
	assert.Equal(t, 1, c.connects)

	b.connectionLost(errors.New("eof"))
	assert.False(t, b.IsConnected())
	require.NoError(t, b.EnsureConnected())
	assert.Equal(t, 2, c.connects)
}

func TestEnsureConnectedTesting(t *testing.T) {
	c := &fakeClient{}
	b := newTestBroker(c, 1)
	b.opts.Testing = true
	require.NoError(t, b.EnsureConnected())
	assert.Equal(t, 0, c.connects)
}

func TestPublish(t *testing.T) {
	c := &fakeClient{}
	pub := newTestBroker(c, 1).Publisher()
	require.NoError(t, pub.Publish(pubsub.NewMessage("monitoring/recording", 1)))
	assert.Equal(t, []published{{"monitoring/recording", []byte("1")}}, c.published)

	c.publishErr = errors.New("not connected")
	err := pub.Publish(pubsub.NewMessage("monitoring/recording", 0))
	assert.EqualError(t, err, "publish to monitoring/recording: not connected")
}

func TestSubscribe(t *testing.T) {
	c := &fakeClient{}
	b := newTestBroker(c, 1)
	sub := b.Subscriber()

	// not yet connected: subscribed by the connect handler
	ch := sub.Subscribe(pubsub.Exact("monitoring/motion"), pubsub.Prefix("monitoring/storage"))
	assert.Empty(t, c.subscribed)
	require.NoError(t, b.Connect())
	sub.connectHandler()
	require.Len(t, c.subscribed, 1)
	assert.Equal(t, map[string]byte{"monitoring/motion": 1, "monitoring/storage/#": 1}, c.subscribed[0])

	sub.dispatch("monitoring/motion", []byte("1"), false)
	sub.dispatch("monitoring/other", []byte("1"), false)
	sub.dispatch("monitoring/storage/mode", []byte("remote"), false)
	var got []string
	pubsub.Drain(ch, func(msg *pubsub.Message) { got = append(got, msg.Topic+"="+msg.String()) })
	assert.Equal(t, []string{"monitoring/motion=1", "monitoring/storage/mode=remote"}, got)

	sub.Close(ch)
	assert.ElementsMatch(t, []string{"monitoring/motion", "monitoring/storage/#"}, c.unsubscribe)
}

func TestDispatchDropsWhenFull(t *testing.T) {
	b := newTestBroker(&fakeClient{}, 1)
	sub := b.Subscriber()
	ch := sub.Subscribe(pubsub.All())
	for i := 0; i < ChannelSize+10; i++ {
		sub.dispatch("a", []byte("1"), false)
	}
	assert.Equal(t, ChannelSize, len(ch))
}

func TestBrokerURL(t *testing.T) {
	assert.Equal(t, "ssl://broker.local:8883", brokerURL(Options{Host: "broker.local", Port: 8883, TLS: true}))
	assert.Equal(t, "tcp://broker.local:1883", brokerURL(Options{Host: "broker.local", Port: 1883}))
}

func TestNewBrokerErrors(t *testing.T) {
	_, err := NewBroker(Options{})
	assert.Error(t, err)
	_, err = NewBroker(Options{Host: "x", Port: 8883, TLS: true, CACert: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}

func TestClientID(t *testing.T) {
	id := clientID("camera")
	assert.Regexp(t, `^camera-mqtt-client-[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, clientID("camera"))
}
