package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	QoS            = 1
	ConnectTimeout = 10 * time.Second
	PublishTimeout = 10 * time.Second
	KeepAlive      = 60 * time.Second
)

// Options for a broker connection.
type Options struct {
	Name       string
	Host       string
	Port       int
	TLS        bool
	Username   string
	Password   string
	CACert     string
	ClientCert string
	ClientKey  string
	// Testing disables reconnection after the connection drops.
	Testing bool
}

// client is the subset of MQTT.Client used here.
type client interface {
	IsConnected() bool
	Connect() MQTT.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
	SubscribeMultiple(filters map[string]byte, callback MQTT.MessageHandler) MQTT.Token
	Unsubscribe(topics ...string) MQTT.Token
}

type Broker struct {
	url        string
	opts       Options
	client     client
	connected  int32
	subscriber *Subscriber
	backoff    func() backoff.BackOff
}

func brokerURL(opts Options) string {
	scheme := "tcp"
	if opts.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, opts.Host, opts.Port)
}

func clientID(name string) string {
	return fmt.Sprintf("%s-mqtt-client-%s", name, uuid.New().String()[:8])
}

func tlsConfig(opts Options) (*tls.Config, error) {
	conf := &tls.Config{MinVersion: tls.VersionTLS12}
	if opts.CACert != "" {
		pem, err := os.ReadFile(opts.CACert)
		if err != nil {
			return nil, errors.Wrap(err, "reading ca cert")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in %s", opts.CACert)
		}
		conf.RootCAs = pool
	}
	if opts.ClientCert != "" {
		// the key may be bundled in the same pem
		key := opts.ClientKey
		if key == "" {
			key = opts.ClientCert
		}
		cert, err := tls.LoadX509KeyPair(opts.ClientCert, key)
		if err != nil {
			return nil, errors.Wrap(err, "loading client certificate")
		}
		conf.Certificates = []tls.Certificate{cert}
	}
	return conf, nil
}

// NewBroker prepares a client for the broker. Nothing is dialled until
// Connect.
func NewBroker(opts Options) (*Broker, error) {
	if opts.Host == "" {
		return nil, errors.New("mqtt host not configured")
	}
	self := &Broker{url: brokerURL(opts), opts: opts, backoff: ReconnectBackOff}
	self.subscriber = NewSubscriber(self)

	mopts := MQTT.NewClientOptions()
	mopts.AddBroker(self.url)
	mopts.SetClientID(clientID(opts.Name))
	mopts.SetCleanSession(true)
	mopts.SetKeepAlive(KeepAlive)
	mopts.SetConnectTimeout(ConnectTimeout)
	mopts.SetAutoReconnect(false)
	if opts.Username != "" {
		mopts.SetUsername(opts.Username)
		mopts.SetPassword(opts.Password)
	}
	if opts.TLS {
		conf, err := tlsConfig(opts)
		if err != nil {
			return nil, err
		}
		mopts.SetTLSConfig(conf)
	}
	mopts.SetDefaultPublishHandler(self.subscriber.publishHandler)
	mopts.SetOnConnectHandler(func(MQTT.Client) { self.subscriber.connectHandler() })
	mopts.SetConnectionLostHandler(func(_ MQTT.Client, err error) { self.connectionLost(err) })

	self.client = MQTT.NewClient(mopts)
	return self, nil
}

func (self *Broker) ID() string {
	return "mqtt: " + self.url
}

func (self *Broker) IsConnected() bool {
	return atomic.LoadInt32(&self.connected) == 1
}

func (self *Broker) connectionLost(err error) {
	atomic.StoreInt32(&self.connected, 0)
	log.Println("Disconnected from", self.url, "with:", err)
}

func (self *Broker) dial() error {
	token := self.client.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		return errors.New("connect timed out")
	}
	return token.Error()
}

// Connect dials the broker, retrying with exponential backoff. This blocks
// until connected or the retries are exhausted.
func (self *Broker) Connect() error {
	log.Println("Connecting to", self.url)
	notify := func(err error, wait time.Duration) {
		log.Printf("%s. Connect failed, retrying in %s...", err, wait)
	}
	if err := backoff.RetryNotify(self.dial, self.backoff(), notify); err != nil {
		return errors.Wrapf(err, "connecting to %s failed after %d retries", self.url, MaxReconnectCount)
	}
	atomic.StoreInt32(&self.connected, 1)
	log.Println("Connected to", self.url)
	return nil
}

// EnsureConnected reconnects after a dropped connection. With the testing
// flag set, a dropped connection is only logged.
func (self *Broker) EnsureConnected() error {
	if self.IsConnected() {
		return nil
	}
	if self.opts.Testing {
		return nil
	}
	return self.Connect()
}

func (self *Broker) Disconnect() {
	atomic.StoreInt32(&self.connected, 0)
	self.client.Disconnect(250)
}

func (self *Broker) Subscriber() *Subscriber {
	return self.subscriber
}

func (self *Broker) Publisher() *Publisher {
	return &Publisher{broker: self}
}
