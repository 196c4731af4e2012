package mqtt

import (
	"github.com/homewatch/homewatch/pubsub"
	"github.com/pkg/errors"
)

// Publisher for mqtt
type Publisher struct {
	broker *Broker
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return pub.broker.ID()
}

// Publish a message and wait for the broker to acknowledge it.
func (pub *Publisher) Publish(msg *pubsub.Message) error {
	token := pub.broker.client.Publish(msg.Topic, QoS, msg.Retained, msg.Payload)
	if !token.WaitTimeout(PublishTimeout) {
		return errors.Errorf("publish to %s timed out", msg.Topic)
	}
	return errors.Wrapf(token.Error(), "publish to %s", msg.Topic)
}
