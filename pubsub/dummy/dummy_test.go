package dummy

import (
	"errors"
	"testing"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/stretchr/testify/assert"
)

func TestInterfaces(t *testing.T) {
	var _ pubsub.Publisher = (*Publisher)(nil)
	var _ pubsub.Subscriber = (*Subscriber)(nil)
}

func TestPublisherFail(t *testing.T) {
	pub := &Publisher{Fail: map[string]error{"bad": errors.New("broker down")}}
	assert.NoError(t, pub.Publish(pubsub.NewMessage("good", 1)))
	assert.Error(t, pub.Publish(pubsub.NewMessage("bad", 1)))
	assert.Equal(t, []string{"1"}, pub.Payloads(""))
}

func TestSubscriberReplayAndInject(t *testing.T) {
	sub := &Subscriber{Messages: []*pubsub.Message{
		pubsub.NewMessage("a", "1"),
		pubsub.NewMessage("b", "2"),
	}}
	ch := sub.Subscribe(pubsub.Exact("a"))
	sub.Inject(pubsub.NewMessage("a", "3"))
	sub.Inject(pubsub.NewMessage("b", "4"))

	var got []string
	pubsub.Drain(ch, func(msg *pubsub.Message) { got = append(got, msg.String()) })
	assert.Equal(t, []string{"1", "3"}, got)

	sub.Close(ch)
	_, ok := <-ch
	assert.False(t, ok)
}
