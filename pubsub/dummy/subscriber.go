package dummy

import "github.com/homewatch/homewatch/pubsub"

type subscription struct {
	topics []pubsub.Topic
	C      chan *pubsub.Message
}

// Subscriber for testing. Messages are replayed into each new subscription;
// Inject delivers to subscriptions already made.
type Subscriber struct {
	Messages      []*pubsub.Message
	subscriptions []subscription
}

// ID of Subscriber
func (sub *Subscriber) ID() string {
	return "dummy"
}

func matches(topics []pubsub.Topic, topic string) bool {
	for _, t := range topics {
		if t.Match(topic) {
			return true
		}
	}
	return false
}

func (sub *Subscriber) Subscribe(topics ...pubsub.Topic) <-chan *pubsub.Message {
	s := subscription{topics: topics, C: make(chan *pubsub.Message, 64)}
	for _, msg := range sub.Messages {
		if matches(topics, msg.Topic) {
			s.C <- msg
		}
	}
	sub.subscriptions = append(sub.subscriptions, s)
	return s.C
}

func (sub *Subscriber) Inject(msg *pubsub.Message) {
	for _, s := range sub.subscriptions {
		if matches(s.topics, msg.Topic) {
			s.C <- msg
		}
	}
}

// Close the channel
func (sub *Subscriber) Close(ch <-chan *pubsub.Message) {
	var keep []subscription
	for _, s := range sub.subscriptions {
		if ch == (<-chan *pubsub.Message)(s.C) {
			close(s.C)
		} else {
			keep = append(keep, s)
		}
	}
	sub.subscriptions = keep
}
