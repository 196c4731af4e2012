package pubsub

type Topic interface {
	Match(topic string) bool
}

type Publisher interface {
	ID() string
	Publish(msg *Message) error
}

type Subscriber interface {
	ID() string
	Subscribe(topics ...Topic) <-chan *Message
	Close(<-chan *Message)
}
