package dummy

import "github.com/homewatch/homewatch/pubsub"

// Dummy Publisher for testing
type Publisher struct {
	Messages []*pubsub.Message
	// Fail makes publishing to a topic return an error.
	Fail map[string]error
}

func (self *Publisher) ID() string {
	return "dummy"
}

func (self *Publisher) Publish(msg *pubsub.Message) error {
	if err, ok := self.Fail[msg.Topic]; ok {
		return err
	}
	self.Messages = append(self.Messages, msg)
	return nil
}

// Payloads of the published messages, optionally restricted to one topic.
func (self *Publisher) Payloads(topic string) []string {
	var ret []string
	for _, msg := range self.Messages {
		if topic == "" || msg.Topic == topic {
			ret = append(ret, msg.String())
		}
	}
	return ret
}
