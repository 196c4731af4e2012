package mqtt

import (
	"log"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/homewatch/homewatch/pubsub"
)

// ChannelSize is the inbound buffer per subscription. The service loops
// block for a whole recording, so this must absorb a few seconds of control
// traffic.
const ChannelSize = 256

type eventChannel struct {
	C      chan *pubsub.Message
	topics []pubsub.Topic
}

// Subscriber struct
type Subscriber struct {
	broker         *Broker
	channels       []eventChannel
	channelsLock   sync.Mutex
	topicCount     map[string]int
	topicCountLock sync.RWMutex
}

func NewSubscriber(broker *Broker) *Subscriber {
	return &Subscriber{broker: broker, topicCount: map[string]int{}}
}

func (self *Subscriber) ID() string {
	return self.broker.ID()
}

func (self *Subscriber) publishHandler(client MQTT.Client, msg MQTT.Message) {
	self.dispatch(msg.Topic(), msg.Payload(), msg.Retained())
}

func (self *Subscriber) dispatch(topic string, payload []byte, retained bool) {
	message := &pubsub.Message{
		Topic:     topic,
		Payload:   payload,
		Retained:  retained,
		Timestamp: time.Now().UTC(),
	}
	self.channelsLock.Lock()
	defer self.channelsLock.Unlock()
	for _, ch := range self.channels {
		if !matchAny(ch.topics, topic) {
			continue
		}
		// never block the paho router; acks flow through it
		select {
		case ch.C <- message:
		default:
			log.Println("Dropped message, channel full:", topic)
		}
	}
}

func matchAny(topics []pubsub.Topic, topic string) bool {
	for _, t := range topics {
		if t.Match(topic) {
			return true
		}
	}
	return false
}

func (self *Subscriber) connectHandler() {
	// (re)subscribe when (re)connected
	subs := map[string]byte{}
	self.topicCountLock.RLock()
	for topic := range self.topicCount {
		subs[topic] = QoS
	}
	self.topicCountLock.RUnlock()

	if len(subs) > 0 {
		log.Println("Connected, subscribing:", subs)
		// nil = all messages go to the default handler
		if token := self.broker.client.SubscribeMultiple(subs, nil); token.Wait() && token.Error() != nil {
			log.Println("Error subscribing:", token.Error())
		}
	}
}

func topicToMqtt(topic pubsub.Topic) string {
	switch topic := topic.(type) {
	case *pubsub.AllTopic:
		return "#"
	case *pubsub.ExactTopic:
		return topic.Exact
	case *pubsub.PrefixTopic:
		return topic.Prefix + "/#"
	default:
		log.Panicln("Topic type unsupported")
	}
	return ""
}

func (self *Subscriber) addChannel(topics []pubsub.Topic) eventChannel {
	// subscribe topics not yet subscribed to
	subs := map[string]byte{}
	self.topicCountLock.Lock()
	for _, topic := range topics {
		t := topicToMqtt(topic)
		if _, exists := self.topicCount[t]; !exists {
			subs[t] = QoS
		}
		self.topicCount[t] += 1
	}
	self.topicCountLock.Unlock()

	ch := eventChannel{
		C:      make(chan *pubsub.Message, ChannelSize),
		topics: topics,
	}
	self.channelsLock.Lock()
	self.channels = append(self.channels, ch)
	self.channelsLock.Unlock()

	// before connecting the connect handler picks these up
	if len(subs) > 0 && self.broker.IsConnected() {
		if token := self.broker.client.SubscribeMultiple(subs, nil); token.Wait() && token.Error() != nil {
			log.Println("Error subscribing:", token.Error())
		}
	}

	return ch
}

func (self *Subscriber) Subscribe(topics ...pubsub.Topic) <-chan *pubsub.Message {
	ch := self.addChannel(topics)
	return ch.C
}

func (self *Subscriber) Close(channel <-chan *pubsub.Message) {
	var channels []eventChannel
	self.channelsLock.Lock()
	for _, ch := range self.channels {
		if channel == (<-chan *pubsub.Message)(ch.C) {
			for _, topic := range ch.topics {
				t := topicToMqtt(topic)
				self.topicCountLock.Lock()
				self.topicCount[t] -= 1
				current := self.topicCount[t]
				if current == 0 {
					delete(self.topicCount, t)
				}
				self.topicCountLock.Unlock()
				if current == 0 && self.broker.IsConnected() {
					if token := self.broker.client.Unsubscribe(t); token.Wait() && token.Error() != nil {
						log.Println("Error unsubscribing:", token.Error())
					}
				}
			}
			close(ch.C)
		} else {
			channels = append(channels, ch)
		}
	}
	self.channels = channels
	self.channelsLock.Unlock()
}
