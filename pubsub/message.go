package pubsub

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// A Message is a single payload on a feed. Payloads are plain strings on the
// wire: "1"/"0" flags, mode names, base64 images.
type Message struct {
	Topic     string
	Payload   []byte
	Retained  bool
	Timestamp time.Time
}

func NewMessage(topic string, payload interface{}) *Message {
	return &Message{
		Topic:     topic,
		Payload:   encodePayload(payload),
		Timestamp: time.Now().UTC(),
	}
}

func encodePayload(payload interface{}) []byte {
	switch v := payload.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	case bool:
		if v {
			return []byte("1")
		}
		return []byte("0")
	case int:
		return []byte(strconv.Itoa(v))
	case int64:
		return []byte(strconv.FormatInt(v, 10))
	case float64:
		return []byte(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return []byte(fmt.Sprint(v))
	}
}

func (msg *Message) SetRetained(retained bool) {
	msg.Retained = retained
}

func (msg *Message) String() string {
	return string(msg.Payload)
}

// Flag is true only for the exact payload "1".
func (msg *Message) Flag() bool {
	return msg.String() == "1"
}

func (msg *Message) Contains(s string) bool {
	return strings.Contains(msg.String(), s)
}

// Summary is the message truncated for logging.
func (msg *Message) Summary() string {
	s := msg.String()
	if len(s) > 64 {
		return fmt.Sprintf("%s... (%d bytes)", s[:64], len(s))
	}
	return s
}
