// Package dryrun provides a Publisher that logs what it would have
// published. Used when the testing flag is set.
package dryrun

import (
	"log"

	"github.com/homewatch/homewatch/pubsub"
)

type Publisher struct {
	Name string
}

func (pub *Publisher) ID() string {
	return "dryrun: " + pub.Name
}

func (pub *Publisher) Publish(msg *pubsub.Message) error {
	log.Printf("TESTING: would publish: Topic: %s. Payload: %s", msg.Topic, msg.Summary())
	return nil
}
