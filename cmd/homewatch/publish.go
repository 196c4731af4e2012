package main

import (
	"fmt"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/services"
)

// publish a single message, e.g. to switch the camera storage mode:
//
//	homewatch publish monitoring/file_storage both
func publish(topic, payload string, retained bool) {
	if services.Config.Local.Host == "" {
		fatalf("Set MQTT_LOCAL_SERVER to publish")
	}
	services.Config.Remote.Host = ""
	if err := services.SetupBroker("publish"); err != nil {
		fatalf("Error connecting: %s", err)
	}
	defer services.Shutdown()

	msg := pubsub.NewMessage(topic, payload)
	msg.SetRetained(retained)
	if err := services.Publisher.Publish(msg); err != nil {
		fatalf("Error publishing: %s", err)
	}
	fmt.Printf("Published %s to %s\n", msg.Summary(), topic)
}
