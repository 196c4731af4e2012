package dryrun

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/stretchr/testify/assert"
)

func TestPublishLogs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	pub := &Publisher{Name: "camera"}
	assert.NoError(t, pub.Publish(pubsub.NewMessage("monitoring/recording", 1)))
	assert.Contains(t, buf.String(), "TESTING: would publish: Topic: monitoring/recording. Payload: 1")
	assert.Equal(t, "dryrun: camera", pub.ID())
}
