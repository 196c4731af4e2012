package motion

import (
	"testing"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/pubsub/dummy"
	"github.com/homewatch/homewatch/sensor"
	"github.com/homewatch/homewatch/services"
	"github.com/stretchr/testify/assert"
)

func Example_interfaces() {
	var _ services.Service = (*Service)(nil)
	var _ services.ServiceInit = (*Service)(nil)
	// Output:
}

type script struct {
	values []bool
}

func (s *script) Poll() (sensor.Reading, error) {
	v := s.values[0]
	s.values = s.values[1:]
	return sensor.Reading{Value: v}, nil
}

func (s *script) Close() error { return nil }

func newDetector(values ...bool) (*Detector, *dummy.Publisher) {
	pub := &dummy.Publisher{}
	return &Detector{
		MotionFeed:    "monitoring/motion",
		RecordingFeed: "monitoring/recording",
		Source:        &script{values: values},
		Publisher:     pub,
	}, pub
}

func TestPublishesRisingEdges(t *testing.T) {
	d, pub := newDetector(false, true, true, false, true)
	for i := 0; i < 5; i++ {
		d.Poll()
	}
	assert.Equal(t, []string{"1", "1"}, pub.Payloads("monitoring/motion"))
}

func TestSuppressedWhileRecording(t *testing.T) {
	d, pub := newDetector(true, false, true)
	d.Handle(pubsub.NewMessage("monitoring/recording", "1"))
	assert.True(t, d.IsRecording())
	assert.False(t, d.Poll())

	d.Handle(pubsub.NewMessage("monitoring/recording", "0"))
	assert.False(t, d.Poll())
	assert.True(t, d.Poll())
	assert.Len(t, pub.Messages, 1)
}

func TestRecordingPayloadOtherThanOne(t *testing.T) {
	d, _ := newDetector()
	d.Handle(pubsub.NewMessage("monitoring/recording", "on"))
	assert.False(t, d.IsRecording())
	d.Handle(pubsub.NewMessage("other/topic", "1"))
	assert.False(t, d.IsRecording())
}
