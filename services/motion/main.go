// Service polling a PIR sensor and publishing motion to the camera, unless
// a recording is already in progress.
package motion

import (
	"log"
	"time"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/sensor"
	"github.com/homewatch/homewatch/services"
	"github.com/pkg/errors"
)

type Detector struct {
	MotionFeed    string
	RecordingFeed string
	Source        sensor.Source
	Publisher     pubsub.Publisher

	recording bool
	trigger   sensor.Trigger
}

func (self *Detector) IsRecording() bool {
	return self.recording
}

// Handle a recording feed message: "1" is recording, anything else idle.
func (self *Detector) Handle(msg *pubsub.Message) {
	if msg.Topic == self.RecordingFeed {
		self.recording = msg.Flag()
	}
}

// Poll the sensor once, publishing on a new detection.
func (self *Detector) Poll() bool {
	reading, err := self.Source.Poll()
	if err != nil {
		log.Println("Error reading pir:", err)
		return false
	}
	if !self.trigger.Observe(reading, self.recording) {
		return false
	}
	log.Println("Motion detected")
	services.TriggersTotal.Inc()
	if err := self.Publisher.Publish(pubsub.NewMessage(self.MotionFeed, 1)); err != nil {
		log.Println("Error publishing motion:", err)
	}
	return true
}

// Service motion
type Service struct {
	detector *Detector
	messages <-chan *pubsub.Message
	interval time.Duration
}

// ID of the service
func (self *Service) ID() string {
	return "motion"
}

func (self *Service) Init() error {
	if services.Publisher == nil || services.Subscriber == nil {
		return errors.New("motion needs the local broker: set MQTT_LOCAL_SERVER")
	}
	conf := services.Config
	if conf.Feeds.Motion == "" {
		return errors.New("motion needs LOCAL_MOTION_FEED")
	}
	pir, err := sensor.OpenGPIO(conf.Motion.Pin, sensor.PullOff)
	if err != nil {
		return err
	}
	self.detector = &Detector{
		MotionFeed:    conf.Feeds.Motion,
		RecordingFeed: conf.Feeds.Recording,
		Source:        pir,
		Publisher:     services.Publisher,
	}
	self.interval = conf.Motion.PollInterval.Duration
	self.messages = services.Subscriber.Subscribe(pubsub.Exacts(conf.Feeds.Recording)...)
	log.Println("Motion detector online")
	return nil
}

// Run the service
func (self *Service) Run() error {
	defer self.detector.Source.Close()
	for {
		if err := services.EnsureConnected(); err != nil {
			return err
		}
		pubsub.Drain(self.messages, self.detector.Handle)
		self.detector.Poll()
		services.SetStatus("motion", "recording", self.detector.IsRecording())
		time.Sleep(self.interval)
	}
}
