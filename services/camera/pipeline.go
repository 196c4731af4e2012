package camera

import (
	"encoding/base64"
	"log"
	"os"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/sensor"
	"github.com/homewatch/homewatch/services"
	"github.com/homewatch/homewatch/util"
	"github.com/pkg/errors"
)

// Pipeline holds the state of the capture loop. It is only touched from
// the service loop.
type Pipeline struct {
	Feeds       config.FeedsConf
	Dir         string
	CaptureTime time.Duration
	Camera      Camera
	Distributor *Distributor
	Publisher   pubsub.Publisher
	Source      sensor.Source
	// Latch receives motion topic pulses when the source is the topic.
	Latch *sensor.Latch
	Sleep func(time.Duration)
	Now   func() time.Time

	recording bool
	storage   StorageMode
	trigger   sensor.Trigger
	sequencer *Sequencer
	artifact  *Artifact
	err       error
	outcome   string
}

func NewPipeline(storage StorageMode) (*Pipeline, error) {
	self := &Pipeline{
		storage: storage,
		Sleep:   time.Sleep,
		Now:     time.Now,
	}
	sequencer, err := NewSequencer(map[string]Step{
		"start":      self.start,
		"snapshot":   self.snapshot,
		"record":     self.record,
		"distribute": self.distribute,
		"complete":   self.complete,
		"abort":      self.abort,
		"idle":       self.idle,
	})
	if err != nil {
		return nil, err
	}
	self.sequencer = sequencer
	return self, nil
}

func (self *Pipeline) IsRecording() bool {
	return self.recording
}

func (self *Pipeline) SetRecording(recording bool) {
	self.recording = recording
	services.SetRecording(recording)
}

func (self *Pipeline) StorageMode() StorageMode {
	return self.storage
}

func (self *Pipeline) SetStorageMode(mode StorageMode) {
	if !mode.Valid() {
		log.Printf("Storage mode %q not recognised, future clips will not be copied", mode)
	}
	self.storage = mode
}

// State of the capture sequence.
func (self *Pipeline) State() string {
	return self.sequencer.State()
}

// Handle applies an inbound control message.
func (self *Pipeline) Handle(msg *pubsub.Message) {
	log.Printf("Message payload is %s for topic %s", msg.Summary(), msg.Topic)
	switch msg.Topic {
	case self.Feeds.Recording:
		self.SetRecording(msg.Flag())
	case self.Feeds.Storage:
		self.SetStorageMode(StorageMode(msg.String()))
		log.Println("Storage option is", self.storage)
	case self.Feeds.Motion:
		if msg.Contains("1") && self.Latch != nil {
			self.Latch.Pulse()
		}
	}
}

// Poll reads the source once and runs a capture cycle on a new trigger.
func (self *Pipeline) Poll() {
	reading, err := self.Source.Poll()
	if err != nil {
		log.Println("Error reading motion source:", err)
		return
	}
	fire := self.trigger.Observe(reading, self.recording)
	if _, ok := self.Source.(*sensor.Latch); ok {
		// a latched pulse reads false on the next poll, so it never holds
		// a level over to the next one
		self.trigger.Reset(sensor.Reading{At: reading.At})
	}
	if fire {
		services.TriggersTotal.Inc()
		self.Cycle()
	}
}

// Cycle runs one capture synchronously and returns its outcome.
func (self *Pipeline) Cycle() string {
	self.artifact = NewArtifact(self.Dir, util.Stamp(self.Now()))
	self.err = nil
	self.outcome = ""
	log.Println("Motion detected, starting capture", self.artifact.Stamp)
	self.sequencer.Fire("motion")
	services.CyclesTotal.WithLabelValues(self.outcome).Inc()
	return self.outcome
}

func (self *Pipeline) fail(err error) string {
	self.err = err
	return "failed"
}

func (self *Pipeline) start() string {
	self.SetRecording(true)
	if err := self.Publisher.Publish(pubsub.NewMessage(self.Feeds.Recording, true)); err != nil {
		return self.fail(errors.Wrap(err, "publishing recording start"))
	}
	return "started"
}

func (self *Pipeline) snapshot() string {
	if err := self.Camera.Snapshot(self.artifact.ImagePath); err != nil {
		return self.fail(errors.Wrap(err, "snapshot"))
	}
	data, err := os.ReadFile(self.artifact.ImagePath)
	if err != nil {
		return self.fail(errors.Wrap(err, "reading snapshot"))
	}
	self.artifact.Image = data
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := self.Publisher.Publish(pubsub.NewMessage(self.Feeds.Camera, encoded)); err != nil {
		return self.fail(errors.Wrap(err, "publishing snapshot"))
	}
	return "snapped"
}

func (self *Pipeline) record() string {
	if err := self.Camera.StartRecording(self.artifact.ClipPath); err != nil {
		return self.fail(errors.Wrap(err, "starting clip"))
	}
	log.Printf("Recording %s clip", self.CaptureTime)
	self.Sleep(self.CaptureTime)
	if err := self.Camera.StopRecording(); err != nil {
		return self.fail(errors.Wrap(err, "stopping clip"))
	}
	return "recorded"
}

func (self *Pipeline) distribute() string {
	if self.Distributor != nil {
		self.Distributor.Distribute(self.storage, self.artifact)
	}
	return "distributed"
}

func (self *Pipeline) complete() string {
	err := self.Publisher.Publish(pubsub.NewMessage(self.Feeds.Recording, false))
	if err != nil {
		log.Println("Error publishing recording end:", err)
		self.outcome = "incomplete"
		return ""
	}
	log.Println("All motion detected tasks complete")
	self.outcome = "complete"
	return ""
}

func (self *Pipeline) abort() string {
	log.Println("Capture aborted:", self.err)
	self.outcome = "aborted"
	return ""
}

func (self *Pipeline) idle() string {
	self.SetRecording(false)
	return ""
}
