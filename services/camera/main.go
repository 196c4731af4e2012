// Service capturing a still and a clip from the driveway camera when motion
// is detected, then copying them to the file server and/or Dropbox.
//
// Subscribes to the motion, recording and storage feeds. Publishes the
// base64 encoded still on the camera feed and brackets each capture with
// recording 1 and 0.
package camera

import (
	"log"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/sensor"
	"github.com/homewatch/homewatch/services"
	"github.com/pkg/errors"
)

// Service camera
type Service struct {
	pipeline *Pipeline
	messages <-chan *pubsub.Message
	interval time.Duration
}

// ID of the service
func (self *Service) ID() string {
	return "camera"
}

func motionSource(conf config.MotionConf) (sensor.Source, *sensor.Latch, error) {
	switch conf.Source {
	case "topic", "":
		latch := sensor.NewLatch()
		return latch, latch, nil
	case "gpio":
		gpio, err := sensor.OpenGPIO(conf.Pin, sensor.PullOff)
		return gpio, nil, err
	}
	return nil, nil, errors.Errorf("unknown motion source %q", conf.Source)
}

func distributor(conf config.StorageConf) *Distributor {
	d := &Distributor{}
	if conf.FileServer.Host != "" {
		d.Local = NewFileServer(conf.FileServer)
	}
	if conf.Dropbox.AccessToken != "" || conf.Dropbox.RefreshToken != "" {
		d.Remote = NewDropbox(conf.Dropbox)
	}
	return d
}

// Build a pipeline from configuration.
func NewFromConfig(conf *config.Config, publisher pubsub.Publisher) (*Pipeline, error) {
	if conf.Feeds.Camera == "" || conf.Feeds.Recording == "" {
		return nil, errors.New("camera needs LOCAL_CAMERA_FEED and LOCAL_RECORDING_ON_FEED")
	}
	cam, err := NewCamera(conf.Camera)
	if err != nil {
		return nil, err
	}
	source, latch, err := motionSource(conf.Motion)
	if err != nil {
		return nil, err
	}
	if latch != nil && conf.Feeds.Motion == "" {
		return nil, errors.New("topic motion source needs LOCAL_MOTION_FEED")
	}
	pipeline, err := NewPipeline(StorageMode(conf.Storage.Mode))
	if err != nil {
		return nil, err
	}
	pipeline.Feeds = conf.Feeds
	pipeline.Dir = conf.Camera.Path
	pipeline.CaptureTime = conf.CaptureDuration()
	pipeline.Camera = cam
	pipeline.Distributor = distributor(conf.Storage)
	pipeline.Publisher = publisher
	pipeline.Source = source
	pipeline.Latch = latch
	return pipeline, nil
}

func (self *Service) Init() error {
	if services.Publisher == nil || services.Subscriber == nil {
		return errors.New("camera needs the local broker: set MQTT_LOCAL_SERVER")
	}
	pipeline, err := NewFromConfig(services.Config, services.Publisher)
	if err != nil {
		return err
	}
	self.pipeline = pipeline
	self.interval = services.Config.Motion.PollInterval.Duration

	feeds := services.Config.Feeds
	topics := []string{feeds.Recording, feeds.Storage}
	if pipeline.Latch != nil {
		topics = append(topics, feeds.Motion)
	}
	if stream, ok := pipeline.Camera.(Streamer); ok {
		if err := stream.StartStream(); err != nil {
			return err
		}
	}
	self.messages = services.Subscriber.Subscribe(pubsub.Exacts(topics...)...)
	log.Printf("Storage option is %s, motion source %s", pipeline.StorageMode(), services.Config.Motion.Source)
	return nil
}

// Run the service
func (self *Service) Run() error {
	defer self.pipeline.Source.Close()
	stream, streaming := self.pipeline.Camera.(Streamer)
	if streaming {
		defer stream.StopStream()
	}
	for {
		if err := services.EnsureConnected(); err != nil {
			return err
		}
		if streaming {
			if err := stream.StartStream(); err != nil {
				log.Println("Error restarting live stream:", err)
			}
		}
		pubsub.Drain(self.messages, self.pipeline.Handle)
		self.pipeline.Poll()
		self.status()
		time.Sleep(self.interval)
	}
}

func (self *Service) status() {
	services.SetStatus("camera", "recording", self.pipeline.IsRecording())
	services.SetStatus("camera", "storage", string(self.pipeline.StorageMode()))
	services.SetStatus("camera", "state", self.pipeline.State())
}
