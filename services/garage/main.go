// Service reporting the garage door reed switch to the dashboard broker.
package garage

import (
	"log"
	"time"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/sensor"
	"github.com/homewatch/homewatch/services"
	"github.com/pkg/errors"
)

const (
	OpenIcon   = "frown-o"
	ClosedIcon = "smile-o"
)

func message(open bool) (msg string, icon string) {
	if open {
		return "Garage door is open", OpenIcon
	}
	return "Garage door is closed", ClosedIcon
}

// Door publishes the door state at startup and on every change. The switch
// is pulled up so a high reading is an open door.
type Door struct {
	Feed      string
	IconFeed  string
	Switch    sensor.Source
	Publisher pubsub.Publisher

	known bool
	open  bool
}

func (self *Door) publish(open bool) error {
	msg, icon := message(open)
	if err := self.Publisher.Publish(pubsub.NewMessage(self.IconFeed, icon)); err != nil {
		return err
	}
	return self.Publisher.Publish(pubsub.NewMessage(self.Feed, msg))
}

// Check reads the switch and publishes if the state changed.
func (self *Door) Check() error {
	reading, err := self.Switch.Poll()
	if err != nil {
		return errors.Wrap(err, "reading door switch")
	}
	switch {
	case !self.known:
		log.Println("System has started, publishing door state")
	case self.open != reading.Value:
		log.Println("Garage door state has changed, publishing")
	default:
		log.Println("Nothing has changed, not publishing")
		return nil
	}
	if err := self.publish(reading.Value); err != nil {
		return err
	}
	self.known = true
	self.open = reading.Value
	return nil
}

func (self *Door) IsOpen() bool {
	return self.open
}

// Service garage
type Service struct {
	door     *Door
	interval time.Duration
}

// ID of the service
func (self *Service) ID() string {
	return "garage"
}

func (self *Service) Init() error {
	if services.RemotePublisher == nil {
		return errors.New("garage needs the remote broker: set MQTT_REMOTE_SERVER")
	}
	conf := services.Config
	if conf.Garage.Feed == "" || conf.Garage.IconFeed == "" {
		return errors.New("garage needs GARAGE_DOOR_REMOTE_FEED and GARAGE_DOOR_ICON_REMOTE_FEED")
	}
	sw, err := sensor.OpenGPIO(conf.Garage.Pin, sensor.PullUp)
	if err != nil {
		return err
	}
	self.door = &Door{
		Feed:      conf.RemoteFeed(conf.Garage.Feed),
		IconFeed:  conf.RemoteFeed(conf.Garage.IconFeed),
		Switch:    sw,
		Publisher: services.RemotePublisher,
	}
	self.interval = conf.Garage.Interval.Duration
	return nil
}

// Run the service
func (self *Service) Run() error {
	defer self.door.Switch.Close()
	log.Println("Garage door sensor coming online")
	for {
		if err := services.EnsureConnected(); err != nil {
			return err
		}
		if err := self.door.Check(); err != nil {
			log.Println("Error publishing garage door:", err)
		}
		services.SetStatus("garage", "open", self.door.IsOpen())
		time.Sleep(self.interval)
	}
}
