package sensor

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

// Pin is a digital input.
type Pin interface {
	Read() rpio.State
}

var (
	gpioMu   sync.Mutex
	gpioRefs int
)

func openGPIO() error {
	gpioMu.Lock()
	defer gpioMu.Unlock()
	if gpioRefs == 0 {
		if err := rpio.Open(); err != nil {
			return errors.Wrap(err, "opening /dev/gpiomem")
		}
	}
	gpioRefs++
	return nil
}

func closeGPIO() error {
	gpioMu.Lock()
	defer gpioMu.Unlock()
	gpioRefs--
	if gpioRefs == 0 {
		return rpio.Close()
	}
	return nil
}

type Pull int

const (
	PullOff Pull = iota
	PullUp
	PullDown
)

// GPIO is a Source reading a BCM numbered pin. High reads as true.
type GPIO struct {
	pin    Pin
	now    func() time.Time
	closer func() error
}

// OpenGPIO maps the gpio registers and configures the pin as an input.
func OpenGPIO(n int, pull Pull) (*GPIO, error) {
	if n < 0 || n > 27 {
		return nil, errors.Errorf("invalid gpio pin %d", n)
	}
	if err := openGPIO(); err != nil {
		return nil, err
	}
	pin := rpio.Pin(n)
	pin.Input()
	switch pull {
	case PullUp:
		pin.PullUp()
	case PullDown:
		pin.PullDown()
	default:
		pin.PullOff()
	}
	return &GPIO{pin: pin, now: time.Now, closer: closeGPIO}, nil
}

// NewGPIO wraps an already configured pin.
func NewGPIO(pin Pin) *GPIO {
	return &GPIO{pin: pin, now: time.Now}
}

func (self *GPIO) Poll() (Reading, error) {
	return Reading{Value: self.pin.Read() == rpio.High, At: self.now()}, nil
}

func (self *GPIO) Close() error {
	if self.closer == nil {
		return nil
	}
	closer := self.closer
	self.closer = nil
	return closer()
}
