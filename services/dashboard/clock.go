package dashboard

import (
	"time"

	"github.com/homewatch/homewatch/pubsub"
)

const (
	DateFormat = "Monday 02 January 2006"
	TimeFormat = "15:04"
)

// Clock publishes the date when the day changes and the time when the
// minute changes.
type Clock struct {
	DateFeed string
	TimeFeed string

	day    int
	minute int
	ticked bool
}

func (self *Clock) Update(now time.Time) []*pubsub.Message {
	var msgs []*pubsub.Message
	if !self.ticked || now.Day() != self.day {
		msgs = append(msgs, pubsub.NewMessage(self.DateFeed, now.Format(DateFormat)))
		self.day = now.Day()
	}
	if !self.ticked || now.Minute() != self.minute {
		msgs = append(msgs, pubsub.NewMessage(self.TimeFeed, now.Format(TimeFormat)))
		self.minute = now.Minute()
	}
	self.ticked = true
	return msgs
}
