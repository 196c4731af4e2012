// Service feeding the home dashboard: date, time, weather, air quality and
// the shared family calendar, published to Adafruit IO style feeds.
package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/services"
	"github.com/homewatch/homewatch/util"
	"github.com/pkg/errors"
)

const (
	Tick            = 500 * time.Millisecond
	WeatherInterval = 10 * time.Minute
	CalendarRefresh = 6 * time.Hour
	CalendarEvents  = 2
)

type WeatherSource interface {
	Current() (*Weather, error)
	AirPollution() (*AirPollution, error)
}

type Dashboard struct {
	Clock         Clock
	Weather       WeatherSource
	WeatherFeed   string
	IconFeed      string
	Calendar      Calendar
	CalendarFeed  string
	Publisher     pubsub.Publisher
	Location      *time.Location
	weatherEvery  util.Every
	calendarEvery util.Every
	trend         PressureTrend
}

func NewDashboard() *Dashboard {
	return &Dashboard{
		Location:      time.Local,
		weatherEvery:  util.Every{Interval: WeatherInterval},
		calendarEvery: util.Every{Interval: CalendarRefresh},
	}
}

func (self *Dashboard) publish(msgs ...*pubsub.Message) {
	for _, msg := range msgs {
		if msg.Topic == "" {
			continue
		}
		if err := self.Publisher.Publish(msg); err != nil {
			log.Println("Error publishing to dashboard:", err)
		}
	}
}

func (self *Dashboard) updateWeather() error {
	w, err := self.Weather.Current()
	if err != nil {
		return err
	}
	air, err := self.Weather.AirPollution()
	if err != nil {
		return err
	}
	report, icon := Report(w, air, &self.trend, self.Location)
	log.Println("Updating weather report on dashboard")
	self.publish(
		pubsub.NewMessage(self.IconFeed, icon),
		pubsub.NewMessage(self.WeatherFeed, report))
	return nil
}

func (self *Dashboard) updateCalendar(now time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	events, err := self.Calendar.Upcoming(ctx, now, CalendarEvents)
	if err != nil {
		return err
	}
	log.Println("Publishing calendar events")
	self.publish(pubsub.NewMessage(self.CalendarFeed, Agenda(events)))
	return nil
}

// Update publishes whatever is due at now.
func (self *Dashboard) Update(now time.Time) {
	self.publish(self.Clock.Update(now)...)
	if self.Weather != nil && self.weatherEvery.Due(now) {
		err := self.updateWeather()
		if err != nil {
			services.ApiErrorsTotal.WithLabelValues("weather").Inc()
			log.Println("Error fetching weather:", err)
		}
	}
	if self.Calendar != nil && self.calendarEvery.Due(now) {
		err := self.updateCalendar(now)
		if err != nil {
			services.ApiErrorsTotal.WithLabelValues("calendar").Inc()
			log.Println("Error fetching calendar:", err)
		}
	}
}

// Service dashboard
type Service struct {
	dashboard *Dashboard
}

// ID of the service
func (self *Service) ID() string {
	return "dashboard"
}

func (self *Service) Init() error {
	if services.RemotePublisher == nil {
		return errors.New("dashboard needs the remote broker: set MQTT_REMOTE_SERVER")
	}
	conf := services.Config
	dash := conf.Dashboard
	d := NewDashboard()
	d.Publisher = services.RemotePublisher
	d.Clock = Clock{DateFeed: conf.RemoteFeed(dash.DateFeed), TimeFeed: conf.RemoteFeed(dash.TimeFeed)}
	if dash.Weather.ApiKey != "" {
		d.Weather = NewOpenWeather(dash.Weather)
		d.WeatherFeed = conf.RemoteFeed(dash.Weather.Feed)
		d.IconFeed = conf.RemoteFeed(dash.Weather.IconFeed)
	} else {
		log.Println("OPENWEATHER_API_KEY not set, no weather reports")
	}
	if dash.Calendar.Id != "" {
		cal, err := NewGoogleCalendar(context.Background(), dash.Calendar)
		if err != nil {
			return err
		}
		d.Calendar = cal
		d.CalendarFeed = conf.RemoteFeed(dash.Calendar.Feed)
	} else {
		log.Println("CALENDAR_ID not set, no calendar events")
	}
	self.dashboard = d
	return nil
}

// Run the service
func (self *Service) Run() error {
	log.Println("Home hub is starting up")
	for {
		if err := services.EnsureConnected(); err != nil {
			return err
		}
		self.dashboard.Update(time.Now())
		time.Sleep(Tick)
	}
}
