package dashboard

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/util"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const NoEvents = "No upcoming events found."

type Event struct {
	Start   time.Time
	AllDay  bool
	Summary string
}

func (e Event) String() string {
	if e.AllDay {
		return e.Start.Format("02 January 2006") + " " + Spacer + " " + e.Summary
	}
	return e.Start.Format("02 January 2006 at 15:04") + " " + Spacer + " " + e.Summary
}

// Agenda formats upcoming events one per line.
func Agenda(events []Event) string {
	if len(events) == 0 {
		return NoEvents
	}
	var lines []string
	for _, e := range events {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

type Calendar interface {
	Upcoming(ctx context.Context, now time.Time, n int64) ([]Event, error)
}

// GoogleCalendar reads a shared calendar with an installed-app token.
type GoogleCalendar struct {
	Id      string
	service *calendar.Service
}

// OAuthConfig reads the client secrets downloaded from the Google console.
func OAuthConfig(credentials string) (*oauth2.Config, error) {
	data, err := os.ReadFile(util.ExpandUser(credentials))
	if err != nil {
		return nil, errors.Wrap(err, "reading google credentials")
	}
	return google.ConfigFromJSON(data, calendar.CalendarReadonlyScope)
}

func ReadToken(filename string) (*oauth2.Token, error) {
	file, err := os.Open(util.ExpandUser(filename))
	if err != nil {
		return nil, errors.Wrap(err, "reading google token")
	}
	defer file.Close()
	var token oauth2.Token
	err = json.NewDecoder(file).Decode(&token)
	return &token, errors.Wrap(err, "decoding google token")
}

func WriteToken(filename string, token *oauth2.Token) error {
	file, err := os.OpenFile(util.ExpandUser(filename), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrap(err, "writing google token")
	}
	defer file.Close()
	return json.NewEncoder(file).Encode(token)
}

// savingSource writes refreshed tokens back to the token file.
type savingSource struct {
	mu       sync.Mutex
	src      oauth2.TokenSource
	filename string
	last     string
}

func (self *savingSource) Token() (*oauth2.Token, error) {
	token, err := self.src.Token()
	if err != nil {
		return nil, err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	if token.AccessToken != self.last {
		self.last = token.AccessToken
		if err := WriteToken(self.filename, token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

func NewGoogleCalendar(ctx context.Context, conf config.CalendarConf) (*GoogleCalendar, error) {
	oauth, err := OAuthConfig(conf.Credentials)
	if err != nil {
		return nil, err
	}
	token, err := ReadToken(conf.Token)
	if err != nil {
		return nil, errors.Wrap(err, "run homewatch calendar-auth first")
	}
	src := &savingSource{
		src:      oauth.TokenSource(ctx, token),
		filename: conf.Token,
		last:     token.AccessToken,
	}
	client := oauth2.NewClient(ctx, src)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, errors.Wrap(err, "calendar client")
	}
	return &GoogleCalendar{Id: conf.Id, service: service}, nil
}

func toEvent(item *calendar.Event) (Event, error) {
	e := Event{Summary: item.Summary}
	if item.Start == nil {
		return e, errors.Errorf("event %s has no start", item.Id)
	}
	var err error
	if item.Start.DateTime != "" {
		e.Start, err = time.Parse(time.RFC3339, item.Start.DateTime)
	} else {
		e.AllDay = true
		e.Start, err = time.Parse("2006-01-02", item.Start.Date)
	}
	return e, err
}

func (self *GoogleCalendar) Upcoming(ctx context.Context, now time.Time, n int64) ([]Event, error) {
	resp, err := self.service.Events.List(self.Id).
		TimeMin(now.UTC().Format(time.RFC3339)).
		MaxResults(n).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "listing events")
	}
	var events []Event
	for _, item := range resp.Items {
		e, err := toEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
