package config

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Duration struct {
	Duration time.Duration
}

// UnmarshalYAML accepts either a duration string ("20s") or a number of
// seconds.
func (self *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	d, err := parseDuration(s, time.Second)
	if err != nil {
		return err
	}
	self.Duration = d
	return nil
}

func (self Duration) MarshalYAML() (interface{}, error) {
	return self.Duration.String(), nil
}

type BrokerConf struct {
	Host       string
	Port       int
	TLS        bool
	Username   string
	Password   string
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

type FeedsConf struct {
	Camera    string
	Recording string
	Motion    string
	Storage   string
}

type CameraConf struct {
	Protocol string
	Url      string
	VFlip    bool `yaml:"vflip"`
	// Clip length in seconds
	CaptureTime int `yaml:"capture_time"`
	// Directory for the still and clip files, overwritten each cycle
	Path string
}

type MotionConf struct {
	Source       string
	Pin          int
	PollInterval Duration `yaml:"poll_interval"`
}

type FileServerConf struct {
	Host       string
	Username   string
	Password   string
	KnownHosts string `yaml:"known_hosts"`
	Path       string
}

type DropboxConf struct {
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
	AppKey       string `yaml:"app_key"`
	AppSecret    string `yaml:"app_secret"`
	Folder       string
}

type StorageConf struct {
	Mode       string
	FileServer FileServerConf `yaml:"file_server"`
	Dropbox    DropboxConf
}

type GarageConf struct {
	Pin      int
	Interval Duration
	Feed     string
	IconFeed string `yaml:"icon_feed"`
}

type WeatherConf struct {
	Latitude  string
	Longitude string
	ApiKey    string `yaml:"api_key"`
	Url       string
	Feed      string
	IconFeed  string `yaml:"icon_feed"`
}

type CalendarConf struct {
	Id          string
	Credentials string
	Token       string
	Feed        string
}

type DashboardConf struct {
	DateFeed string `yaml:"date_feed"`
	TimeFeed string `yaml:"time_feed"`
	Weather  WeatherConf
	Calendar CalendarConf
}

// Configuration structure
type Config struct {
	Testing   bool
	LogFile   string `yaml:"log_file"`
	Http      string
	Heartbeat string
	Local     BrokerConf
	Remote    BrokerConf
	Feeds     FeedsConf
	Camera    CameraConf
	Motion    MotionConf
	Storage   StorageConf
	Garage    GarageConf
	Dashboard DashboardConf
}

func Defaults() *Config {
	return &Config{
		Local:  BrokerConf{Port: 8883, TLS: true},
		Remote: BrokerConf{Port: 8883, TLS: true},
		Camera: CameraConf{Protocol: "libcamera", CaptureTime: 10, Path: "."},
		Motion: MotionConf{
			Source:       "topic",
			Pin:          1,
			PollInterval: Duration{250 * time.Millisecond},
		},
		Storage: StorageConf{
			Mode:    "local",
			Dropbox: DropboxConf{Folder: "/Driveway"},
		},
		Garage: GarageConf{Pin: 3, Interval: Duration{20 * time.Second}},
		Dashboard: DashboardConf{
			Weather: WeatherConf{Url: "https://api.openweathermap.org/data/2.5"},
			Calendar: CalendarConf{
				Credentials: "credentials.json",
				Token:       "token.json",
			},
		},
	}
}

// Open configuration: .env, then the yaml file if present, then the
// environment.
func Open() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	filename := os.Getenv("HOMEWATCH_CONFIG")
	if filename == "" {
		filename = ConfigPath("homewatch.yml")
	}
	self := Defaults()
	file, err := os.Open(filename)
	switch {
	case err == nil:
		defer file.Close()
		self, err = OpenReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", filename)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := self.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return self, self.Validate()
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := Defaults()
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return nil, err
	}
	return self, nil
}

type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables.
func (self *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range self.bindings() {
		value, ok := lookup(b.key)
		if !ok || value == "" {
			continue
		}
		if err := b.set(value); err != nil {
			return errors.Wrapf(err, "invalid %s", b.key)
		}
	}
	return nil
}

func (self *Config) Validate() error {
	if self.Camera.CaptureTime <= 0 {
		return errors.Errorf("capture time must be positive, got %d", self.Camera.CaptureTime)
	}
	if self.Motion.PollInterval.Duration <= 0 {
		return errors.New("poll interval must be positive")
	}
	if self.Garage.Interval.Duration <= 0 {
		return errors.New("garage check interval must be positive")
	}
	return nil
}

// RemoteFeed names a feed on the remote (Adafruit IO style) broker.
func (self *Config) RemoteFeed(feed string) string {
	if feed == "" {
		return ""
	}
	return self.Remote.Username + "/feeds/" + feed
}

// CaptureDuration is the fixed clip length.
func (self *Config) CaptureDuration() time.Duration {
	return time.Duration(self.Camera.CaptureTime) * time.Second
}

const masked = "********"

func mask(s *string) {
	if *s != "" {
		*s = masked
	}
}

// Masked returns a copy with credentials blanked, for printing.
func (self *Config) Masked() *Config {
	c := *self
	mask(&c.Local.Password)
	mask(&c.Remote.Password)
	mask(&c.Storage.FileServer.Password)
	mask(&c.Storage.Dropbox.AccessToken)
	mask(&c.Storage.Dropbox.RefreshToken)
	mask(&c.Storage.Dropbox.AppSecret)
	mask(&c.Dashboard.Weather.ApiKey)
	return &c
}

func (self *Config) String() string {
	out, _ := yaml.Marshal(self.Masked())
	return string(out)
}

// helpers

func parseDuration(s string, unit time.Duration) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * unit, nil
	}
	return time.ParseDuration(s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, errors.Errorf("not a boolean: %q", s)
}

// Resolve a configuration file under .config/homewatch
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "homewatch", p)
}
