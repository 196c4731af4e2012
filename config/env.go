package config

import (
	"strconv"
	"time"
)

type binding struct {
	key string
	set func(string) error
}

func str(key string, p *string) binding {
	return binding{key, func(v string) error {
		*p = v
		return nil
	}}
}

func integer(key string, p *int) binding {
	return binding{key, func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}}
}

func boolean(key string, p *bool) binding {
	return binding{key, func(v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}}
}

// duration parses a plain number in unit, or a duration string.
func duration(key string, p *Duration, unit time.Duration) binding {
	return binding{key, func(v string) error {
		d, err := parseDuration(v, unit)
		if err != nil {
			return err
		}
		p.Duration = d
		return nil
	}}
}

func (self *Config) bindings() []binding {
	return []binding{
		boolean("TESTING", &self.Testing),
		str("LOG_FILE", &self.LogFile),
		str("HOMEWATCH_HTTP", &self.Http),
		str("HEARTBEAT_FEED", &self.Heartbeat),

		str("MQTT_LOCAL_SERVER", &self.Local.Host),
		integer("MQTT_PORT", &self.Local.Port),
		boolean("MQTT_TLS", &self.Local.TLS),
		str("MQTT_USERNAME", &self.Local.Username),
		str("MQTT_PASSWORD", &self.Local.Password),
		str("MQTT_CA_CERT", &self.Local.CACert),
		str("MQTT_CLIENT_PEM", &self.Local.ClientCert),
		str("MQTT_CLIENT_KEY", &self.Local.ClientKey),

		str("MQTT_REMOTE_SERVER", &self.Remote.Host),
		integer("MQTT_REMOTE_PORT", &self.Remote.Port),
		boolean("MQTT_REMOTE_TLS", &self.Remote.TLS),
		str("MQTT_REMOTE_USERNAME", &self.Remote.Username),
		str("MQTT_REMOTE_KEY", &self.Remote.Password),

		str("LOCAL_CAMERA_FEED", &self.Feeds.Camera),
		str("LOCAL_RECORDING_ON_FEED", &self.Feeds.Recording),
		str("LOCAL_MOTION_FEED", &self.Feeds.Motion),
		str("LOCAL_STORAGE_FEED", &self.Feeds.Storage),

		integer("VIDEO_CAPTURE_TIME", &self.Camera.CaptureTime),
		str("CAMERA_PROTOCOL", &self.Camera.Protocol),
		str("CAMERA_URL", &self.Camera.Url),
		boolean("CAMERA_VFLIP", &self.Camera.VFlip),
		str("LOCAL_FILE_STORAGE_PATH", &self.Camera.Path),

		str("MOTION_SOURCE", &self.Motion.Source),
		integer("MOTION_PIN", &self.Motion.Pin),
		duration("POLL_INTERVAL", &self.Motion.PollInterval, time.Millisecond),

		str("STORAGE_MODE", &self.Storage.Mode),
		str("FILE_SERVER_IP", &self.Storage.FileServer.Host),
		str("FILE_SERVER_USERNAME", &self.Storage.FileServer.Username),
		str("FILE_SERVER_PASSWORD", &self.Storage.FileServer.Password),
		str("FILE_SERVER_KNOWN_HOSTS", &self.Storage.FileServer.KnownHosts),
		str("VIDEO_STORAGE_PATH", &self.Storage.FileServer.Path),
		str("DROPBOX_ACCESS_TOKEN", &self.Storage.Dropbox.AccessToken),
		str("DROPBOX_REFRESH_TOKEN", &self.Storage.Dropbox.RefreshToken),
		str("DROPBOX_APP_KEY", &self.Storage.Dropbox.AppKey),
		str("DROPBOX_APP_SECRET", &self.Storage.Dropbox.AppSecret),
		str("DROPBOX_FOLDER", &self.Storage.Dropbox.Folder),

		integer("GARAGE_DOOR_PIN", &self.Garage.Pin),
		duration("GARAGE_CHECK_INTERVAL", &self.Garage.Interval, time.Second),
		str("GARAGE_DOOR_REMOTE_FEED", &self.Garage.Feed),
		str("GARAGE_DOOR_ICON_REMOTE_FEED", &self.Garage.IconFeed),

		str("DATE_REMOTE_FEED", &self.Dashboard.DateFeed),
		str("TIME_REMOTE_FEED", &self.Dashboard.TimeFeed),
		str("LATITUDE", &self.Dashboard.Weather.Latitude),
		str("LONGITUDE", &self.Dashboard.Weather.Longitude),
		str("OPENWEATHER_API_KEY", &self.Dashboard.Weather.ApiKey),
		str("OPENWEATHER_URL", &self.Dashboard.Weather.Url),
		str("WEATHER_REMOTE_FEED", &self.Dashboard.Weather.Feed),
		str("WEATHER_ICON_REMOTE_FEED", &self.Dashboard.Weather.IconFeed),
		str("CALENDAR_ID", &self.Dashboard.Calendar.Id),
		str("GOOGLE_CREDENTIALS", &self.Dashboard.Calendar.Credentials),
		str("GOOGLE_TOKEN", &self.Dashboard.Calendar.Token),
		str("CALENDAR_REMOTE_FEED", &self.Dashboard.Calendar.Feed),
	}
}
