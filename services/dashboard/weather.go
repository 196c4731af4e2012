package dashboard

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/pkg/errors"
)

type Weather struct {
	Weather []struct {
		Main        string
		Description string
	}
	Main struct {
		Temp      float64
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64
		Pressure  float64
	}
	Wind struct {
		Speed float64
		Deg   float64
		Gust  *float64
	}
	Sys struct {
		Sunrise int64
		Sunset  int64
	}
	Dt int64
}

type AirPollution struct {
	List []struct {
		Main struct {
			Aqi int
		}
		Components struct {
			SO2 float64 `json:"so2"`
		}
	}
}

// OpenWeather queries the OpenWeatherMap current weather and air pollution
// APIs.
type OpenWeather struct {
	Url       string
	ApiKey    string
	Latitude  string
	Longitude string
	Client    *http.Client
}

func NewOpenWeather(conf config.WeatherConf) *OpenWeather {
	return &OpenWeather{
		Url:       conf.Url,
		ApiKey:    conf.ApiKey,
		Latitude:  conf.Latitude,
		Longitude: conf.Longitude,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (self *OpenWeather) RequestUri(endpoint string, metric bool) string {
	vs := url.Values{
		"lat":   []string{self.Latitude},
		"lon":   []string{self.Longitude},
		"appid": []string{self.ApiKey},
	}
	if metric {
		vs.Set("units", "metric")
	}
	return self.Url + "/" + endpoint + "?" + vs.Encode()
}

func (self *OpenWeather) get(uri string, v interface{}) error {
	resp, err := self.Client.Get(uri)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("openweathermap: %s", resp.Status)
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(v), "openweathermap")
}

func (self *OpenWeather) Current() (*Weather, error) {
	var w Weather
	if err := self.get(self.RequestUri("weather", true), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (self *OpenWeather) AirPollution() (*AirPollution, error) {
	var air AirPollution
	if err := self.get(self.RequestUri("air_pollution", false), &air); err != nil {
		return nil, err
	}
	return &air, nil
}
