package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	Spacer = "▪"
	Degree = "°"

	Rising  = "⮬"
	Falling = "⮭"
	// first reading has no trend
	Steady = "\u00a0"

	// mmHg per hPa
	mmHgPerHPa = 0.750061683
)

var arrows = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// WindArrow points the way the wind is blowing from, in 45 degree bands.
func WindArrow(deg float64) string {
	d := int(deg)
	if d < 0 || d >= 360 {
		return arrows[len(arrows)-1]
	}
	return arrows[d/45]
}

var aqiLabels = map[int]string{
	1: "good",
	2: "fair",
	3: "moderate",
	4: "poor",
	5: "very poor",
}

func AirQuality(aqi int) string {
	if label, ok := aqiLabels[aqi]; ok {
		return label
	}
	return "unable to retrieve air quality"
}

// SO2Quality bands the sulphur dioxide concentration in µg/m³.
func SO2Quality(so2 float64) string {
	switch {
	case so2 < 0:
		return "unable to retrieve so2 quality"
	case so2 < 20:
		return "good"
	case so2 < 80:
		return "fair"
	case so2 < 250:
		return "moderate"
	case so2 < 350:
		return "poor"
	}
	return "very poor"
}

// Icon picks an Adafruit IO dashboard icon for the condition.
func Icon(condition string, daylight bool) string {
	condition = strings.ToLower(condition)
	cloud := strings.Contains(condition, "cloud")
	rain := strings.Contains(condition, "rain")
	if daylight {
		switch {
		case cloud:
			return "w:day-cloudy"
		case rain:
			return "w:day-rain"
		case strings.Contains(condition, "sun"):
			return "w:day-sunny"
		}
		return "sun-o"
	}
	switch {
	case cloud:
		return "w:night-cloudy"
	case rain:
		return "w:night-rain"
	}
	return "moon-o"
}

// PressureTrend compares each reading with the last one. An unchanged
// reading keeps the previous indicator.
type PressureTrend struct {
	last      float64
	indicator string
	seen      bool
}

func (self *PressureTrend) Update(hPa float64) (indicator string, mmHg float64) {
	switch {
	case !self.seen:
		self.indicator = Steady
	case hPa > self.last:
		self.indicator = Rising
	case hPa < self.last:
		self.indicator = Falling
	}
	self.last = hPa
	self.seen = true
	return self.indicator, round2(hPa * mmHgPerHPa)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clockTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("15:04:05")
}

// Report formats current conditions and air quality for the dashboard.
func Report(w *Weather, air *AirPollution, trend *PressureTrend, loc *time.Location) (report string, icon string) {
	condition := ""
	if len(w.Weather) > 0 {
		condition = w.Weather[0].Description
	}
	aqi, so2 := 0, -1.0
	if len(air.List) > 0 {
		aqi = air.List[0].Main.Aqi
		so2 = air.List[0].Components.SO2
	}
	indicator, pressure := trend.Update(w.Main.Pressure)

	lines := []string{
		condition,
		fmt.Sprintf("%d%sC feels like %d%sC", int(w.Main.Temp), Degree, int(w.Main.FeelsLike), Degree),
		fmt.Sprintf("wind speed %s m/sec %s", number(w.Wind.Speed), WindArrow(w.Wind.Deg)),
	}
	if w.Wind.Gust != nil {
		lines = append(lines, fmt.Sprintf("wind gust %s m/sec", number(*w.Wind.Gust)))
	}
	lines = append(lines,
		fmt.Sprintf("humidity %d%%", int(w.Main.Humidity)),
		"sunrise "+clockTime(w.Sys.Sunrise, loc),
		"sunset "+clockTime(w.Sys.Sunset, loc),
		"air quality "+AirQuality(aqi),
		fmt.Sprintf("vog (so2) %s %s %s", number(so2), Spacer, SO2Quality(so2)),
		fmt.Sprintf("pressure %s mmHg %s", number(pressure), indicator),
	)
	daylight := w.Dt >= w.Sys.Sunrise && w.Dt < w.Sys.Sunset
	return strings.Join(lines, "\n"), Icon(condition, daylight)
}
