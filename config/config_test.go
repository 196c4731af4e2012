package config

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(ExampleYaml))
	fmt.Println(config.Local.Host)
	fmt.Println(config.Feeds.Recording)
	fmt.Println(config.CaptureDuration())
	// Output:
	// broker.local
	// monitoring/recording
	// 5s
}

func ExampleConfig_RemoteFeed() {
	fmt.Println(ExampleConfig.RemoteFeed("garage-door"))
	fmt.Printf("%q\n", ExampleConfig.RemoteFeed(""))
	// Output:
	// someone/feeds/garage-door
	// ""
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	assert.Equal(t, "local", c.Storage.Mode)
	assert.Equal(t, 8883, c.Local.Port)
	assert.Equal(t, 250*time.Millisecond, c.Motion.PollInterval.Duration)
	assert.Equal(t, "/Driveway", c.Storage.Dropbox.Folder)
	assert.NoError(t, c.Validate())
}

func TestDurations(t *testing.T) {
	c := ExampleConfig
	assert.Equal(t, 250*time.Millisecond, c.Motion.PollInterval.Duration)
	assert.Equal(t, 20*time.Second, c.Garage.Interval.Duration)
}

func TestApplyEnv(t *testing.T) {
	c, err := OpenRaw([]byte(ExampleYaml))
	require.NoError(t, err)
	err = c.ApplyEnv(env(map[string]string{
		"TESTING":                 "true",
		"MQTT_LOCAL_SERVER":       "10.0.0.2",
		"MQTT_PORT":               "1883",
		"MQTT_TLS":                "false",
		"VIDEO_CAPTURE_TIME":      "7",
		"POLL_INTERVAL":           "100",
		"GARAGE_CHECK_INTERVAL":   "1m",
		"STORAGE_MODE":            "both",
		"LOCAL_FILE_STORAGE_PATH": "",
	}))
	require.NoError(t, err)
	assert.True(t, c.Testing)
	assert.Equal(t, "10.0.0.2", c.Local.Host)
	assert.Equal(t, 1883, c.Local.Port)
	assert.False(t, c.Local.TLS)
	assert.Equal(t, 7*time.Second, c.CaptureDuration())
	assert.Equal(t, 100*time.Millisecond, c.Motion.PollInterval.Duration)
	assert.Equal(t, time.Minute, c.Garage.Interval.Duration)
	assert.Equal(t, "both", c.Storage.Mode)
	// empty values don't override
	assert.Equal(t, "/home/picam/sec_cam", c.Camera.Path)
}

func TestApplyEnvInvalid(t *testing.T) {
	for key, value := range map[string]string{
		"VIDEO_CAPTURE_TIME": "five",
		"TESTING":            "maybe",
		"POLL_INTERVAL":      "soon",
	} {
		c := Defaults()
		err := c.ApplyEnv(env(map[string]string{key: value}))
		if assert.Error(t, err, key) {
			assert.Contains(t, err.Error(), key)
		}
	}
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.Camera.CaptureTime = 0
	assert.Error(t, c.Validate())
}

func TestBadYaml(t *testing.T) {
	_, err := OpenRaw([]byte("garage:\n  interval: whenever\n"))
	assert.Error(t, err)
}

func TestMasked(t *testing.T) {
	out := ExampleConfig.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "aio_key")
	assert.True(t, strings.Contains(out, masked))
	// the receiver is untouched
	assert.Equal(t, "hunter2", ExampleConfig.Storage.FileServer.Password)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/homewatch/homewatch.yml", ConfigPath("homewatch.yml"))
}

func TestOpen(t *testing.T) {
	t.Setenv("HOMEWATCH_CONFIG", "/nonexistent/homewatch.yml")
	t.Setenv("MQTT_LOCAL_SERVER", "broker.test")
	t.Setenv("VIDEO_CAPTURE_TIME", "3")
	c, err := Open()
	require.NoError(t, err)
	assert.Equal(t, "broker.test", c.Local.Host)
	assert.Equal(t, 3, c.Camera.CaptureTime)
}
