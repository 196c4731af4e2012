package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/pubsub/dummy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullService struct{ id string }

func (s *nullService) ID() string  { return s.id }
func (s *nullService) Run() error { return nil }

func TestRegistered(t *testing.T) {
	Register(&nullService{"zz-test"})
	Register(&nullService{"aa-test"})
	names := Registered()
	assert.Contains(t, names, "zz-test")
	assert.Contains(t, names, "aa-test")
	assert.True(t, strings.Compare(names[0], names[len(names)-1]) < 0)
}

func TestSetupLogging(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "homewatch.log")
	require.NoError(t, SetupLogging(filename))
	defer log.SetOutput(os.Stderr)
	log.Println("hello")

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Error(t, SetupLogging(filepath.Join(t.TempDir(), "missing", "x.log")))
}

func TestSetupBrokerNoHosts(t *testing.T) {
	Config = config.Defaults()
	assert.Error(t, SetupBroker("test"))
}

func TestHeartbeatMessage(t *testing.T) {
	Config = &config.Config{Heartbeat: "homewatch/heartbeat"}
	started := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	msg := heartbeatMessage("camera", started, started.Add(90*time.Second))

	assert.Equal(t, "homewatch/heartbeat/camera", msg.Topic)
	assert.True(t, msg.Retained)
	var hb heartbeat
	require.NoError(t, json.Unmarshal(msg.Payload, &hb))
	assert.Equal(t, 90, hb.Uptime)
	assert.Equal(t, "2024-03-07T09:00:00Z", hb.Started)
	assert.Equal(t, os.Getpid(), hb.Pid)
}

func TestMetered(t *testing.T) {
	ok := testutil.ToFloat64(PublishedTotal.WithLabelValues("ok"))
	failed := testutil.ToFloat64(PublishedTotal.WithLabelValues("error"))

	pub := Metered(&dummy.Publisher{Fail: map[string]error{"bad": errors.New("down")}})
	assert.NoError(t, pub.Publish(pubsub.NewMessage("good", 1)))
	assert.Error(t, pub.Publish(pubsub.NewMessage("bad", 1)))

	assert.Equal(t, ok+1, testutil.ToFloat64(PublishedTotal.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(PublishedTotal.WithLabelValues("error")))
}

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(DistributionsTotal.WithLabelValues("dropbox", "error"))
	Observe(DistributionsTotal, errors.New("auth"), "dropbox")
	assert.Equal(t, before+1, testutil.ToFloat64(DistributionsTotal.WithLabelValues("dropbox", "error")))
}

func TestSetRecording(t *testing.T) {
	SetRecording(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(RecordingGauge))
	SetRecording(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(RecordingGauge))
}

func TestStatusEndpoint(t *testing.T) {
	SetStatus("camera", "storage", "both")
	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Services map[string]map[string]interface{}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "both", body.Services["camera"]["storage"])
}

func TestStatusIsCopy(t *testing.T) {
	SetStatus("garage", "open", true)
	snapshot := Status()
	snapshot["garage"]["open"] = false
	assert.Equal(t, true, Status()["garage"]["open"])
}

func TestMetricsEndpoint(t *testing.T) {
	TriggersTotal.Inc()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "homewatch_motion_triggers_total")
}
