package services

import (
	"github.com/homewatch/homewatch/pubsub"
	"github.com/prometheus/client_golang/prometheus"
)

var Registry = prometheus.NewRegistry()

var (
	PublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homewatch_published_total",
		Help: "Messages published, by result.",
	}, []string{"result"})
	CyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homewatch_capture_cycles_total",
		Help: "Capture cycles run, by outcome.",
	}, []string{"outcome"})
	DistributionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homewatch_distributions_total",
		Help: "Artifact copies, by target and result.",
	}, []string{"target", "result"})
	TriggersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homewatch_motion_triggers_total",
		Help: "Rising motion edges acted on.",
	})
	RecordingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homewatch_recording",
		Help: "1 while a capture cycle is in progress.",
	})
	ApiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homewatch_api_errors_total",
		Help: "External API failures, by api.",
	}, []string{"api"})
)

func init() {
	Registry.MustRegister(PublishedTotal, CyclesTotal, DistributionsTotal,
		TriggersTotal, RecordingGauge, ApiErrorsTotal)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Observe counts one outcome of an operation against a labelled counter.
func Observe(counter *prometheus.CounterVec, err error, labels ...string) {
	counter.WithLabelValues(append(labels, result(err))...).Inc()
}

type meteredPublisher struct {
	pubsub.Publisher
}

func (self meteredPublisher) Publish(msg *pubsub.Message) error {
	err := self.Publisher.Publish(msg)
	Observe(PublishedTotal, err)
	return err
}

// Metered wraps a publisher to count publish results.
func Metered(pub pubsub.Publisher) pubsub.Publisher {
	return meteredPublisher{pub}
}

func SetRecording(recording bool) {
	if recording {
		RecordingGauge.Set(1)
	} else {
		RecordingGauge.Set(0)
	}
}
