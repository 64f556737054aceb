package observability

import (
	"sync"
	"time"

	"github.com/danmuck/wlprobe/internal/client"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	wireMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wlprobe",
			Subsystem: "wire",
			Name:      "messages_total",
			Help:      "Protocol messages by interface, message and direction.",
		},
		[]string{"interface", "message", "direction"},
	)
	objectEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wlprobe",
			Subsystem: "objects",
			Name:      "lifecycle_total",
			Help:      "Protocol object lifecycle events by interface.",
		},
		[]string{"interface", "event"},
	)
	roundtripDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wlprobe",
			Subsystem: "display",
			Name:      "roundtrip_duration_seconds",
			Help:      "Roundtrip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase", "success"},
	)
	globalsSeen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wlprobe",
			Subsystem: "registry",
			Name:      "globals",
			Help:      "Globals announced by the compositor, by interface.",
		},
		[]string{"interface"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(wireMessages, objectEvents, roundtripDuration, globalsSeen)
	})
}

// Registry returns the private registry holding every wlprobe collector.
func Registry() *prometheus.Registry {
	RegisterMetrics()
	return registry
}

func RecordMessage(iface, message, direction string) {
	RegisterMetrics()
	wireMessages.WithLabelValues(iface, message, direction).Inc()
}

func RecordObjectEvent(iface string, event client.ObjectEventType) {
	RegisterMetrics()
	objectEvents.WithLabelValues(iface, event.String()).Inc()
}

func RecordRoundtrip(phase string, duration time.Duration, success bool) {
	RegisterMetrics()
	label := "false"
	if success {
		label = "true"
	}
	roundtripDuration.WithLabelValues(phase, label).Observe(duration.Seconds())
}

func RecordGlobal(iface string, delta float64) {
	RegisterMetrics()
	globalsSeen.WithLabelValues(iface).Add(delta)
}

// WriteTextfile writes the registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry())
}

// Recorder feeds connection traffic and object lifecycle into the metrics.
type Recorder struct{}

func (Recorder) MessageSent(iface, message string) {
	RecordMessage(iface, message, "sent")
}

func (Recorder) MessageReceived(iface, message string) {
	RecordMessage(iface, message, "received")
}

func (Recorder) OnObjectEvent(e client.ObjectEvent) {
	name := "unknown"
	if e.Interface != nil {
		name = e.Interface.Name
	}
	RecordObjectEvent(name, e.Type)
}
