package observability

import (
	"github.com/danmuck/wlprobe/internal/client"
	"github.com/rs/zerolog"
)

// LifecycleLogger logs object lifecycle events. Created objects log at trace
// level, teardown at debug.
func LifecycleLogger(logger zerolog.Logger) client.Observer {
	return client.ObserverFunc(func(e client.ObjectEvent) {
		event := logger.Debug()
		if e.Type == client.ObjectCreated {
			event = logger.Trace()
		}
		name := "unknown"
		if e.Interface != nil {
			name = e.Interface.Name
		}
		event.
			Str("interface", name).
			Uint32("id", e.ID).
			Str("event", e.Type.String()).
			Msg("object_lifecycle")
	})
}
