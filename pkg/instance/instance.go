package instance

import (
	"os"

	"github.com/turboairmx/quotesync/pkg/env"
)

// GetID returns the process instance identifier: an explicit worker id, the
// platform dyno name or the host name, in that order.
func GetID() string {
	if id := env.First("", "WORKER_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
