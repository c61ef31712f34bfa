package instance

import (
	"os"

	"github.com/angelmondragon/dealtracker-backend/pkg/env"
)

// GetID returns the process instance identifier used in logs and lock ownership.
// It falls back to the hostname and finally to a fixed default.
func GetID() string {
	if id := env.First("", "DEALTRACKER_INSTANCE_ID", "WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}
