package instance

import "os"

// GetID returns the worker instance identifier, preferring WORKER_ID and then
// the hostname.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
