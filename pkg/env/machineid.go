// Package env derives host identity for agent configuration.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

// StringVar overrides *val when the environment variable is set.
func StringVar(val *string, name string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

// MachineID returns a stable ID unique to this host, falling back to
// the hostname where the platform machine ID is unavailable.
func MachineID() string {
	if id, err := machineid.ID(); err == nil {
		return id
	}
	host, err := os.Hostname()
	if err != nil {
		panic(err)
	}
	return host
}
