// Package filesystem holds small path helpers shared by the config layer.
package filesystem

import "os"

// UserHomeDir returns the home directory that anchors the default
// ~/.calltrail tree. When it cannot be resolved the current directory
// stands in, so first runs still have somewhere writable to land.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
