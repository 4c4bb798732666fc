//go:build !linux && !darwin

package system

import "github.com/rs/zerolog"

// RaiseFileLimit is a no-op where RLIMIT_NOFILE does not exist.
func RaiseFileLimit(want uint64, log zerolog.Logger) {}
