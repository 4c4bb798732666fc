//go:build linux || darwin

package system

import (
	"syscall"

	"github.com/rs/zerolog"
)

// RaiseFileLimit lifts the soft open-files limit to want, capped by the hard
// limit. It never lowers the current value.
func RaiseFileLimit(want uint64, log zerolog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("не удалось получить лимит файлов")
		return
	}
	if uint64(rLimit.Cur) >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("не удалось установить лимит файлов")
		return
	}
	log.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("лимит открытых файлов увеличен")
}
