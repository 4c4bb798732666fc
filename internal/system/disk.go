package system

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/ivlev/scene2video/internal/ffmpeg"
)

// UsageFunc reports free bytes on the volume holding path.
type UsageFunc func(path string) (uint64, error)

// DiskFree measures free space with gopsutil.
func DiskFree(path string) (uint64, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return u.Free, nil
}

// SpaceGuard is the preflight free-space check on the output volume.
type SpaceGuard struct {
	Dir     string
	MinFree uint64
	Usage   UsageFunc
	Log     zerolog.Logger
}

func NewSpaceGuard(dir string, minFree uint64, log zerolog.Logger) *SpaceGuard {
	return &SpaceGuard{Dir: dir, MinFree: minFree, Usage: DiskFree, Log: log}
}

// Check fails with ffmpeg.KindInsufficientSpace when free space is below
// MinFree. A volume that cannot be measured passes with a warning.
func (g *SpaceGuard) Check() error {
	free, err := g.Usage(g.Dir)
	if err != nil {
		g.Log.Warn().Err(err).Str("dir", g.Dir).Msg("не удалось измерить свободное место, продолжаем")
		return nil
	}
	if free < g.MinFree {
		return &ffmpeg.Error{
			Kind: ffmpeg.KindInsufficientSpace,
			Op:   g.Dir,
			Msg: fmt.Sprintf("insufficient disk space: %s free, at least %s required; free up space and retry",
				HumanBytes(free), HumanBytes(g.MinFree)),
		}
	}
	return nil
}

// HumanBytes formats n with a binary unit.
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
