package markdown

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the file birth time, which darwin exposes directly.
func creationTime(info os.FileInfo) (time.Time, bool) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), true
	}
	return info.ModTime(), false
}
