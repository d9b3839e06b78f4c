//go:build !darwin

package markdown

import (
	"os"
	"time"
)

// creationTime approximates the file birth time on platforms that do not
// expose one through the stat result. The second return value reports whether
// the time is exact; callers surface the degraded case instead of silently
// substituting the modification time.
func creationTime(info os.FileInfo) (time.Time, bool) {
	return info.ModTime(), false
}
