package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyContentKey = "content_key"
	KeyVariant    = "variant"
	KeyCallSites  = "call_sites"
	KeyNewKeys    = "new_keys"
	KeyStaleKeys  = "stale_keys"
	KeyFiles      = "files"
	KeyLanguage   = "language"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func ContentKey(k string) slog.Attr   { return slog.String(KeyContentKey, k) }
func Variant(v string) slog.Attr      { return slog.String(KeyVariant, v) }
func CallSites(n int) slog.Attr       { return slog.Int(KeyCallSites, n) }
func NewKeys(n int) slog.Attr         { return slog.Int(KeyNewKeys, n) }
func StaleKeys(n int) slog.Attr       { return slog.Int(KeyStaleKeys, n) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Language(l string) slog.Attr     { return slog.String(KeyLanguage, l) }

// Since reports the elapsed time since start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
