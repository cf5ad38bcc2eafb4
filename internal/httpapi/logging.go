package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"modelbridge/pkg/types"
)

// zlog is an optional structured logger. If unset, the HTTP layer logs nothing.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("MODELBRIDGE_LOG_CALLS"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logCall records the outcome of one bridge call at the request's log level.
// Errors are logged from LevelError, successes from LevelInfo; LevelDebug adds
// the argument keys.
func logCall(r *http.Request, method string, args map[string]any, reply types.Reply, status int, start time.Time) {
	if zlog == nil {
		return
	}
	lvl := requestLogLevel(r)
	failed := reply.Status == types.ReplyFailed
	if lvl == LevelOff || (!failed && lvl < LevelInfo) {
		return
	}
	ev := zlog.Info()
	if failed {
		ev = zlog.Warn().Str("kind", string(reply.Error.Kind)).Str("error", reply.Error.Message)
	}
	ev = ev.Str("method", method).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	if lvl >= LevelDebug {
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		ev = ev.Strs("arg_keys", keys)
	}
	ev.Msg("call")
}
