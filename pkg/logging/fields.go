package logging

import (
	"log/slog"
	"time"
)

// Domain identifiers

func User(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Room(id string) slog.Attr {
	return slog.String("room_id", id)
}

func Conn(id string) slog.Attr {
	return slog.String("connection_id", id)
}

func MsgType(t string) slog.Attr {
	return slog.String("message_type", t)
}

func Task(id, name string) slog.Attr {
	return slog.Group("task", slog.String("id", id), slog.String("name", name))
}

func Members(n int) slog.Attr {
	return slog.Int("members", n)
}

func Elapsed(since time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(since))
}

// Request / tracing

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func TraceID(id string) slog.Attr {
	return slog.String("trace_id", id)
}

func SpanID(id string) slog.Attr {
	return slog.String("span_id", id)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
