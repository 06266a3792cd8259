package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseLevel(t *testing.T) {
	req := require.New(t)

	req.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
	req.Equal(slog.LevelWarn, ParseLevel("warn"))
	req.Equal(slog.LevelError, ParseLevel("error"))
	req.Equal(slog.LevelInfo, ParseLevel("INFO"))
	req.Equal(slog.LevelInfo, ParseLevel(""))
}

func TestNewHandler_JSONCarriesDomainFields(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "JSON", slog.LevelInfo))

	log.Info("rooms - join - ok", Room("r1"), User("u1"), Conn("c1"))

	req.Equal("r1", gjson.GetBytes(buf.Bytes(), "room_id").String())
	req.Equal("u1", gjson.GetBytes(buf.Bytes(), "user_id").String())
	req.Equal("c1", gjson.GetBytes(buf.Bytes(), "connection_id").String())
}

func TestFromContext(t *testing.T) {
	req := require.New(t)
	log := slog.New(NewHandler(&bytes.Buffer{}, "TEXT", slog.LevelInfo))

	req.Same(slog.Default(), FromContext(context.Background()))
	req.Same(log, FromContext(WithContext(context.Background(), log)))
}

func TestWith_ExtendsContextLogger(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	base := slog.New(NewHandler(&buf, "JSON", slog.LevelInfo))

	// Given a request logger already carrying a room
	ctx := WithContext(context.Background(), base.With(Room("r1")))

	// When a user is added further down the call chain
	ctx, log := With(ctx, User("u1"))
	log.Info("rooms - join - ok")

	// Then both fields are logged and ctx carries the same logger
	req.Equal("r1", gjson.GetBytes(buf.Bytes(), "room_id").String())
	req.Equal("u1", gjson.GetBytes(buf.Bytes(), "user_id").String())
	req.Same(log, FromContext(ctx))
}

func TestTraceAttrs(t *testing.T) {
	t.Run("should be empty without a span", func(t *testing.T) {
		req := require.New(t)
		req.Nil(TraceAttrs(context.Background()))
	})

	t.Run("should carry trace and span ids of the active span", func(t *testing.T) {
		req := require.New(t)
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		var buf bytes.Buffer
		slog.New(NewHandler(&buf, "JSON", slog.LevelInfo)).Info("x", TraceAttrs(ctx)...)

		req.Equal(span.SpanContext().TraceID().String(), gjson.GetBytes(buf.Bytes(), "trace_id").String())
		req.Equal(span.SpanContext().SpanID().String(), gjson.GetBytes(buf.Bytes(), "span_id").String())
	})
}
