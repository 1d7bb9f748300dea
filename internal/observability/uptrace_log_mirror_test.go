package observability

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestIsHealthCheckLog(t *testing.T) {
	if !isHealthCheckLog("http request", []any{"method", "GET", "path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if isHealthCheckLog("http request", []any{"path", "/v1/orders"}) {
		t.Fatalf("did not expect order request log to be skipped")
	}
	if isHealthCheckLog("order claimed", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non-request log to be skipped")
	}
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"order_id", "o-1", "attempt", 2, "amount", decimal.RequireFromString("69.7"), "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "order_id" || attrs[0].Value.AsString() != "o-1" {
		t.Fatalf("unexpected order_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Value.AsString() != "69.70" {
		t.Fatalf("expected decimal rendered with two places, got %q", attrs[2].Value.AsString())
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute")
	}
}

func TestLogValue_Error(t *testing.T) {
	if got := logValue(errors.New("boom")).AsString(); got != "boom" {
		t.Fatalf("unexpected error value %q", got)
	}
}

func TestOTelSeverity(t *testing.T) {
	if otelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("warn must map to SeverityWarn")
	}
	if otelSeverity(zapcore.ErrorLevel) != otellog.SeverityError {
		t.Fatalf("error must map to SeverityError")
	}
}
