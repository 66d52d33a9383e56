package kafka

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("db down", errors.New("x")), ErrorTypeTransient},
		{"tagged permanent", NewPermanentError("bad payload", errors.New("x")), ErrorTypePermanent},
		{"wrapped tagged error", fmt.Errorf("handler: %w", NewTransientError("db down", nil)), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeTransient},
		{"deadline exceeded", errors.New("context deadline exceeded"), ErrorTypeTransient},
		{"unrecognized", errors.New("invalid audience"), ErrorTypePermanent},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("db down", nil)

	if !ShouldRetry(transient, 0, 3) {
		t.Error("transient error below the retry cap must retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("retries stop at the cap")
	}
	if ShouldRetry(NewPermanentError("bad payload", nil), 0, 3) {
		t.Error("permanent errors never retry")
	}
	if ShouldRetry(nil, 0, 3) {
		t.Error("nil error never retries")
	}
}

func TestMessageRetryCount(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue("v").Build()

	if got := msg.GetRetryCount(); got != 0 {
		t.Fatalf("fresh message retry count = %d, want 0", got)
	}

	msg.IncrementRetryCount()
	msg.IncrementRetryCount()
	if got := msg.GetRetryCount(); got != 2 {
		t.Fatalf("retry count = %d, want 2", got)
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if got := msg.GetRetryCount(); got != 0 {
		t.Fatalf("garbage retry header must read as 0, got %d", got)
	}
}
