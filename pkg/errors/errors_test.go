package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestConflictIsDeterministic(t *testing.T) {
	err := Conflict("room R1 already allocated on Monday 09:00-10:00")

	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("conflict errors must not be retryable")
	}
	if IsRetryable(err) {
		t.Error("IsRetryable must report false for conflicts")
	}
}

func TestTransientIsRetryable(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("allocation store unavailable", cause)

	if !err.Retryable {
		t.Error("transient errors must be retryable")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable must report true for transient errors")
	}
	if !errors.Is(err, cause) {
		t.Error("transient error must wrap its cause")
	}
	if err.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", err.HTTPStatus)
	}
}

func TestNotFoundWithIDCarriesDetails(t *testing.T) {
	err := NotFoundWithID("Class session", "abc123")

	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail, got %v", err.Details)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", err.HTTPStatus)
	}
}

func TestAsAppErrorWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected internal code, got %s", appErr.Code)
	}
	if !errors.Is(appErr, plain) {
		t.Error("wrapped error must be reachable via errors.Is")
	}
}

func TestAsAppErrorPassesThrough(t *testing.T) {
	orig := InvalidInput("day is required")
	if got := AsAppError(orig); got != orig {
		t.Error("existing AppError must pass through unchanged")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Internal("failed to insert allocation", errors.New("socket closed"))
	if !strings.Contains(err.Error(), "socket closed") {
		t.Errorf("error string should include cause, got %q", err.Error())
	}
}
