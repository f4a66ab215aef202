package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/catalog-explorer/pkg/ratelimit"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		StatusCode: 500,
		ErrorClass: ErrorClassServer,
		Endpoint:   "/character",
		Message:    "Internal Server Error",
	}

	want := "catalog server error (status 500) on /character: Internal Server Error"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Endpoint: "/episode/1", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "/episode/1") {
		t.Errorf("Error() = %q, want endpoint in message", err.Error())
	}
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("%w after 3 attempts: %w", ErrRetryExhausted,
		&APIError{StatusCode: http.StatusNotFound, ErrorClass: ErrorClassClient})

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOK   bool
		notFound bool
	}{
		{"api error", &APIError{StatusCode: 503}, 503, true, false},
		{"wrapped 404", wrapped, 404, true, true},
		{"transport error", &TransportError{Err: errors.New("x")}, 0, false, false},
		{"nil", nil, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := StatusCode(tt.err)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Errorf("StatusCode() = (%d, %v), want (%d, %v)", code, ok, tt.wantCode, tt.wantOK)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"api error", &APIError{StatusCode: 502, ErrorClass: ErrorClassServer}, ErrorClassServer},
		{"transport", &TransportError{Err: errors.New("reset")}, ErrorClassNetwork},
		{"decode", fmt.Errorf("decode /character/1: %w: eof", errDecode), ErrorClassDecode},
		{"blocked", fmt.Errorf("%w for 3s", ratelimit.ErrBlocked), ErrorClassRateLimit},
		{"unknown", errors.New("???"), ErrorClassNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}
