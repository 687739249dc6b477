package services_test

import (
	"errors"
	"testing"

	"reidsubmit/internal/services"
)

func TestWrapTagsWithMarker(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "reid-hota", "evaluate", "scoring failed", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "external tool error: reid-hota: evaluate: scoring failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "generator", "locate videos", "no source video", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("marker lost: %v", err)
	}
	if err.Error() != "not found: generator: locate videos: no source video" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if err.Error() != "external tool error: service failure" {
		t.Fatalf("message = %q", err.Error())
	}
}
