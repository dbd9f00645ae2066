package capture

import (
	"errors"
	"testing"

	"github.com/saluslab/escriba/internal/capture"
)

func TestMapStartupFailure_PermissionDenied(t *testing.T) {
	err := mapStartupFailure(errors.New("exit status 1"), "default: Permission denied")
	var capErr *capture.Error
	if !errors.As(err, &capErr) || capErr.Kind != capture.KindPermissionDenied {
		t.Fatalf("expected permission_denied, got %v", err)
	}
}

func TestMapStartupFailure_DeviceUnavailable(t *testing.T) {
	err := mapStartupFailure(errors.New("exit status 1"), "hw:9: No such device")
	var capErr *capture.Error
	if !errors.As(err, &capErr) || capErr.Kind != capture.KindDeviceUnavailable {
		t.Fatalf("expected device_unavailable, got %v", err)
	}
}

func TestMapStartupFailure_EmptyStderrFallsBackToWaitError(t *testing.T) {
	err := mapStartupFailure(errors.New("exit status 1"), "")
	var capErr *capture.Error
	if !errors.As(err, &capErr) || capErr.Detail != "exit status 1" {
		t.Fatalf("expected wait error detail, got %v", err)
	}
}
