package capture

import (
	"context"
	"fmt"
)

// Artifact is the finished recording. Ownership transfers to the caller
// of Session.Take; the session never reuses or mutates it afterward.
type Artifact struct {
	Data        []byte
	ContentType string
}

// Stream delivers captured audio chunks in arrival order. Close releases
// the underlying device; Read returns io.EOF after Close.
type Stream interface {
	Read() ([]byte, error)
	ContentType() string
	Close() error
}

// Microphone is the platform capture capability. Acquire grants exclusive
// access to the input device for the lifetime of the returned stream.
type Microphone interface {
	Acquire(ctx context.Context) (Stream, error)
}

type ErrorKind string

const (
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindDeviceUnavailable ErrorKind = "device_unavailable"
	KindAlreadyRecording  ErrorKind = "already_recording"
)

type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("capture: %s", e.Kind)
	}
	return fmt.Sprintf("capture: %s: %s", e.Kind, e.Detail)
}
