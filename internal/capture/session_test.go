package capture

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

type fakeStream struct {
	chunks     chan []byte
	closeCount int32
}

func newFakeStream(chunks ...[]byte) *fakeStream {
	s := &fakeStream{chunks: make(chan []byte, 16)}
	for _, c := range chunks {
		s.chunks <- c
	}
	return s
}

func (s *fakeStream) Read() ([]byte, error) {
	c, ok := <-s.chunks
	if !ok {
		return nil, io.EOF
	}
	return c, nil
}

func (s *fakeStream) ContentType() string { return "audio/webm" }

func (s *fakeStream) Close() error {
	if atomic.AddInt32(&s.closeCount, 1) == 1 {
		close(s.chunks)
	}
	return nil
}

func (s *fakeStream) closed() bool {
	return atomic.LoadInt32(&s.closeCount) > 0
}

type fakeMicrophone struct {
	stream       *fakeStream
	acquireErr   error
	acquireCount int
}

func (m *fakeMicrophone) Acquire(_ context.Context) (Stream, error) {
	m.acquireCount++
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	return m.stream, nil
}

func TestStart_SecondStartRejectedWhileRecording(t *testing.T) {
	mic := &fakeMicrophone{stream: newFakeStream()}
	session := NewSession(mic)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("expected first start to succeed, got %v", err)
	}
	defer session.Stop()

	err := session.Start(context.Background())
	var capErr *Error
	if !errors.As(err, &capErr) || capErr.Kind != KindAlreadyRecording {
		t.Fatalf("expected already_recording error, got %v", err)
	}
	if session.State() != StateRecording {
		t.Fatalf("expected first recording unaffected, state %s", session.State())
	}
	if mic.acquireCount != 1 {
		t.Fatalf("expected a single device acquisition, got %d", mic.acquireCount)
	}
}

func TestStop_WhileIdleIsNoOp(t *testing.T) {
	session := NewSession(&fakeMicrophone{stream: newFakeStream()})
	session.Stop()
	if session.State() != StateIdle {
		t.Fatalf("expected idle, got %s", session.State())
	}
}

func TestStartStop_ProducesOrderedArtifactAndReleasesDevice(t *testing.T) {
	stream := newFakeStream([]byte("consul"), []byte("ta"))
	mic := &fakeMicrophone{stream: stream}
	session := NewSession(mic)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.Stop()

	if session.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", session.State())
	}
	if !stream.closed() {
		t.Fatal("expected microphone stream to be released on stop")
	}
	art, ok := session.Take()
	if !ok {
		t.Fatal("expected an artifact after stop")
	}
	if string(art.Data) != "consulta" {
		t.Fatalf("unexpected artifact data: %q", art.Data)
	}
	if art.ContentType != "audio/webm" {
		t.Fatalf("unexpected content type: %s", art.ContentType)
	}
}

func TestElapsed_AccumulatesSecondTicks(t *testing.T) {
	session := NewSession(&fakeMicrophone{stream: newFakeStream()})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.tick()
	session.tick()
	session.tick()
	session.Stop()
	if got := session.Elapsed(); got != 3 {
		t.Fatalf("expected elapsed 3, got %d", got)
	}
}

func TestStart_PermissionDeniedThenRetry(t *testing.T) {
	mic := &fakeMicrophone{acquireErr: &Error{Kind: KindPermissionDenied}}
	session := NewSession(mic)

	err := session.Start(context.Background())
	var capErr *Error
	if !errors.As(err, &capErr) || capErr.Kind != KindPermissionDenied {
		t.Fatalf("expected permission_denied error, got %v", err)
	}
	if session.State() != StateError {
		t.Fatalf("expected error state, got %s", session.State())
	}

	mic.acquireErr = nil
	mic.stream = newFakeStream()
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("expected retry after error to succeed, got %v", err)
	}
	session.Stop()
}

func TestStart_UnknownAcquireErrorMapsToDeviceUnavailable(t *testing.T) {
	mic := &fakeMicrophone{acquireErr: errors.New("no input device")}
	session := NewSession(mic)

	err := session.Start(context.Background())
	var capErr *Error
	if !errors.As(err, &capErr) || capErr.Kind != KindDeviceUnavailable {
		t.Fatalf("expected device_unavailable error, got %v", err)
	}
}

func TestReset_DiscardsTake(t *testing.T) {
	session := NewSession(&fakeMicrophone{stream: newFakeStream([]byte("take"))})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.tick()
	session.Stop()
	session.Reset()

	if session.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", session.State())
	}
	if session.Elapsed() != 0 {
		t.Fatalf("expected elapsed reset, got %d", session.Elapsed())
	}
	if _, ok := session.Take(); ok {
		t.Fatal("expected no artifact after reset")
	}
}

func TestTake_TransfersOwnershipOnce(t *testing.T) {
	session := NewSession(&fakeMicrophone{stream: newFakeStream([]byte("x"))})
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.Stop()

	if _, ok := session.Take(); !ok {
		t.Fatal("expected first take to succeed")
	}
	if _, ok := session.Take(); ok {
		t.Fatal("expected second take to fail after ownership transfer")
	}
}

func TestStart_ContextCancelReleasesDevice(t *testing.T) {
	stream := newFakeStream()
	session := NewSession(&fakeMicrophone{stream: stream})
	ctx, cancel := context.WithCancel(context.Background())
	if err := session.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for !stream.closed() || session.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("device not released after cancel: closed=%v state=%s", stream.closed(), session.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
