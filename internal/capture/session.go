package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopped   State = "stopped"
	StateError     State = "error"
)

// Session owns the microphone for the duration of one recording. At most
// one recording runs at a time; Start while recording is rejected.
type Session struct {
	mic Microphone

	mu          sync.Mutex
	state       State
	stream      Stream
	contentType string
	chunks      [][]byte
	elapsed     int
	artifact    *Artifact
	stopC       chan struct{}
	stopOnce    *sync.Once
	wg          sync.WaitGroup
}

func NewSession(mic Microphone) *Session {
	return &Session{mic: mic, state: StateIdle}
}

// Start acquires the microphone and begins buffering chunks and counting
// elapsed seconds. The context covers the whole recording: cancelling it
// releases the device and discards the take.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateRecording:
		s.mu.Unlock()
		return &Error{Kind: KindAlreadyRecording}
	case StateStopped:
		s.mu.Unlock()
		return fmt.Errorf("capture: previous take not discarded (state %s)", StateStopped)
	}
	// Reserve the session before the blocking platform call.
	s.state = StateRecording
	s.chunks = nil
	s.elapsed = 0
	s.artifact = nil
	s.mu.Unlock()

	stream, err := s.mic.Acquire(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.mu.Unlock()
		var capErr *Error
		if errors.As(err, &capErr) {
			return capErr
		}
		return &Error{Kind: KindDeviceUnavailable, Detail: err.Error()}
	}

	s.mu.Lock()
	s.stream = stream
	s.contentType = stream.ContentType()
	s.stopC = make(chan struct{})
	s.stopOnce = &sync.Once{}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readChunks(stream)
	go s.countElapsed(ctx, s.stopC)
	go s.watchCancel(ctx, s.stopC)
	slog.Info("recording started", "content_type", s.contentType)
	return nil
}

// Stop finalizes buffered chunks into one artifact and releases the
// device. Outside Recording it is a no-op.
func (s *Session) Stop() {
	stream, ok := s.beginShutdown(StateStopped)
	if !ok {
		return
	}
	_ = stream.Close()
	s.wg.Wait()

	s.mu.Lock()
	s.artifact = &Artifact{
		Data:        bytes.Join(s.chunks, nil),
		ContentType: s.contentType,
	}
	s.chunks = nil
	elapsed := s.elapsed
	size := len(s.artifact.Data)
	s.mu.Unlock()
	slog.Info("recording stopped", "elapsed_seconds", elapsed, "artifact_bytes", size)
}

// Reset discards the finished take and returns to Idle. Valid from
// Stopped and Error.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped && s.state != StateError {
		return
	}
	s.state = StateIdle
	s.artifact = nil
	s.chunks = nil
	s.elapsed = 0
}

// Take transfers ownership of the artifact to the caller. The second call
// reports false: the session must not hand the same take out twice.
func (s *Session) Take() (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped || s.artifact == nil {
		return Artifact{}, false
	}
	art := *s.artifact
	s.artifact = nil
	return art, true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed reports whole recorded seconds at 1-second resolution.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// beginShutdown moves Recording into next and detaches the stream so the
// device is released exactly once on every exit path.
func (s *Session) beginShutdown(next State) (Stream, bool) {
	s.mu.Lock()
	if s.state != StateRecording || s.stream == nil {
		s.mu.Unlock()
		return nil, false
	}
	s.state = next
	stream := s.stream
	s.stream = nil
	stopOnce := s.stopOnce
	stopC := s.stopC
	s.mu.Unlock()
	stopOnce.Do(func() { close(stopC) })
	return stream, true
}

func (s *Session) readChunks(stream Stream) {
	defer s.wg.Done()
	for {
		chunk, err := stream.Read()
		if len(chunk) > 0 {
			s.mu.Lock()
			s.chunks = append(s.chunks, chunk)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) countElapsed(ctx context.Context, stopC <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stopC:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		s.elapsed++
	}
}

// watchCancel releases the device if the recording context is cancelled
// while still recording. The take is discarded.
func (s *Session) watchCancel(ctx context.Context, stopC <-chan struct{}) {
	select {
	case <-stopC:
		return
	case <-ctx.Done():
	}
	stream, ok := s.beginShutdown(StateIdle)
	if !ok {
		return
	}
	_ = stream.Close()
	s.wg.Wait()
	s.mu.Lock()
	s.chunks = nil
	s.elapsed = 0
	s.mu.Unlock()
	slog.Warn("recording aborted by context cancel")
}
