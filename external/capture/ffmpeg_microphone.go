package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/saluslab/escriba/internal/capture"
)

const (
	readChunkBytes = 4096
	// ffmpeg that cannot open the device exits almost immediately; give it
	// this long before declaring the acquisition successful.
	startupGrace    = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// FFmpegMicrophone captures the platform input device by running ffmpeg
// and streaming an opus/webm container from its stdout.
type FFmpegMicrophone struct {
	device string
	format string
}

func NewFFmpegMicrophone(device, format string) capture.Microphone {
	return &FFmpegMicrophone{device: device, format: format}
}

func (m *FFmpegMicrophone) Acquire(ctx context.Context) (capture.Stream, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", m.format, "-i", m.device,
		"-c:a", "libopus",
		"-f", "webm",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &capture.Error{Kind: capture.KindDeviceUnavailable, Detail: "ffmpeg not found in PATH"}
		}
		return nil, &capture.Error{Kind: capture.KindDeviceUnavailable, Detail: err.Error()}
	}
	slog.Debug("ffmpeg capture started", "device", m.device, "format", m.format, "pid", cmd.Process.Pid)

	waitC := make(chan error, 1)
	go func() { waitC <- cmd.Wait() }()

	select {
	case werr := <-waitC:
		return nil, mapStartupFailure(werr, stderr.String())
	case <-time.After(startupGrace):
	}

	return &ffmpegStream{cmd: cmd, stdout: stdout, waitC: waitC}, nil
}

// mapStartupFailure classifies an immediate ffmpeg exit from its stderr.
func mapStartupFailure(werr error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	if detail == "" && werr != nil {
		detail = werr.Error()
	}
	lower := strings.ToLower(detail)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "not permitted") {
		return &capture.Error{Kind: capture.KindPermissionDenied, Detail: detail}
	}
	return &capture.Error{Kind: capture.KindDeviceUnavailable, Detail: detail}
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	waitC  chan error

	closeOnce sync.Once
	closeErr  error
}

func (s *ffmpegStream) Read() ([]byte, error) {
	buf := make([]byte, readChunkBytes)
	n, err := s.stdout.Read(buf)
	if n > 0 {
		return buf[:n], err
	}
	return nil, err
}

func (s *ffmpegStream) ContentType() string { return "audio/webm" }

// Close asks ffmpeg to finalize the container and releases the device.
func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		// SIGINT lets ffmpeg flush the webm trailer before exiting.
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.waitC:
		case <-time.After(shutdownTimeout):
			_ = s.cmd.Process.Kill()
			s.closeErr = fmt.Errorf("ffmpeg did not exit; killed pid %d", s.cmd.Process.Pid)
			<-s.waitC
		}
		_ = s.stdout.Close()
	})
	return s.closeErr
}
