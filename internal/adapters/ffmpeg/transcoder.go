// Package ffmpeg wraps an ffmpeg process as a streaming mp3 transcoder:
// source bytes in on stdin, encoded bytes out on stdout, nothing buffered to
// disk and never the whole input in memory.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

const conversionFailedMessage = "Conversion failed."

type transcoder struct {
	binPath string
	log     zerolog.Logger
}

// NewTranscoder builds a transcoder shelling out to the ffmpeg binary at
// binPath.
func NewTranscoder(binPath string, log zerolog.Logger) ports.Transcoder {
	return &transcoder{
		binPath: binPath,
		log:     log.With().Str("component", "ffmpeg").Logger(),
	}
}

// TranscodeToMP3 starts the encoder and returns its output stream. Cancelling
// ctx or closing the returned reader kills the process; no encoder outlives
// its request.
func (t *transcoder) TranscodeToMP3(ctx context.Context, src io.Reader) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, t.binPath,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", "192k",
		"-f", "mp3",
		"pipe:1",
	)
	cmd.Stdin = src

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, domain.WrapError(domain.ErrTranscodeFailure, conversionFailedMessage, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, domain.WrapError(domain.ErrTranscodeFailure, conversionFailedMessage, err)
	}

	return &mp3Stream{cmd: cmd, out: stdout, stderr: &stderr, log: t.log}, nil
}

// mp3Stream relays encoder output and turns a nonzero exit into a
// TranscodeFailure surfaced at end of stream.
type mp3Stream struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr *bytes.Buffer
	log    zerolog.Logger

	waitOnce sync.Once
	waitErr  error
}

func (s *mp3Stream) Read(p []byte) (int, error) {
	n, err := s.out.Read(p)
	if errors.Is(err, io.EOF) {
		if werr := s.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (s *mp3Stream) Close() error {
	s.out.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *mp3Stream) wait() error {
	s.waitOnce.Do(func() {
		if err := s.cmd.Wait(); err != nil {
			detail := strings.TrimSpace(s.stderr.String())
			s.log.Error().Err(err).Str("ffmpeg_stderr", detail).Msg("encoder exited with failure")
			if detail != "" {
				err = fmt.Errorf("%w: %s", err, detail)
			}
			s.waitErr = domain.WrapError(domain.ErrTranscodeFailure, conversionFailedMessage, err)
		}
	})
	return s.waitErr
}
