package services

import (
	"context"
	"io"
	"strings"

	"swiftgrab/internal/core/domain"
)

// fakeResolver is a scripted resolver used across the service tests. It
// counts calls so tests can assert that no resolution happens when
// validation already failed.
type fakeResolver struct {
	platform domain.Platform

	inspection   *domain.RawInspection
	inspectErr   error
	inspectCalls int
	source       *domain.DirectSource
	resolveErr   error
	resolveCalls int
	lastItag     string
	lastKind     domain.FormatKind
}

func (f *fakeResolver) Platform() domain.Platform { return f.platform }

func (f *fakeResolver) Inspect(ctx context.Context, u domain.ValidatedURL) (*domain.RawInspection, error) {
	f.inspectCalls++
	if f.inspectErr != nil {
		return nil, f.inspectErr
	}
	return f.inspection, nil
}

func (f *fakeResolver) ResolveSource(ctx context.Context, u domain.ValidatedURL, itag string, kind domain.FormatKind) (*domain.DirectSource, error) {
	f.resolveCalls++
	f.lastItag = itag
	f.lastKind = kind
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	src := *f.source
	return &src, nil
}

// fakeTranscoder records whether the transcoding stage ran.
type fakeTranscoder struct {
	calls int
	fail  error
}

func (f *fakeTranscoder) TranscodeToMP3(ctx context.Context, src io.Reader) (io.ReadCloser, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return io.NopCloser(strings.NewReader("mp3-bytes")), nil
}

// trackedStream remembers whether it was closed.
type trackedStream struct {
	io.Reader
	closed bool
}

func newTrackedStream(content string) *trackedStream {
	return &trackedStream{Reader: strings.NewReader(content)}
}

func (s *trackedStream) Close() error {
	s.closed = true
	return nil
}
