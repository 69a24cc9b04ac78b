package ports

import (
	"context"
	"io"

	"swiftgrab/internal/core/domain"
)

// HostValidator classifies a raw URL string. Pure, no network I/O.
type HostValidator interface {
	Validate(rawURL string) (domain.ValidatedURL, error)
}

// Resolver is the per-platform strategy turning a validated URL into format
// metadata or a direct media source. Two calls are not guaranteed to see the
// same upstream manifest, so delivery always re-resolves.
type Resolver interface {
	Platform() domain.Platform
	Inspect(ctx context.Context, u domain.ValidatedURL) (*domain.RawInspection, error)
	ResolveSource(ctx context.Context, u domain.ValidatedURL, itag string, kind domain.FormatKind) (*domain.DirectSource, error)
}

// Inspector turns an opaque URL into the selectable format catalog.
type Inspector interface {
	Inspect(ctx context.Context, rawURL string) (*domain.MediaDescriptor, error)
}

// Deliverer runs the validate -> resolve -> stream/transcode pipeline for one
// download request.
type Deliverer interface {
	Deliver(ctx context.Context, req domain.DownloadRequest) (*domain.Delivery, error)
}

// Transcoder converts a source audio stream into mp3 bytes while streaming.
// The returned reader surfaces encoder failures; closing it must reap the
// underlying encoder process.
type Transcoder interface {
	TranscodeToMP3(ctx context.Context, src io.Reader) (io.ReadCloser, error)
}
