// Package youtube resolves YouTube URLs through the format manifest exposed
// by github.com/kkdai/youtube/v2.
package youtube

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

const unavailableMessage = "Failed to fetch video information. The video may be unavailable or unsupported."

type resolver struct {
	client      youtube.Client
	metaTimeout time.Duration
	log         zerolog.Logger
}

// NewResolver builds the manifest-based YouTube resolver. metaTimeout bounds
// the manifest fetch during source resolution; the media transfer itself runs
// on the request context.
func NewResolver(metaTimeout time.Duration, log zerolog.Logger) ports.Resolver {
	return &resolver{
		client:      youtube.Client{},
		metaTimeout: metaTimeout,
		log:         log.With().Str("resolver", "youtube").Logger(),
	}
}

func (r *resolver) Platform() domain.Platform { return domain.PlatformYouTube }

func (r *resolver) Inspect(ctx context.Context, u domain.ValidatedURL) (*domain.RawInspection, error) {
	video, err := r.client.GetVideoContext(ctx, u.Raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamUnavailable, unavailableMessage, err)
	}
	return &domain.RawInspection{
		Title:   video.Title,
		Formats: mapFormats(video.Formats),
	}, nil
}

func (r *resolver) ResolveSource(ctx context.Context, u domain.ValidatedURL, itag string, kind domain.FormatKind) (*domain.DirectSource, error) {
	metaCtx, cancel := context.WithTimeout(ctx, r.metaTimeout)
	defer cancel()

	video, err := r.client.GetVideoContext(metaCtx, u.Raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamUnavailable, unavailableMessage, err)
	}

	format := r.pickFormat(video.Formats, itag, kind)
	if format == nil {
		return nil, domain.NewError(domain.ErrUpstreamUnavailable,
			"No matching downloadable rendition was found for this video.")
	}

	stream, size, err := r.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamUnavailable,
			"The video stream could not be opened. The video may be unavailable.", err)
	}

	return &domain.DirectSource{
		Title:         video.Title,
		Stream:        stream,
		ContentLength: size,
		ContentType:   baseMimeType(format.MimeType),
	}, nil
}

// pickFormat selects by itag first. An itag from a stale inspection that no
// longer matches the live manifest falls back to the highest-bitrate
// rendition of the requested kind, which mirrors what a fresh inspection
// would have offered first.
func (r *resolver) pickFormat(formats youtube.FormatList, itag string, kind domain.FormatKind) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if classify(f) != kind {
			continue
		}
		if itag != "" && strconv.Itoa(f.ItagNo) == itag {
			return f
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if itag != "" && best != nil {
		r.log.Warn().Str("itag", itag).Int("fallback_itag", best.ItagNo).
			Msg("requested itag no longer in manifest, falling back to best rendition")
	}
	return best
}

// mapFormats keeps combined mp4 renditions (video bucket) and audio-only
// renditions (audio bucket); everything else is not directly deliverable.
func mapFormats(formats youtube.FormatList) []domain.FormatEntry {
	entries := make([]domain.FormatEntry, 0, len(formats))
	for i := range formats {
		f := &formats[i]
		kind := classify(f)
		if kind == "" {
			continue
		}
		entry := domain.FormatEntry{
			Itag:       strconv.Itoa(f.ItagNo),
			Kind:       kind,
			Bitrate:    f.Bitrate,
			SizeApprox: f.ContentLength,
		}
		if kind == domain.FormatVideo {
			entry.QualityLabel = f.QualityLabel
			entry.FPS = f.FPS
		} else {
			entry.AudioQuality = f.AudioQuality
		}
		entries = append(entries, entry)
	}
	return entries
}

func classify(f *youtube.Format) domain.FormatKind {
	switch {
	case strings.HasPrefix(f.MimeType, "video/mp4") && f.AudioChannels > 0:
		return domain.FormatVideo
	case strings.HasPrefix(f.MimeType, "audio/"):
		return domain.FormatAudio
	default:
		return ""
	}
}

func baseMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
