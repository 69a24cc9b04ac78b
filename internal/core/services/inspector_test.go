package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftgrab/internal/config"
	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

func newTestInspector(resolvers ...ports.Resolver) (ports.Inspector, *fakeResolver) {
	var fake *fakeResolver
	for _, r := range resolvers {
		if f, ok := r.(*fakeResolver); ok {
			fake = f
		}
	}
	validator := NewHostValidator(config.DefaultAllowedHosts())
	return NewInspector(validator, resolvers, time.Second, zerolog.Nop()), fake
}

func TestInspectRejectsUnsupportedHostWithoutResolverCall(t *testing.T) {
	inspector, fake := newTestInspector(&fakeResolver{platform: domain.PlatformYouTube})

	_, err := inspector.Inspect(context.Background(), "https://vimeo.com/12345")

	require.Error(t, err)
	assert.Equal(t, domain.ErrUnsupportedHost, domain.KindOf(err))
	assert.Zero(t, fake.inspectCalls)
}

func TestInspectRejectsPlatformWithoutResolver(t *testing.T) {
	// Only a reddit resolver registered; a valid YouTube URL must be
	// rejected before resolution, not mid-pipeline.
	inspector, _ := newTestInspector(&fakeResolver{platform: domain.PlatformReddit})

	_, err := inspector.Inspect(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.Error(t, err)
	assert.Equal(t, domain.ErrUnsupportedHost, domain.KindOf(err))
}

func TestInspectBuildsCatalogFromResolverOutput(t *testing.T) {
	inspector, _ := newTestInspector(&fakeResolver{
		platform: domain.PlatformYouTube,
		inspection: &domain.RawInspection{
			Title: "Fixture Video",
			Formats: []domain.FormatEntry{
				{Itag: "140", Kind: domain.FormatAudio, Bitrate: 128_000},
				{Itag: "18", Kind: domain.FormatVideo, QualityLabel: "360p", Bitrate: 500_000},
				{Itag: "22", Kind: domain.FormatVideo, QualityLabel: "720p", Bitrate: 1_500_000},
			},
		},
	})

	desc, err := inspector.Inspect(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "Fixture Video", desc.Title)
	require.Len(t, desc.VideoFormats, 2)
	assert.Equal(t, "22", desc.VideoFormats[0].Itag)
	require.Len(t, desc.AudioFormats, 1)
}

func TestInspectIsIdempotentAgainstStaticFixture(t *testing.T) {
	fake := &fakeResolver{
		platform: domain.PlatformYouTube,
		inspection: &domain.RawInspection{
			Title: "Stable",
			Formats: []domain.FormatEntry{
				{Itag: "22", Kind: domain.FormatVideo, QualityLabel: "720p", Bitrate: 1_500_000},
				{Itag: "140", Kind: domain.FormatAudio, Bitrate: 128_000},
			},
		},
	}
	inspector, _ := newTestInspector(fake)

	first, err := inspector.Inspect(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	second, err := inspector.Inspect(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, fake.inspectCalls)
}

func TestInspectPropagatesResolverError(t *testing.T) {
	inspector, _ := newTestInspector(&fakeResolver{
		platform:   domain.PlatformReddit,
		inspectErr: domain.NewError(domain.ErrNoVideoFound, "Could not find video in this Reddit post."),
	})

	_, err := inspector.Inspect(context.Background(), "https://www.reddit.com/r/videos/comments/abc/title/")

	require.Error(t, err)
	assert.Equal(t, domain.ErrNoVideoFound, domain.KindOf(err))
}
