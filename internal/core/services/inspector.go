package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

type inspectorService struct {
	validator ports.HostValidator
	resolvers map[domain.Platform]ports.Resolver
	timeout   time.Duration
	log       zerolog.Logger
}

// NewInspector wires the host validator, the per-platform resolvers and the
// catalog builder into the inspection pipeline. The timeout bounds one
// resolver call so an unresponsive upstream cannot hang a request forever.
func NewInspector(validator ports.HostValidator, resolvers []ports.Resolver, timeout time.Duration, log zerolog.Logger) ports.Inspector {
	return &inspectorService{
		validator: validator,
		resolvers: resolverMap(resolvers),
		timeout:   timeout,
		log:       log.With().Str("component", "inspector").Logger(),
	}
}

func resolverMap(resolvers []ports.Resolver) map[domain.Platform]ports.Resolver {
	m := make(map[domain.Platform]ports.Resolver, len(resolvers))
	for _, r := range resolvers {
		m[r.Platform()] = r
	}
	return m
}

// resolverFor rejects platforms without a resolver before any network call is
// made, never mid-pipeline.
func resolverFor(resolvers map[domain.Platform]ports.Resolver, p domain.Platform) (ports.Resolver, error) {
	r, ok := resolvers[p]
	if !ok {
		return nil, domain.NewError(domain.ErrUnsupportedHost,
			"This site is not supported. Paste a YouTube, Reddit or X/Twitter link.")
	}
	return r, nil
}

func (s *inspectorService) Inspect(ctx context.Context, rawURL string) (*domain.MediaDescriptor, error) {
	validated, err := s.validator.Validate(rawURL)
	if err != nil {
		return nil, err
	}

	resolver, err := resolverFor(s.resolvers, validated.Platform)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := resolver.Inspect(ctx, validated)
	if err != nil {
		s.log.Warn().Err(err).Str("platform", string(validated.Platform)).Msg("inspection failed")
		return nil, err
	}

	desc := BuildCatalog(raw.Title, validated.Raw, raw.Formats)
	s.log.Info().
		Str("platform", string(validated.Platform)).
		Int("video_formats", len(desc.VideoFormats)).
		Int("audio_formats", len(desc.AudioFormats)).
		Msg("inspected")
	return desc, nil
}
