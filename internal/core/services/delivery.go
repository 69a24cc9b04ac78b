package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

type deliveryService struct {
	validator  ports.HostValidator
	resolvers  map[domain.Platform]ports.Resolver
	transcoder ports.Transcoder
	proxy      *http.Client
	log        zerolog.Logger
}

// NewDelivery wires the download pipeline: validate, re-resolve the direct
// source, then stream, transcode or redirect. Each request owns its stream
// handles and transcoder instance exclusively. Resolution timeouts live in
// the resolvers so they cannot cut off the byte transfer itself.
func NewDelivery(validator ports.HostValidator, resolvers []ports.Resolver, transcoder ports.Transcoder, log zerolog.Logger) ports.Deliverer {
	return &deliveryService{
		validator:  validator,
		resolvers:  resolverMap(resolvers),
		transcoder: transcoder,
		proxy:      &http.Client{},
		log:        log.With().Str("component", "delivery").Logger(),
	}
}

func (s *deliveryService) Deliver(ctx context.Context, req domain.DownloadRequest) (*domain.Delivery, error) {
	if req.Container != domain.ContainerMP4 && req.Container != domain.ContainerMP3 {
		return nil, domain.NewError(domain.ErrInvalidFormat,
			fmt.Sprintf("Unsupported output type %q. Use mp4 or mp3.", string(req.Container)))
	}

	validated, err := s.validator.Validate(req.URL)
	if err != nil {
		return nil, err
	}

	resolver, err := resolverFor(s.resolvers, validated.Platform)
	if err != nil {
		return nil, err
	}

	kind := domain.FormatVideo
	if req.Container == domain.ContainerMP3 {
		kind = domain.FormatAudio
	}

	src, err := resolver.ResolveSource(ctx, validated, req.Itag, kind)
	if err != nil {
		s.log.Warn().Err(err).Str("platform", string(validated.Platform)).Msg("source resolution failed")
		return nil, err
	}

	if src.RedirectURL != "" {
		if !src.ForceProxy {
			return &domain.Delivery{Redirect: src.RedirectURL}, nil
		}
		if err := s.openProxyStream(ctx, src); err != nil {
			return nil, err
		}
	}

	filename := fmt.Sprintf("%s.%s", sanitizeTitle(src.Title), req.Container)

	if req.Container == domain.ContainerMP3 {
		encoded, err := s.transcoder.TranscodeToMP3(ctx, src.Stream)
		if err != nil {
			src.Stream.Close()
			return nil, err
		}
		return &domain.Delivery{
			Body:        newChainCloser(encoded, src.Stream),
			ContentType: "audio/mpeg",
			Filename:    filename,
		}, nil
	}

	contentType := src.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	return &domain.Delivery{
		Body:          src.Stream,
		ContentType:   contentType,
		Filename:      filename,
		ContentLength: src.ContentLength,
	}, nil
}

// openProxyStream fetches a URL source on behalf of the client when the
// upstream blocks hot-linking, turning the redirect into a byte stream.
func (s *deliveryService) openProxyStream(ctx context.Context, src *domain.DirectSource) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.RedirectURL, nil)
	if err != nil {
		return domain.WrapError(domain.ErrUpstreamUnavailable,
			"The media source URL could not be fetched.", err)
	}
	resp, err := s.proxy.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrUpstreamUnavailable,
			"The media source URL could not be fetched.", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return domain.NewError(domain.ErrUpstreamUnavailable,
			fmt.Sprintf("The media source responded with status %d.", resp.StatusCode))
	}
	src.Stream = resp.Body
	src.ContentLength = resp.ContentLength
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		src.ContentType = ct
	}
	src.RedirectURL = ""
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-]+`)

func sanitizeTitle(title string) string {
	safe := unsafeFilenameChars.ReplaceAllString(title, "_")
	if safe == "" || safe == "_" {
		return "media"
	}
	return safe
}

// chainCloser closes the upstream source before the transcoded output, so
// the encoder's stdin feed unblocks before the process is reaped and Close
// cannot stall on a stalled upstream read.
type chainCloser struct {
	io.Reader
	closers []io.Closer
}

func newChainCloser(primary io.ReadCloser, closeFirst ...io.Closer) io.ReadCloser {
	return &chainCloser{Reader: primary, closers: append(closeFirst, primary)}
}

func (c *chainCloser) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
