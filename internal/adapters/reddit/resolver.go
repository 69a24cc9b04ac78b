// Package reddit resolves Reddit post URLs by scraping the public JSON
// representation of the post page. Reddit serves a DASH fallback URL for
// hosted videos; that URL is handed back directly instead of proxying bytes.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

const (
	noVideoMessage = "Could not find video in this Reddit post. It may be deleted, private, or not a video post."
	userAgent      = "swiftgrab/1.0 (media inspection)"
	fallbackItag   = "reddit-fallback"
)

type resolver struct {
	client *http.Client
	log    zerolog.Logger
}

// NewResolver builds the scraping resolver. timeout bounds the whole JSON
// fetch; there is no byte streaming on this path.
func NewResolver(timeout time.Duration, log zerolog.Logger) ports.Resolver {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	return &resolver{
		client: &http.Client{Timeout: timeout, Transport: transport},
		log:    log.With().Str("resolver", "reddit").Logger(),
	}
}

func (r *resolver) Platform() domain.Platform { return domain.PlatformReddit }

// post JSON shape: a two-element listing, first element holds the post.
// Only the fields on the video path are declared.
type postListing []struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	Title       string      `json:"title"`
	SecureMedia *mediaBlock `json:"secure_media"`
	Media       *mediaBlock `json:"media"`
}

type mediaBlock struct {
	RedditVideo *redditVideo `json:"reddit_video"`
}

type redditVideo struct {
	FallbackURL string `json:"fallback_url"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	BitrateKbps int    `json:"bitrate_kbps"`
	IsGif       bool   `json:"is_gif"`
}

func (r *resolver) Inspect(ctx context.Context, u domain.ValidatedURL) (*domain.RawInspection, error) {
	title, video, err := r.fetchPost(ctx, u)
	if err != nil {
		return nil, err
	}
	return &domain.RawInspection{
		Title:   title,
		Formats: []domain.FormatEntry{formatEntry(video)},
	}, nil
}

// ResolveSource re-fetches the post JSON rather than trusting an inspection
// that may be minutes old. The fallback URL is short-term stable, so the
// delivery pipeline redirects to it instead of relaying the bytes. Audio
// extraction would need the bytes in hand, so it is refused up front rather
// than silently redirecting to an mp4.
func (r *resolver) ResolveSource(ctx context.Context, u domain.ValidatedURL, itag string, kind domain.FormatKind) (*domain.DirectSource, error) {
	if kind == domain.FormatAudio {
		return nil, domain.NewError(domain.ErrCapabilityNotImplemented,
			"Reddit videos can only be downloaded as mp4. MP3 extraction is not available for Reddit posts.")
	}

	title, video, err := r.fetchPost(ctx, u)
	if err != nil {
		return nil, err
	}
	return &domain.DirectSource{
		Title:       title,
		RedirectURL: stripTracking(video.FallbackURL),
	}, nil
}

func (r *resolver) fetchPost(ctx context.Context, u domain.ValidatedURL) (string, *redditVideo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL(u.Parsed), nil)
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrUpstreamUnavailable,
			"Reddit could not be reached.", err)
	}
	// Reddit rejects the default Go user agent with 429s.
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", nil, domain.WrapError(domain.ErrUpstreamUnavailable,
			"Reddit could not be reached.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil, domain.NewError(domain.ErrNoVideoFound, noVideoMessage)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, domain.NewError(domain.ErrUpstreamUnavailable,
			fmt.Sprintf("Reddit responded with status %d for this post.", resp.StatusCode))
	}

	var listing postListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return "", nil, domain.WrapError(domain.ErrUpstreamUnavailable,
			"Reddit returned an unexpected response for this post.", err)
	}

	if len(listing) == 0 || len(listing[0].Data.Children) == 0 {
		return "", nil, domain.NewError(domain.ErrNoVideoFound, noVideoMessage)
	}

	post := listing[0].Data.Children[0].Data
	video := redditVideoOf(post)
	if video == nil || video.FallbackURL == "" {
		return "", nil, domain.NewError(domain.ErrNoVideoFound, noVideoMessage)
	}
	return post.Title, video, nil
}

func redditVideoOf(post postData) *redditVideo {
	if post.SecureMedia != nil && post.SecureMedia.RedditVideo != nil {
		return post.SecureMedia.RedditVideo
	}
	if post.Media != nil && post.Media.RedditVideo != nil {
		return post.Media.RedditVideo
	}
	return nil
}

func formatEntry(video *redditVideo) domain.FormatEntry {
	entry := domain.FormatEntry{
		Itag:            fallbackItag,
		Kind:            domain.FormatVideo,
		Bitrate:         video.BitrateKbps * 1000,
		DirectSourceURL: stripTracking(video.FallbackURL),
	}
	if video.Height > 0 {
		entry.QualityLabel = fmt.Sprintf("%dp", video.Height)
	}
	return entry
}

// jsonURL maps a post page URL onto its JSON representation, dropping query
// and fragment noise.
func jsonURL(u *url.URL) string {
	clean := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   strings.TrimSuffix(u.Path, "/") + ".json",
	}
	return clean.String()
}

// stripTracking removes the query parameters Reddit appends to fallback URLs.
func stripTracking(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
