package services

import (
	"net/url"
	"strings"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

// hostValidator classifies raw URLs against the allow-list. It is a pure
// component: no network calls, deterministic, side-effect free.
type hostValidator struct {
	allowed map[domain.Platform][]string
}

// NewHostValidator builds a validator over an immutable allow-list of
// hostnames per platform.
func NewHostValidator(allowed map[domain.Platform][]string) ports.HostValidator {
	return &hostValidator{allowed: allowed}
}

func (v *hostValidator) Validate(rawURL string) (domain.ValidatedURL, error) {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return domain.ValidatedURL{}, domain.NewError(domain.ErrInvalidFormat, "Invalid URL format.")
	}

	host := strings.ToLower(u.Hostname())
	platform, ok := v.classify(host)
	if !ok {
		return domain.ValidatedURL{}, domain.NewError(domain.ErrUnsupportedHost,
			"This site is not supported. Paste a YouTube, Reddit or X/Twitter link.")
	}

	if err := checkPathShape(platform, u); err != nil {
		return domain.ValidatedURL{}, err
	}

	return domain.ValidatedURL{Raw: rawURL, Parsed: u, Platform: platform}, nil
}

func (v *hostValidator) classify(host string) (domain.Platform, bool) {
	for platform, hosts := range v.allowed {
		for _, h := range hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform, true
			}
		}
	}
	return "", false
}

// checkPathShape verifies the URL points at an actual media page, not just a
// supported hostname. The distinction lets the caller say "that looks like a
// Reddit link but not a post" instead of a generic rejection.
func checkPathShape(platform domain.Platform, u *url.URL) error {
	switch platform {
	case domain.PlatformYouTube:
		if !validYouTubePath(u) {
			return domain.NewError(domain.ErrInvalidPlatformPath, "Invalid YouTube URL.")
		}
	case domain.PlatformReddit:
		if !hasPathSegment(u, "comments") {
			return domain.NewError(domain.ErrInvalidPlatformPath,
				"This does not look like a Reddit post link.")
		}
	case domain.PlatformTwitterX:
		if !hasPathSegment(u, "status") {
			return domain.NewError(domain.ErrInvalidPlatformPath,
				"This does not look like an X/Twitter post link.")
		}
	}
	return nil
}

func validYouTubePath(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		return len(strings.Trim(u.Path, "/")) > 0
	}
	switch {
	case u.Path == "/watch":
		return u.Query().Get("v") != ""
	case hasPathSegment(u, "shorts"), hasPathSegment(u, "live"), hasPathSegment(u, "embed"):
		return len(pathSegments(u)) >= 2
	}
	return false
}

func hasPathSegment(u *url.URL, segment string) bool {
	for _, s := range pathSegments(u) {
		if s == segment {
			return true
		}
	}
	return false
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
