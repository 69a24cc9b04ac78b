package domain

import (
	"io"
	"net/url"
)

// Platform identifies a supported source site. Classified once from the URL
// hostname and never changed afterwards.
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformReddit   Platform = "reddit"
	PlatformTwitterX Platform = "twitterx"
)

// ValidatedURL is a raw URL that passed the host validator, together with its
// parsed form and the platform it was classified as.
type ValidatedURL struct {
	Raw      string
	Parsed   *url.URL
	Platform Platform
}

// FormatKind separates the two selectable buckets.
type FormatKind string

const (
	FormatVideo FormatKind = "video"
	FormatAudio FormatKind = "audio"
)

// FormatEntry is one selectable rendition of a media item. The itag is only
// stable within a single inspection response. A zero Bitrate means the
// upstream did not report one, not 0 bytes/sec.
type FormatEntry struct {
	Itag         string     `json:"itag"`
	Kind         FormatKind `json:"-"`
	QualityLabel string     `json:"qualityLabel,omitempty"`
	Bitrate      int        `json:"bitrate,omitempty"`
	FPS          int        `json:"fps,omitempty"`
	SizeApprox   int64      `json:"sizeApprox,omitempty"`
	AudioQuality string     `json:"audioQuality,omitempty"`

	// DirectSourceURL is set when the resolver can hand back an already
	// direct media URL (Reddit fallback streams). Never serialized.
	DirectSourceURL string `json:"-"`
}

// RawInspection is what a resolver produces before the catalog builder
// sorts, dedupes and buckets the formats.
type RawInspection struct {
	Title   string
	Formats []FormatEntry
}

// MediaDescriptor is the normalized inspection result returned to the client.
// Both buckets are ordered descending by bitrate.
type MediaDescriptor struct {
	Title        string        `json:"title"`
	URL          string        `json:"url"`
	VideoFormats []FormatEntry `json:"videoFormats"`
	AudioFormats []FormatEntry `json:"audioFormats"`
}

// Container is the requested output container for a download.
type Container string

const (
	ContainerMP4 Container = "mp4"
	ContainerMP3 Container = "mp3"
)

// DownloadRequest asks for one rendition of a previously inspected URL.
// Itag is a best-effort binding: the upstream manifest may have rotated since
// the inspection that produced it.
type DownloadRequest struct {
	URL       string
	Container Container
	Itag      string
}

// DirectSource is the resolved media origin for one download. Exactly one of
// Stream and RedirectURL is set. A resolver sets ForceProxy on a URL source
// when the upstream blocks hot-linking and the bytes must be relayed.
type DirectSource struct {
	Title string

	Stream        io.ReadCloser
	ContentLength int64
	ContentType   string

	RedirectURL string
	ForceProxy  bool
}

// Delivery is a started response: either a redirect to a direct media URL or
// a byte stream with its attachment metadata. ContentLength is 0 when the
// final size is unknown (transcoded output).
type Delivery struct {
	Redirect string

	Body          io.ReadCloser
	ContentType   string
	Filename      string
	ContentLength int64
}
