package youtube

import (
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftgrab/internal/core/domain"
)

// fixtureFormats mirrors a typical manifest: one combined mp4 rendition, one
// video-only rendition (not deliverable directly), one audio-only rendition.
func fixtureFormats() youtube.FormatList {
	return youtube.FormatList{
		{
			ItagNo:        22,
			MimeType:      `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
			QualityLabel:  "720p",
			Bitrate:       1_500_000,
			FPS:           30,
			ContentLength: 52_428_800,
			AudioChannels: 2,
		},
		{
			ItagNo:        137,
			MimeType:      `video/mp4; codecs="avc1.640028"`,
			QualityLabel:  "1080p",
			Bitrate:       4_500_000,
			FPS:           30,
			AudioChannels: 0,
		},
		{
			ItagNo:        140,
			MimeType:      `audio/mp4; codecs="mp4a.40.2"`,
			Bitrate:       130_000,
			AudioQuality:  "AUDIO_QUALITY_MEDIUM",
			AudioChannels: 2,
		},
	}
}

func TestMapFormatsBucketsRenditions(t *testing.T) {
	entries := mapFormats(fixtureFormats())

	// The video-only 1080p rendition has no audio track and is dropped.
	require.Len(t, entries, 2)

	video := entries[0]
	assert.Equal(t, domain.FormatVideo, video.Kind)
	assert.Equal(t, "22", video.Itag)
	assert.Equal(t, "720p", video.QualityLabel)
	assert.Equal(t, 30, video.FPS)
	assert.Equal(t, int64(52_428_800), video.SizeApprox)

	audio := entries[1]
	assert.Equal(t, domain.FormatAudio, audio.Kind)
	assert.Equal(t, "140", audio.Itag)
	assert.Equal(t, "AUDIO_QUALITY_MEDIUM", audio.AudioQuality)
	assert.Empty(t, audio.QualityLabel)
}

func TestPickFormatByItag(t *testing.T) {
	r := &resolver{log: zerolog.Nop()}

	got := r.pickFormat(fixtureFormats(), "22", domain.FormatVideo)

	require.NotNil(t, got)
	assert.Equal(t, 22, got.ItagNo)
}

func TestPickFormatIgnoresItagOfWrongKind(t *testing.T) {
	r := &resolver{log: zerolog.Nop()}

	// Asking for audio with a video itag must not hand back a video stream.
	got := r.pickFormat(fixtureFormats(), "22", domain.FormatAudio)

	require.NotNil(t, got)
	assert.Equal(t, 140, got.ItagNo)
}

func TestPickFormatFallsBackWhenItagIsGone(t *testing.T) {
	r := &resolver{log: zerolog.Nop()}

	// A stale itag from an earlier inspection falls back to the best
	// rendition of the requested kind.
	got := r.pickFormat(fixtureFormats(), "18", domain.FormatVideo)

	require.NotNil(t, got)
	assert.Equal(t, 22, got.ItagNo)
}

func TestPickFormatDefaultsToHighestBitrate(t *testing.T) {
	r := &resolver{log: zerolog.Nop()}
	formats := youtube.FormatList{
		{ItagNo: 139, MimeType: "audio/mp4", Bitrate: 50_000, AudioChannels: 2},
		{ItagNo: 141, MimeType: "audio/mp4", Bitrate: 256_000, AudioChannels: 2},
		{ItagNo: 140, MimeType: "audio/mp4", Bitrate: 130_000, AudioChannels: 2},
	}

	got := r.pickFormat(formats, "", domain.FormatAudio)

	require.NotNil(t, got)
	assert.Equal(t, 141, got.ItagNo)
}

func TestPickFormatNilWhenNothingMatches(t *testing.T) {
	r := &resolver{log: zerolog.Nop()}
	formats := youtube.FormatList{
		{ItagNo: 137, MimeType: "video/mp4", Bitrate: 4_500_000, AudioChannels: 0},
	}

	assert.Nil(t, r.pickFormat(formats, "", domain.FormatAudio))
	assert.Nil(t, r.pickFormat(formats, "", domain.FormatVideo))
}

func TestBaseMimeType(t *testing.T) {
	assert.Equal(t, "video/mp4", baseMimeType(`video/mp4; codecs="avc1"`))
	assert.Equal(t, "audio/webm", baseMimeType("audio/webm"))
}
