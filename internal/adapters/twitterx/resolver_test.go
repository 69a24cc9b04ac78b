package twitterx

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swiftgrab/internal/core/domain"
)

func statusURL(t *testing.T) domain.ValidatedURL {
	t.Helper()
	raw := "https://x.com/user/status/1234567890"
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return domain.ValidatedURL{Raw: raw, Parsed: parsed, Platform: domain.PlatformTwitterX}
}

func TestInspectNeverErrors(t *testing.T) {
	r := NewResolver()

	raw, err := r.Inspect(context.Background(), statusURL(t))

	require.NoError(t, err)
	assert.NotEmpty(t, raw.Title)
	// A single descriptive placeholder, never a false download promise.
	require.Len(t, raw.Formats, 1)
	assert.Empty(t, raw.Formats[0].DirectSourceURL)
}

func TestResolveSourceAlwaysFails(t *testing.T) {
	r := NewResolver()

	_, err := r.ResolveSource(context.Background(), statusURL(t), "unsupported", domain.FormatVideo)

	require.Error(t, err)
	assert.Equal(t, domain.ErrCapabilityNotImplemented, domain.KindOf(err))
	msg := domain.UserMessage(err)
	assert.Contains(t, msg, "additional setup")
	assert.Contains(t, msg, "dedicated")
}
