package services

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"swiftgrab/internal/core/domain"
)

// BuildCatalog normalizes resolver output into the two canonical buckets.
// Resolver-provided entries are never mutated; the descriptor gets its own
// copies.
func BuildCatalog(title, originURL string, raw []domain.FormatEntry) *domain.MediaDescriptor {
	return &domain.MediaDescriptor{
		Title:        title,
		URL:          originURL,
		VideoFormats: buildBucket(raw, domain.FormatVideo),
		AudioFormats: buildBucket(raw, domain.FormatAudio),
	}
}

func buildBucket(raw []domain.FormatEntry, kind domain.FormatKind) []domain.FormatEntry {
	entries := lo.Filter(raw, func(e domain.FormatEntry, _ int) bool {
		return e.Kind == kind
	})

	// Descending by bitrate. Entries without a reported bitrate go last and
	// keep their original relative order; a stable sort avoids corrupting
	// ties between equal bitrates.
	sort.SliceStable(entries, func(i, j int) bool {
		return effectiveBitrate(entries[i]) > effectiveBitrate(entries[j])
	})

	return lo.UniqBy(entries, func(e domain.FormatEntry) string {
		return fmt.Sprintf("%s|%s|%d", e.Kind, e.QualityLabel, e.Bitrate)
	})
}

func effectiveBitrate(e domain.FormatEntry) int {
	if e.Bitrate == 0 {
		return -1
	}
	return e.Bitrate
}
