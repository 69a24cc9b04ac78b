// Package twitterx is the capability stub for X/Twitter. The host is
// allow-listed so inspection can explain the limitation, but extracting X
// video variants needs guest-token auth this server does not bundle, so
// source resolution always fails.
package twitterx

import (
	"context"

	"swiftgrab/internal/core/domain"
	"swiftgrab/internal/core/ports"
)

const setupMessage = "Downloading from X/Twitter requires additional setup. " +
	"This server does not yet ship a dedicated X video extractor."

type resolver struct{}

// NewResolver builds the X/Twitter stub resolver.
func NewResolver() ports.Resolver {
	return &resolver{}
}

func (r *resolver) Platform() domain.Platform { return domain.PlatformTwitterX }

// Inspect returns a synthetic single-entry descriptor describing the
// limitation. It never errors: inspection must not falsely promise a
// download, but it also must not reject an allow-listed link.
func (r *resolver) Inspect(ctx context.Context, u domain.ValidatedURL) (*domain.RawInspection, error) {
	return &domain.RawInspection{
		Title: "X/Twitter post (video download not supported yet)",
		Formats: []domain.FormatEntry{{
			Itag:         "unsupported",
			Kind:         domain.FormatVideo,
			QualityLabel: "Not available",
		}},
	}, nil
}

func (r *resolver) ResolveSource(ctx context.Context, u domain.ValidatedURL, itag string, kind domain.FormatKind) (*domain.DirectSource, error) {
	return nil, domain.NewError(domain.ErrCapabilityNotImplemented, setupMessage)
}
