package domain

import "context"

// DonationSource fetches raw donation records projected to the fields the
// feature builder reads.
type DonationSource interface {
	FetchDonations(ctx context.Context) ([]Document, error)
}

// ArtifactStore persists model artifacts as immutable versions with a
// movable current pointer per kind.
type ArtifactStore interface {
	Save(ctx context.Context, kind string, v any) (Artifact, error)
	Current(ctx context.Context, kind string) (Artifact, error)
	Load(ctx context.Context, artifact Artifact, v any) error
	Path(artifact Artifact) string
}
