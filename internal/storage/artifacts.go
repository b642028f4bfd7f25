package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Shree2124/NGOStream/internal/domain"
)

const currentPointer = "CURRENT"

// ArtifactStore versions serialized models on top of a FileStore. Every Save
// writes a new immutable "<kind>/<version>.json" blob and then moves the
// "<kind>/CURRENT" pointer to it.
type ArtifactStore struct {
	files *FileStore
	now   func() time.Time
}

// NewArtifactStore opens an artifact store rooted at basePath.
func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	files, err := NewFileStore(basePath)
	if err != nil {
		return nil, err
	}
	return &ArtifactStore{files: files, now: time.Now}, nil
}

// Save serializes v as a new version of kind and marks it current.
func (s *ArtifactStore) Save(ctx context.Context, kind string, v any) (domain.Artifact, error) {
	if err := validateKind(kind); err != nil {
		return domain.Artifact{}, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("storage: encode %s artifact: %w", kind, err)
	}

	created := s.now().UTC()
	sum := sha256.Sum256(data)
	version := created.Format("20060102T150405.000000000Z") + "-" + hex.EncodeToString(sum[:])[:12]
	artifact := domain.Artifact{
		Kind:      kind,
		Version:   version,
		Key:       path.Join(kind, version+".json"),
		CreatedAt: created,
	}

	if _, err := s.files.Write(ctx, artifact.Key, data); err != nil {
		return domain.Artifact{}, err
	}
	pointer, err := json.Marshal(artifact)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("storage: encode pointer: %w", err)
	}
	if _, err := s.files.Write(ctx, path.Join(kind, currentPointer), pointer); err != nil {
		return domain.Artifact{}, err
	}
	return artifact, nil
}

// Current returns the artifact the kind's pointer references. A kind that
// was never saved yields an error wrapping domain.ErrNotFound.
func (s *ArtifactStore) Current(ctx context.Context, kind string) (domain.Artifact, error) {
	if err := validateKind(kind); err != nil {
		return domain.Artifact{}, err
	}
	data, err := s.files.Read(ctx, path.Join(kind, currentPointer))
	if err != nil {
		return domain.Artifact{}, err
	}
	var artifact domain.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return domain.Artifact{}, fmt.Errorf("storage: decode %s pointer: %w", kind, err)
	}
	if artifact.Key == "" || artifact.Version == "" {
		return domain.Artifact{}, fmt.Errorf("storage: %s pointer is empty: %w", kind, domain.ErrNotFound)
	}
	return artifact, nil
}

// Load decodes the artifact's blob into v.
func (s *ArtifactStore) Load(ctx context.Context, artifact domain.Artifact, v any) error {
	data, err := s.files.Read(ctx, artifact.Key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s artifact %s: %w", artifact.Kind, artifact.Version, err)
	}
	return nil
}

// Path returns the on-disk location of the artifact's blob.
func (s *ArtifactStore) Path(artifact domain.Artifact) string {
	return s.files.Path(artifact.Key)
}

func validateKind(kind string) error {
	if kind == "" || strings.ContainsAny(kind, `/\.`) {
		return errors.New("storage: invalid artifact kind")
	}
	return nil
}

var _ domain.ArtifactStore = (*ArtifactStore)(nil)
