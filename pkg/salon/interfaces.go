package salon

import (
	"context"

	"github.com/google/uuid"
)

// BlobStore is the durable remote object store the coordinator uploads to.
type BlobStore interface {
	// Put uploads the file at localPath under the given key prefix and
	// returns the stored object's key and public URL. It must not retry
	// internally; retries are caller policy.
	Put(ctx context.Context, localPath, prefix string) (ImageRef, error)

	// Delete removes an object by key. Deleting a missing key is a no-op,
	// never an error.
	Delete(ctx context.Context, key string) error
}

// Repository is the metadata store and the sole owner of Asset records.
// Each record-level operation is atomic at the store.
type Repository interface {
	// CreateAsset persists a new asset, assigning its ID and timestamps.
	CreateAsset(ctx context.Context, asset *Asset) error

	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetAssetsByIDs returns the subset of ids that resolve; missing ids
	// are skipped, not an error.
	GetAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Asset, error)

	// ListAssets returns one page sorted by created_at descending, plus the
	// total match count.
	ListAssets(ctx context.Context, params ListAssetsParams) ([]*Asset, int64, error)

	// UpdateAsset applies a patch in a single atomic write and returns the
	// resulting record, or ErrAssetNotFound.
	UpdateAsset(ctx context.Context, id uuid.UUID, patch AssetPatch) (*Asset, error)

	// DeleteAsset removes a record and returns it as it stood, or
	// ErrAssetNotFound.
	DeleteAsset(ctx context.Context, id uuid.UUID) (*Asset, error)

	// DeleteAssets removes every resolving id in one call and returns the
	// removed count.
	DeleteAssets(ctx context.Context, ids []uuid.UUID) (int64, error)

	// IncrementLikes atomically increments the engagement counter and
	// returns the resulting record, or ErrAssetNotFound. Implementations
	// must not read-then-write.
	IncrementLikes(ctx context.Context, id uuid.UUID) (*Asset, error)
}

// EventSink receives lifecycle events. The coordinator fires each event
// strictly after the corresponding metadata commit; sink failures are
// logged, never propagated.
type EventSink interface {
	AssetCreated(ctx context.Context, asset *Asset) error
	AssetUpdated(ctx context.Context, asset *Asset) error
	AssetDeleted(ctx context.Context, id uuid.UUID) error
}
