package salon

import (
	"context"

	"github.com/google/uuid"
)

// Service is the asset lifecycle coordinator.
//
// Workflows are request-scoped and run to completion once started; callers
// disconnecting mid-flight do not abort compensation or cleanup. The
// coordinator does not serialize two concurrent mutations of the same id: a
// second writer can win over a first without detecting the conflict. That is
// a documented property of the store-level atomicity model, not a hidden
// race.
type Service interface {
	// CreateAsset uploads the staged file (required for gallery assets),
	// persists the record and publishes asset:created. On a metadata
	// failure the just-uploaded object is deleted before the error is
	// surfaced. The staging file is released on every exit path.
	CreateAsset(ctx context.Context, req CreateAssetRequest, file *StagingFile) (*Asset, error)

	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListAssets(ctx context.Context, params ListAssetsParams) (*AssetPage, error)

	// UpdateAsset applies a patch, replacing the primary image when a
	// staged file is provided. The new object is uploaded before any
	// metadata mutation and discarded if the metadata write fails; the
	// superseded object is deleted best-effort only after the write
	// commits.
	UpdateAsset(ctx context.Context, id uuid.UUID, patch AssetPatch, file *StagingFile) (*Asset, error)

	// DeleteAsset removes the metadata record (the durability boundary),
	// publishes asset:deleted, then deletes the referenced objects
	// best-effort.
	DeleteAsset(ctx context.Context, id uuid.UUID) error

	// BulkDeleteAssets removes every resolving id in one store call and
	// returns the removed count; missing ids are silently excluded.
	BulkDeleteAssets(ctx context.Context, ids []uuid.UUID) (int64, error)

	// IncrementLikes bumps the engagement counter atomically at the store
	// and publishes asset:updated.
	IncrementLikes(ctx context.Context, id uuid.UUID) (*Asset, error)
}
