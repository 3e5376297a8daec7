package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// Repository implements salon.Repository using in-memory storage. Intended
// for tests and local development.
type Repository struct {
	mu     sync.RWMutex
	assets map[uuid.UUID]*salon.Asset
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		assets: make(map[uuid.UUID]*salon.Asset),
	}
}

func (r *Repository) CreateAsset(ctx context.Context, asset *salon.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	asset.ID = uuid.New()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	// Store a copy to avoid external modifications
	assetCopy := *asset
	r.assets[asset.ID] = &assetCopy

	return nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, salon.ErrAssetNotFound
	}

	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) GetAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*salon.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*salon.Asset
	for _, id := range ids {
		if asset, exists := r.assets[id]; exists {
			assetCopy := *asset
			result = append(result, &assetCopy)
		}
	}
	return result, nil
}

func (r *Repository) ListAssets(ctx context.Context, params salon.ListAssetsParams) ([]*salon.Asset, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params = params.Normalized()

	var matched []*salon.Asset
	for _, asset := range r.assets {
		if params.Kind != "" && asset.Kind != params.Kind {
			continue
		}
		if params.Category != "" && asset.Category != params.Category {
			continue
		}
		if params.ActiveOnly && !asset.Active {
			continue
		}
		assetCopy := *asset
		matched = append(matched, &assetCopy)
	}

	// Sort by created_at descending
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	offset := (params.Page - 1) * params.Limit
	if offset >= len(matched) {
		return []*salon.Asset{}, total, nil
	}
	matched = matched[offset:]
	if params.Limit < len(matched) {
		matched = matched[:params.Limit]
	}

	return matched, total, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, id uuid.UUID, patch salon.AssetPatch) (*salon.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, salon.ErrAssetNotFound
	}

	patch.Apply(asset)
	asset.UpdatedAt = time.Now().UTC()

	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) DeleteAsset(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, salon.ErrAssetNotFound
	}

	delete(r.assets, id)

	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) DeleteAssets(ctx context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for _, id := range ids {
		if _, exists := r.assets[id]; exists {
			delete(r.assets, id)
			removed++
		}
	}
	return removed, nil
}

func (r *Repository) IncrementLikes(ctx context.Context, id uuid.UUID) (*salon.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, salon.ErrAssetNotFound
	}

	asset.Likes++
	asset.UpdatedAt = time.Now().UTC()

	assetCopy := *asset
	return &assetCopy, nil
}
