package salon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Storage key prefixes per asset kind.
const (
	galleryPrefix = "salon-gallery"
	servicePrefix = "salon-services"
)

func storagePrefix(kind Kind) string {
	if kind == KindService {
		return servicePrefix
	}
	return galleryPrefix
}

// service implements the Service interface.
type service struct {
	repository  Repository
	blobStore   BlobStore
	eventSink   EventSink
	logger      *slog.Logger
	callTimeout time.Duration
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithRepository sets the metadata store for the service.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object store for the service.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service.
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for best-effort failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithCallTimeout bounds each individual store call. A timed-out call is
// treated like any other failure of that call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *service) {
		s.callTimeout = d
	}
}

// New creates a new service instance with the given options.
func New(options ...Option) (Service, error) {
	s := &service{
		callTimeout: 30 * time.Second,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// boundCtx applies the per-call timeout.
func (s *service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}

// cleanupCtx is used for compensation and best-effort steps. It is detached
// from the caller's cancellation so a disconnected caller cannot leave an
// orphaned object behind, but still bounded by the call timeout.
func (s *service) cleanupCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
}

// putObject uploads a staged file on the required path.
func (s *service) putObject(ctx context.Context, localPath, prefix string) (ImageRef, error) {
	bctx, cancel := s.boundCtx(ctx)
	defer cancel()

	ref, err := s.blobStore.Put(bctx, localPath, prefix)
	if err != nil {
		return ImageRef{}, &StorageError{Key: prefix, Op: "put", Err: err}
	}
	return ref, nil
}

// discardObject deletes a stored object outside the required path. Failures
// are logged, never surfaced, and never revert committed metadata.
func (s *service) discardObject(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	cctx, cancel := s.cleanupCtx(ctx)
	defer cancel()

	if err := s.blobStore.Delete(cctx, key); err != nil {
		s.logger.Error("best-effort object delete failed",
			"key", key, "reason", reason, "error", err)
	}
}

func (s *service) publishCreated(ctx context.Context, asset *Asset) {
	if err := s.eventSink.AssetCreated(ctx, asset); err != nil {
		s.logger.Error("failed to publish asset:created", "asset_id", asset.ID, "error", err)
	}
}

func (s *service) publishUpdated(ctx context.Context, asset *Asset) {
	if err := s.eventSink.AssetUpdated(ctx, asset); err != nil {
		s.logger.Error("failed to publish asset:updated", "asset_id", asset.ID, "error", err)
	}
}

func (s *service) publishDeleted(ctx context.Context, id uuid.UUID) {
	if err := s.eventSink.AssetDeleted(ctx, id); err != nil {
		s.logger.Error("failed to publish asset:deleted", "asset_id", id, "error", err)
	}
}

func (s *service) CreateAsset(ctx context.Context, req CreateAssetRequest, file *StagingFile) (*Asset, error) {
	// The staging file is released on every exit path, including
	// validation failures below.
	defer file.Release()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Kind == KindGallery && file == nil {
		return nil, ErrImageRequired
	}

	var image ImageRef
	if file != nil {
		var err error
		image, err = s.putObject(ctx, file.Path, storagePrefix(req.Kind))
		if err != nil {
			return nil, err
		}
	}

	asset := &Asset{
		Kind:        req.Kind,
		Title:       strings.TrimSpace(req.Title),
		Category:    NormalizeCategory(string(req.Category)),
		Description: req.Description,
		Image:       image,
		Likes:       req.Likes,
		Active:      true,
	}
	if req.Active != nil {
		asset.Active = *req.Active
	}

	bctx, cancel := s.boundCtx(ctx)
	defer cancel()
	if err := s.repository.CreateAsset(bctx, asset); err != nil {
		// The record never existed; take the uploaded object back out.
		s.discardObject(ctx, image.Key, "create compensation")
		return nil, &AssetError{AssetID: asset.ID, Op: "create", Err: err}
	}

	file.Release()
	s.publishCreated(ctx, asset)
	return asset, nil
}

func (s *service) GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error) {
	bctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return s.repository.GetAsset(bctx, id)
}

func (s *service) ListAssets(ctx context.Context, params ListAssetsParams) (*AssetPage, error) {
	params = params.Normalized()

	bctx, cancel := s.boundCtx(ctx)
	defer cancel()
	items, total, err := s.repository.ListAssets(bctx, params)
	if err != nil {
		return nil, &AssetError{Op: "list", Err: err}
	}

	pages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return &AssetPage{
		Items: items,
		Total: total,
		Page:  params.Page,
		Pages: pages,
	}, nil
}

func (s *service) UpdateAsset(ctx context.Context, id uuid.UUID, patch AssetPatch, file *StagingFile) (*Asset, error) {
	defer file.Release()

	existing, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return nil, ErrTitleTooLong
		}
	}
	if patch.Description != nil && utf8.RuneCountInString(*patch.Description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	if patch.Category != nil && !NormalizeCategory(string(*patch.Category)).ValidFor(existing.Kind) {
		return nil, ErrInvalidCategory
	}

	// Replacement image goes up before any metadata mutation, so a failed
	// upload leaves the record and its current image untouched.
	var newImage ImageRef
	if file != nil {
		newImage, err = s.putObject(ctx, file.Path, storagePrefix(existing.Kind))
		if err != nil {
			return nil, err
		}
		patch.Image = &newImage
	}

	bctx, cancel := s.boundCtx(ctx)
	defer cancel()
	updated, err := s.repository.UpdateAsset(bctx, id, patch)
	if err != nil {
		// The new object was never accepted; the old record still points at
		// the old image.
		s.discardObject(ctx, newImage.Key, "update compensation")
		if errors.Is(err, ErrAssetNotFound) {
			return nil, err
		}
		return nil, &AssetError{AssetID: id, Op: "update", Err: err}
	}

	file.Release()

	// The metadata write committed; the superseded object is now garbage.
	// Its deletion never gates or reverts the update.
	if !newImage.IsZero() && existing.Image.Key != "" && existing.Image.Key != newImage.Key {
		s.discardObject(ctx, existing.Image.Key, "superseded image")
	}

	s.publishUpdated(ctx, updated)
	return updated, nil
}

func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	bctx, cancel := s.boundCtx(ctx)
	defer cancel()

	// Metadata removal is the durability boundary: once it commits the
	// asset is gone even if every object delete below fails.
	removed, err := s.repository.DeleteAsset(bctx, id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return err
		}
		return &AssetError{AssetID: id, Op: "delete", Err: err}
	}

	s.publishDeleted(ctx, id)

	for _, key := range removed.ImageKeys() {
		s.discardObject(ctx, key, "delete cleanup")
	}
	return nil
}

func (s *service) BulkDeleteAssets(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	bctx, cancel := s.boundCtx(ctx)
	existing, err := s.repository.GetAssetsByIDs(bctx, ids)
	cancel()
	if err != nil {
		return 0, &AssetError{Op: "bulk_delete", Err: err}
	}
	if len(existing) == 0 {
		return 0, nil
	}

	resolved := make([]uuid.UUID, 0, len(existing))
	for _, a := range existing {
		resolved = append(resolved, a.ID)
	}

	bctx, cancel = s.boundCtx(ctx)
	removed, err := s.repository.DeleteAssets(bctx, resolved)
	cancel()
	if err != nil {
		return 0, &AssetError{Op: "bulk_delete", Err: err}
	}

	// Object deletions are mutually independent and all best-effort; issue
	// them together and wait for the whole batch.
	var wg sync.WaitGroup
	for _, a := range existing {
		for _, key := range a.ImageKeys() {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				s.discardObject(ctx, key, "bulk delete cleanup")
			}(key)
		}
	}
	wg.Wait()

	for _, a := range existing {
		s.publishDeleted(ctx, a.ID)
	}
	return removed, nil
}

func (s *service) IncrementLikes(ctx context.Context, id uuid.UUID) (*Asset, error) {
	bctx, cancel := s.boundCtx(ctx)
	defer cancel()

	asset, err := s.repository.IncrementLikes(bctx, id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return nil, err
		}
		return nil, &AssetError{AssetID: id, Op: "increment_likes", Err: err}
	}

	s.publishUpdated(ctx, asset)
	return asset, nil
}
