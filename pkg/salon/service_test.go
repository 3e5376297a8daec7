package salon_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngabo-dev/salon-backend/pkg/salon"
	memoryrepo "github.com/ngabo-dev/salon-backend/pkg/salon/repo/memory"
	memorystorage "github.com/ngabo-dev/salon-backend/pkg/salon/storage/memory"
)

// recordingSink captures published events in order.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) record(ev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) AssetCreated(ctx context.Context, asset *salon.Asset) error {
	s.record("created:" + asset.ID.String())
	return nil
}

func (s *recordingSink) AssetUpdated(ctx context.Context, asset *salon.Asset) error {
	s.record("updated:" + asset.ID.String())
	return nil
}

func (s *recordingSink) AssetDeleted(ctx context.Context, id uuid.UUID) error {
	s.record("deleted:" + id.String())
	return nil
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

// failingRepo wraps a real repository and fails selected methods.
type failingRepo struct {
	salon.Repository
	failCreate bool
	failUpdate bool
}

var errStoreDown = errors.New("metadata store unavailable")

func (r *failingRepo) CreateAsset(ctx context.Context, asset *salon.Asset) error {
	if r.failCreate {
		return errStoreDown
	}
	return r.Repository.CreateAsset(ctx, asset)
}

func (r *failingRepo) UpdateAsset(ctx context.Context, id uuid.UUID, patch salon.AssetPatch) (*salon.Asset, error) {
	if r.failUpdate {
		return nil, errStoreDown
	}
	return r.Repository.UpdateAsset(ctx, id, patch)
}

// failingBlobStore wraps a real store and fails selected methods.
type failingBlobStore struct {
	salon.BlobStore
	failPut    bool
	failDelete bool
}

var errBlobDown = errors.New("object store unavailable")

func (s *failingBlobStore) Put(ctx context.Context, localPath, prefix string) (salon.ImageRef, error) {
	if s.failPut {
		return salon.ImageRef{}, errBlobDown
	}
	return s.BlobStore.Put(ctx, localPath, prefix)
}

func (s *failingBlobStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errBlobDown
	}
	return s.BlobStore.Delete(ctx, key)
}

type fixture struct {
	svc   salon.Service
	repo  *failingRepo
	blobs *memorystorage.Store
	store *failingBlobStore
	sink  *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:  &failingRepo{Repository: memoryrepo.New()},
		blobs: memorystorage.New(),
		sink:  &recordingSink{},
	}
	f.store = &failingBlobStore{BlobStore: f.blobs}

	svc, err := salon.New(
		salon.WithRepository(f.repo),
		salon.WithBlobStore(f.store),
		salon.WithEventSink(f.sink),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func stage(t *testing.T, content string) *salon.StagingFile {
	t.Helper()
	file, err := salon.NewStagingFile(t.TempDir(), bytes.NewReader([]byte(content)), "photo.jpg")
	require.NoError(t, err)
	return file
}

func createGalleryAsset(t *testing.T, f *fixture) *salon.Asset {
	t.Helper()
	asset, err := f.svc.CreateAsset(context.Background(), salon.CreateAssetRequest{
		Kind:     salon.KindGallery,
		Title:    "Fresh fade",
		Category: salon.CategoryHair,
	}, stage(t, "image-bytes"))
	require.NoError(t, err)
	return asset
}

func TestCreateAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("success uploads image then commits then publishes", func(t *testing.T) {
		f := newFixture(t)

		asset, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:        salon.KindGallery,
			Title:       "  Bridal updo  ",
			Category:    salon.Category("BRIDAL"),
			Description: "Full bridal styling",
		}, stage(t, "image-bytes"))
		require.NoError(t, err)

		assert.Equal(t, "Bridal updo", asset.Title)
		assert.Equal(t, salon.CategoryBridal, asset.Category)
		assert.True(t, asset.Active)
		assert.NotEmpty(t, asset.Image.Key)
		assert.NotEmpty(t, asset.Image.URL)
		assert.True(t, f.blobs.Has(asset.Image.Key))

		stored, err := f.svc.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, asset.Image.Key, stored.Image.Key)

		assert.Equal(t, []string{"created:" + asset.ID.String()}, f.sink.Events())
	})

	t.Run("invalid category uploads nothing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindGallery,
			Title:    "Nail art",
			Category: salon.CategoryNails, // not valid for gallery
		}, stage(t, "image-bytes"))
		require.ErrorIs(t, err, salon.ErrInvalidCategory)

		assert.Equal(t, 0, f.blobs.Len())
		assert.Empty(t, f.sink.Events())
	})

	t.Run("gallery without image is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindGallery,
			Title:    "No photo",
			Category: salon.CategoryHair,
		}, nil)
		require.ErrorIs(t, err, salon.ErrImageRequired)
	})

	t.Run("service entry without image is allowed", func(t *testing.T) {
		f := newFixture(t)

		asset, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindService,
			Title:    "Kids haircut",
			Category: salon.CategoryKids,
		}, nil)
		require.NoError(t, err)
		assert.True(t, asset.Image.IsZero())
	})

	t.Run("failed metadata commit removes the uploaded object", func(t *testing.T) {
		f := newFixture(t)
		f.repo.failCreate = true

		_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindGallery,
			Title:    "Doomed",
			Category: salon.CategoryHair,
		}, stage(t, "image-bytes"))
		require.Error(t, err)

		var assetErr *salon.AssetError
		require.ErrorAs(t, err, &assetErr)
		assert.Equal(t, "create", assetErr.Op)

		assert.Equal(t, 0, f.blobs.Len(), "compensation should remove the object")
		assert.Empty(t, f.sink.Events())
	})

	t.Run("failed upload surfaces a storage error", func(t *testing.T) {
		f := newFixture(t)
		f.store.failPut = true

		_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindGallery,
			Title:    "Doomed",
			Category: salon.CategoryHair,
		}, stage(t, "image-bytes"))

		var storageErr *salon.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Empty(t, f.sink.Events())
	})
}

func TestUpdateAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("replacement image discards the superseded object", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)
		oldKey := asset.Image.Key

		title := "Sharper fade"
		updated, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &title}, stage(t, "new-image"))
		require.NoError(t, err)

		assert.Equal(t, "Sharper fade", updated.Title)
		assert.NotEqual(t, oldKey, updated.Image.Key)
		assert.True(t, f.blobs.Has(updated.Image.Key))
		assert.False(t, f.blobs.Has(oldKey), "old object should be discarded after commit")
	})

	t.Run("failed metadata write keeps old image and removes new object", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)
		f.repo.failUpdate = true

		title := "Never lands"
		_, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &title}, stage(t, "new-image"))
		require.Error(t, err)

		// Only the original object remains.
		assert.Equal(t, 1, f.blobs.Len())
		assert.True(t, f.blobs.Has(asset.Image.Key))

		current, err := f.svc.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fresh fade", current.Title)
	})

	t.Run("failed cleanup of superseded object never reverts the commit", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)
		oldKey := asset.Image.Key
		f.store.failDelete = true

		title := "Committed anyway"
		updated, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &title}, stage(t, "new-image"))
		require.NoError(t, err)

		assert.Equal(t, "Committed anyway", updated.Title)
		assert.NotEqual(t, oldKey, updated.Image.Key)

		// The committed record keeps pointing at the new image even though
		// the old object could not be removed.
		current, err := f.svc.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Image.Key, current.Image.Key)
		assert.True(t, f.blobs.Has(oldKey), "old object stays behind as an orphan")

		assert.Contains(t, f.sink.Events(), "updated:"+asset.ID.String())
	})

	t.Run("absent fields are untouched, present empty description clears", func(t *testing.T) {
		f := newFixture(t)
		asset, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:        salon.KindService,
			Title:       "Spa day",
			Category:    salon.CategorySpa,
			Description: "Relaxing treatment",
		}, nil)
		require.NoError(t, err)

		empty := ""
		updated, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Description: &empty}, nil)
		require.NoError(t, err)

		assert.Equal(t, "Spa day", updated.Title)
		assert.Empty(t, updated.Description)
	})

	t.Run("empty title patch is rejected", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)

		blank := "   "
		_, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &blank}, nil)
		require.ErrorIs(t, err, salon.ErrTitleRequired)
	})

	t.Run("title bound counts characters, not bytes", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)

		within := strings.Repeat("é", 100)
		updated, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &within}, nil)
		require.NoError(t, err)
		assert.Equal(t, within, updated.Title)

		over := strings.Repeat("é", 101)
		_, err = f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Title: &over}, nil)
		require.ErrorIs(t, err, salon.ErrTitleTooLong)
	})

	t.Run("category invalid for the asset kind is rejected", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)

		nails := salon.CategoryNails
		_, err := f.svc.UpdateAsset(ctx, asset.ID, salon.AssetPatch{Category: &nails}, nil)
		require.ErrorIs(t, err, salon.ErrInvalidCategory)
	})

	t.Run("unknown asset", func(t *testing.T) {
		f := newFixture(t)

		title := "ghost"
		_, err := f.svc.UpdateAsset(ctx, uuid.New(), salon.AssetPatch{Title: &title}, nil)
		require.ErrorIs(t, err, salon.ErrAssetNotFound)
	})
}

func TestDeleteAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record then object", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)

		require.NoError(t, f.svc.DeleteAsset(ctx, asset.ID))

		_, err := f.svc.GetAsset(ctx, asset.ID)
		require.ErrorIs(t, err, salon.ErrAssetNotFound)
		assert.False(t, f.blobs.Has(asset.Image.Key))
		assert.Contains(t, f.sink.Events(), "deleted:"+asset.ID.String())
	})

	t.Run("succeeds even when object delete fails", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)
		f.store.failDelete = true

		require.NoError(t, f.svc.DeleteAsset(ctx, asset.ID))

		_, err := f.svc.GetAsset(ctx, asset.ID)
		require.ErrorIs(t, err, salon.ErrAssetNotFound)
		// The orphaned object stays behind; the delete still reported success.
		assert.True(t, f.blobs.Has(asset.Image.Key))
	})

	t.Run("unknown asset", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.DeleteAsset(ctx, uuid.New())
		require.ErrorIs(t, err, salon.ErrAssetNotFound)
	})
}

func TestBulkDeleteAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown ids are skipped, count reflects real removals", func(t *testing.T) {
		f := newFixture(t)
		a := createGalleryAsset(t, f)
		b := createGalleryAsset(t, f)

		removed, err := f.svc.BulkDeleteAssets(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		assert.Equal(t, 0, f.blobs.Len())
		events := f.sink.Events()
		assert.Contains(t, events, "deleted:"+a.ID.String())
		assert.Contains(t, events, "deleted:"+b.ID.String())
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		f := newFixture(t)
		removed, err := f.svc.BulkDeleteAssets(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		f := newFixture(t)
		removed, err := f.svc.BulkDeleteAssets(ctx, []uuid.UUID{uuid.New(), uuid.New()})
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.Empty(t, f.sink.Events())
	})
}

func TestListAssets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
			Kind:     salon.KindService,
			Title:    fmt.Sprintf("Service %d", i),
			Category: salon.CategoryNails,
		}, nil)
		require.NoError(t, err)
	}
	inactive := false
	_, err := f.svc.CreateAsset(ctx, salon.CreateAssetRequest{
		Kind:     salon.KindService,
		Title:    "Retired service",
		Category: salon.CategoryNails,
		Active:   &inactive,
	}, nil)
	require.NoError(t, err)

	t.Run("active only with pagination", func(t *testing.T) {
		page, err := f.svc.ListAssets(ctx, salon.ListAssetsParams{
			Kind:       salon.KindService,
			ActiveOnly: true,
			Page:       1,
			Limit:      2,
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.Pages)
	})

	t.Run("inactive included", func(t *testing.T) {
		page, err := f.svc.ListAssets(ctx, salon.ListAssetsParams{Kind: salon.KindService})
		require.NoError(t, err)
		assert.Len(t, page.Items, 6)
	})

	t.Run("category filter", func(t *testing.T) {
		page, err := f.svc.ListAssets(ctx, salon.ListAssetsParams{
			Kind:     salon.KindService,
			Category: salon.CategoryHair,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.Total)
	})
}

func TestIncrementLikes(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent increments all land", func(t *testing.T) {
		f := newFixture(t)
		asset := createGalleryAsset(t, f)

		const n = 25
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.IncrementLikes(ctx, asset.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		current, err := f.svc.GetAsset(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(n), current.Likes)
	})

	t.Run("unknown asset", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.IncrementLikes(ctx, uuid.New())
		require.ErrorIs(t, err, salon.ErrAssetNotFound)
	})
}

func TestNew(t *testing.T) {
	t.Run("requires a repository", func(t *testing.T) {
		_, err := salon.New(salon.WithBlobStore(memorystorage.New()))
		require.Error(t, err)
	})

	t.Run("requires a blob store", func(t *testing.T) {
		_, err := salon.New(salon.WithRepository(memoryrepo.New()))
		require.Error(t, err)
	})
}
