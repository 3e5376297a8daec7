package salon

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrAssetNotFound indicates the asset id does not resolve in the
	// metadata store.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrImageRequired indicates a gallery asset was created without an
	// image upload.
	ErrImageRequired = errors.New("image file is required")

	// ErrInvalidCategory indicates a category outside the fixed set for the
	// asset kind.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidKind indicates an unknown asset kind.
	ErrInvalidKind = errors.New("invalid asset kind")

	// ErrTitleRequired indicates a missing title.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong indicates a title over the length bound.
	ErrTitleTooLong = fmt.Errorf("title must not exceed %d characters", MaxTitleLength)

	// ErrDescriptionTooLong indicates a description over the length bound.
	ErrDescriptionTooLong = fmt.Errorf("description must not exceed %d characters", MaxDescriptionLength)
)

// IsInvalidInput reports whether err is one of the input validation errors,
// as opposed to a persistence or storage failure.
func IsInvalidInput(err error) bool {
	for _, target := range []error{
		ErrImageRequired,
		ErrInvalidCategory,
		ErrInvalidKind,
		ErrTitleRequired,
		ErrTitleTooLong,
		ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AssetError represents a metadata store failure during an asset operation.
type AssetError struct {
	AssetID uuid.UUID
	Op      string
	Err     error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset operation %s failed for asset %s: %v", e.Op, e.AssetID, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// StorageError represents an object store failure on the required path of a
// workflow. Best-effort deletions never surface one of these; their failures
// are logged only.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
