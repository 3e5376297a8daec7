package salon

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two asset families the salon publishes.
type Kind string

const (
	KindGallery Kind = "gallery"
	KindService Kind = "service"
)

// IsValid returns true if the kind is one of the known asset families.
func (k Kind) IsValid() bool {
	return k == KindGallery || k == KindService
}

// Category is the fixed set of salon categories. Stored lower-case.
type Category string

const (
	CategoryHair   Category = "hair"
	CategoryBeard  Category = "beard"
	CategoryBridal Category = "bridal"
	CategorySpa    Category = "spa"
	CategoryNails  Category = "nails"
	CategoryKids   Category = "kids"
)

// galleryCategories is the subset a gallery item may carry; service entries
// accept every category.
var galleryCategories = map[Category]bool{
	CategoryHair:   true,
	CategoryBeard:  true,
	CategoryBridal: true,
	CategorySpa:    true,
}

var serviceCategories = map[Category]bool{
	CategoryHair:   true,
	CategoryBeard:  true,
	CategoryBridal: true,
	CategorySpa:    true,
	CategoryNails:  true,
	CategoryKids:   true,
}

// NormalizeCategory lower-cases and trims a raw category value.
func NormalizeCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw)))
}

// ValidFor returns true if the category is allowed for the given kind.
func (c Category) ValidFor(kind Kind) bool {
	switch kind {
	case KindGallery:
		return galleryCategories[c]
	case KindService:
		return serviceCategories[c]
	default:
		return false
	}
}

// Field length bounds in characters, matching the public site's validators.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// ImageRef points at one stored image. Key is the storage identifier
// returned at upload time and is always persisted alongside the URL; it is
// never re-derived from the URL.
type ImageRef struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url,omitempty"`
}

// IsZero returns true if no image is referenced.
func (r ImageRef) IsZero() bool {
	return r.Key == "" && r.URL == ""
}

// BeforeAfterImages holds an optional paired transformation shot.
type BeforeAfterImages struct {
	Before ImageRef `json:"before"`
	After  ImageRef `json:"after"`
}

// Asset is one gallery item or service entry together with its stored
// image references.
type Asset struct {
	ID          uuid.UUID          `json:"id"`
	Kind        Kind               `json:"kind"`
	Title       string             `json:"title"`
	Category    Category           `json:"category"`
	Description string             `json:"description,omitempty"`
	Image       ImageRef           `json:"image"`
	BeforeAfter *BeforeAfterImages `json:"before_after,omitempty"`
	Likes       int64              `json:"likes"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ImageKeys returns the storage keys of every image the asset references.
func (a *Asset) ImageKeys() []string {
	var keys []string
	if a.Image.Key != "" {
		keys = append(keys, a.Image.Key)
	}
	if a.BeforeAfter != nil {
		if a.BeforeAfter.Before.Key != "" {
			keys = append(keys, a.BeforeAfter.Before.Key)
		}
		if a.BeforeAfter.After.Key != "" {
			keys = append(keys, a.BeforeAfter.After.Key)
		}
	}
	return keys
}

// AssetPage is the listing envelope returned to callers.
type AssetPage struct {
	Items []*Asset `json:"items"`
	Total int64    `json:"total"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}
