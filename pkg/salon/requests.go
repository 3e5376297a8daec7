package salon

import (
	"strings"
	"unicode/utf8"
)

// CreateAssetRequest contains parameters for creating an asset.
type CreateAssetRequest struct {
	Kind        Kind
	Title       string
	Category    Category
	Description string
	Likes       int64
	Active      *bool // nil defaults to true
}

// Validate checks the request against the fixed field bounds and category
// sets. The coordinator runs this before anything is uploaded.
func (r *CreateAssetRequest) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !NormalizeCategory(string(r.Category)).ValidFor(r.Kind) {
		return ErrInvalidCategory
	}
	return nil
}

// AssetPatch describes a partial update. A nil field is left untouched; a
// non-nil pointer to a zero value clears the field. This keeps "caller
// omitted the field" and "caller wants it cleared" distinct.
type AssetPatch struct {
	Title       *string
	Category    *Category
	Description *string
	Likes       *int64
	Active      *bool
	Image       *ImageRef
	BeforeAfter *BeforeAfterImages
}

// IsZero reports whether the patch changes nothing.
func (p AssetPatch) IsZero() bool {
	return p.Title == nil && p.Category == nil && p.Description == nil &&
		p.Likes == nil && p.Active == nil && p.Image == nil && p.BeforeAfter == nil
}

// Apply copies the set fields onto an asset.
func (p AssetPatch) Apply(a *Asset) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		a.Category = NormalizeCategory(string(*p.Category))
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Likes != nil {
		a.Likes = *p.Likes
	}
	if p.Active != nil {
		a.Active = *p.Active
	}
	if p.Image != nil {
		a.Image = *p.Image
	}
	if p.BeforeAfter != nil {
		a.BeforeAfter = p.BeforeAfter
	}
}

// ListAssetsParams contains filtering and pagination for asset listings.
type ListAssetsParams struct {
	Kind       Kind     // zero value lists every kind
	Category   Category // zero value skips the category filter
	ActiveOnly bool
	Page       int // 1-based; values below 1 are treated as 1
	Limit      int // values below 1 fall back to DefaultListLimit
}

// DefaultListLimit caps unpaginated listings, matching the site's default.
const DefaultListLimit = 100

// Normalized returns a copy with page/limit clamped to usable values.
func (p ListAssetsParams) Normalized() ListAssetsParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultListLimit
	}
	p.Category = NormalizeCategory(string(p.Category))
	return p
}
