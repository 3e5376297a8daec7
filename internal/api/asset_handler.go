package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// AssetHandler handles HTTP requests for one asset kind. The same handler
// backs /api/gallery and /api/services with a different fixed kind.
type AssetHandler struct {
	service    salon.Service
	kind       salon.Kind
	stagingDir string
}

// NewAssetHandler creates a new asset handler for the given kind.
func NewAssetHandler(service salon.Service, kind salon.Kind, stagingDir string) *AssetHandler {
	return &AssetHandler{
		service:    service,
		kind:       kind,
		stagingDir: stagingDir,
	}
}

// Routes returns the routes for this asset kind. Mutating routes require an
// admin token.
func (h *AssetHandler) Routes(auth *jwtauth.JWTAuth) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAssets)
	r.Get("/{id}", h.GetAsset)
	r.Post("/{id}/like", h.IncrementLikes)

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(auth))
		r.Use(jwtauth.Authenticator)
		r.Use(RequireAdmin)

		r.Post("/", h.CreateAsset)
		r.Put("/{id}", h.UpdateAsset)
		r.Delete("/{id}", h.DeleteAsset)
		r.Post("/bulk-delete", h.BulkDeleteAssets)
	})

	return r
}

type dataResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type listResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	Data    []*salon.Asset `json:"data"`
}

type bulkDeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RemovedCount int64  `json:"removed_count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var storageErr *salon.StorageError
	switch {
	case salon.IsInvalidInput(err):
		status = http.StatusBadRequest
	case errors.Is(err, salon.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.As(err, &storageErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Success: false, Error: err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Success: false, Error: msg})
}

func parseID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to disk.
const maxUploadMemory = 32 << 20

// stageUpload buffers an optional "image" form file into the staging
// directory. A request without one returns (nil, nil); plain form requests
// without a multipart body are fine too.
func (h *AssetHandler) stageUpload(r *http.Request) (*salon.StagingFile, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			r.ParseForm()
			return nil, nil
		}
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return salon.NewStagingFile(h.stagingDir, file, header.Filename)
}

// ListAssets returns one page of assets, filtered by category. Inactive
// assets are excluded unless include_inactive=true.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	params := salon.ListAssetsParams{
		Kind:       h.kind,
		ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
	}

	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		params.Category = salon.NormalizeCategory(category)
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		params.Limit = limit
	}

	page, err := h.service.ListAssets(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := page.Items
	if items == nil {
		items = []*salon.Asset{}
	}

	render.JSON(w, r, listResponse{
		Success: true,
		Count:   len(items),
		Total:   page.Total,
		Page:    page.Page,
		Pages:   page.Pages,
		Data:    items,
	})
}

// GetAsset retrieves a single asset by ID.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, r, "invalid asset ID")
		return
	}

	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, dataResponse{Success: true, Data: asset})
}

// CreateAsset creates a new asset from a multipart form with an optional
// (gallery: required) image upload.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	file, err := h.stageUpload(r)
	if err != nil {
		badRequest(w, r, "invalid image upload")
		return
	}

	req := salon.CreateAssetRequest{
		Kind:        h.kind,
		Title:       r.FormValue("title"),
		Category:    salon.Category(r.FormValue("category")),
		Description: r.FormValue("description"),
	}
	if likes, err := strconv.ParseInt(r.FormValue("likes"), 10, 64); err == nil && likes >= 0 {
		req.Likes = likes
	}

	asset, err := h.service.CreateAsset(r.Context(), req, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("asset created", "asset_id", asset.ID, "kind", asset.Kind)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, dataResponse{
		Success: true,
		Message: "asset created successfully",
		Data:    asset,
	})
}

// UpdateAsset applies a partial update built from the form fields actually
// present in the request, with an optional replacement image.
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, r, "invalid asset ID")
		return
	}

	file, err := h.stageUpload(r)
	if err != nil {
		badRequest(w, r, "invalid image upload")
		return
	}

	// Only fields present in the form end up in the patch; an empty value
	// for a present field clears it.
	patch := salon.AssetPatch{}
	if v, ok := formField(r, "title"); ok {
		patch.Title = &v
	}
	if v, ok := formField(r, "category"); ok {
		category := salon.NormalizeCategory(v)
		patch.Category = &category
	}
	if v, ok := formField(r, "description"); ok {
		patch.Description = &v
	}
	if v, ok := formField(r, "likes"); ok {
		likes, err := strconv.ParseInt(v, 10, 64)
		if err != nil || likes < 0 {
			badRequest(w, r, "likes must be a non-negative integer")
			return
		}
		patch.Likes = &likes
	}
	if v, ok := formField(r, "active"); ok {
		active := v == "true"
		patch.Active = &active
	}

	asset, err := h.service.UpdateAsset(r.Context(), id, patch, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, dataResponse{
		Success: true,
		Message: "asset updated successfully",
		Data:    asset,
	})
}

// DeleteAsset removes an asset and its stored images.
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, r, "invalid asset ID")
		return
	}

	if err := h.service.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, dataResponse{
		Success: true,
		Message: "asset deleted successfully",
		Data:    struct{}{},
	})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteAssets removes a batch of assets; ids that do not resolve are
// silently excluded from the count.
func (h *AssetHandler) BulkDeleteAssets(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		badRequest(w, r, "please provide an array of IDs to delete")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, r, "invalid asset ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	removed, err := h.service.BulkDeleteAssets(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, bulkDeleteResponse{
		Success:      true,
		Message:      "assets deleted successfully",
		RemovedCount: removed,
	})
}

// IncrementLikes bumps an asset's engagement counter.
func (h *AssetHandler) IncrementLikes(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, r, "invalid asset ID")
		return
	}

	asset, err := h.service.IncrementLikes(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, dataResponse{Success: true, Data: asset})
}

// formField returns a form value and whether the field was present at all.
func formField(r *http.Request, name string) (string, bool) {
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[name]; ok && len(values) > 0 {
			return values[0], true
		}
		return "", false
	}
	if values, ok := r.Form[name]; ok && len(values) > 0 {
		return values[0], true
	}
	return "", false
}
