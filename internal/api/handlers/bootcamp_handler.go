package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/auth"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/devtrail/devtrail-be/internal/storage"
	"github.com/go-chi/chi/v5"
)

// BootcampHandler handles HTTP requests for bootcamp listings.
type BootcampHandler struct {
	service  services.BootcampServiceProvider
	photos   *storage.PhotoStore
	maxBytes int64
}

// NewBootcampHandler creates a new BootcampHandler.
func NewBootcampHandler(service services.BootcampServiceProvider, photos *storage.PhotoStore, maxBytes int64) *BootcampHandler {
	return &BootcampHandler{service: service, photos: photos, maxBytes: maxBytes}
}

// GetAll handles the request to list all bootcamps.
func (h *BootcampHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	bootcamps, err := h.service.GetBootcamps()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, bootcamps, len(bootcamps))
}

// Get handles the request to get a single bootcamp by its ID.
func (h *BootcampHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bootcamp, err := h.service.GetBootcampByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bootcamp)
}

// Create handles the request to create a new bootcamp owned by the
// authenticated account.
func (h *BootcampHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	var bootcamp models.Bootcamp
	if err := json.NewDecoder(r.Body).Decode(&bootcamp); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	created, err := h.service.CreateBootcamp(requester, bootcamp)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update handles the request to update an existing bootcamp.
func (h *BootcampHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	id := chi.URLParam(r, "id")
	var bootcamp models.Bootcamp
	if err := json.NewDecoder(r.Body).Decode(&bootcamp); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	updated, err := h.service.UpdateBootcamp(requester, id, bootcamp)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete handles the request to delete a bootcamp.
func (h *BootcampHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteBootcamp(requester, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

// GetInRadius handles the geo-radius search by zipcode and distance in
// miles.
func (h *BootcampHandler) GetInRadius(w http.ResponseWriter, r *http.Request) {
	zipcode := chi.URLParam(r, "zipcode")
	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		respondError(w, r, apperr.Validationf("distance must be a number of miles"))
		return
	}

	bootcamps, err := h.service.GetBootcampsInRadius(r.Context(), zipcode, distance)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, bootcamps, len(bootcamps))
}

// UploadPhoto handles the photo upload for a bootcamp.
func (h *BootcampHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+4096)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondError(w, r, apperr.Validationf("please upload a file under %d bytes", h.maxBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, apperr.Validationf("please upload a file"))
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondError(w, r, apperr.Validationf("please upload an image file"))
		return
	}
	if header.Size > h.maxBytes {
		respondError(w, r, apperr.Validationf("please upload an image less than %d bytes", h.maxBytes))
		return
	}

	filename := "photo_" + id + filepath.Ext(header.Filename)

	// Ownership is checked before the file hits the disk.
	bootcamp, err := h.service.GetBootcampByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if bootcamp.UserID != requester.ID && !requester.IsAdmin() {
		respondError(w, r, apperr.Forbidden("update this bootcamp"))
		return
	}

	if err := h.photos.Save(filename, file); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.service.UpdatePhoto(requester, id, filename)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated.Photo)
}
