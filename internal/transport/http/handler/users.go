package handler

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-account-api/internal/application/avatar"
	"github.com/go-account-api/internal/application/profile"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/validate"
	"github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 1 << 20

// ProfileHandler handles the account profile endpoints.
type ProfileHandler struct {
	svc          profile.Service
	maxBodyBytes int64
}

// NewProfileHandler creates a ProfileHandler. maxAvatarBytes bounds the
// uploaded image; the request body may exceed it by the form overhead.
func NewProfileHandler(svc profile.Service, maxAvatarBytes int64) *ProfileHandler {
	return &ProfileHandler{svc: svc, maxBodyBytes: maxAvatarBytes + multipartMemory}
}

func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	profiles, err := h.svc.SelectProfile(r.Context(), claims.Username)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Update accepts either a JSON body or a multipart form with an optional
// "avatar" file part.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var (
		req    domain.UpdateProfileRequest
		upload *avatar.Upload
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "avatar too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()
		req = formProfileRequest(r.MultipartForm)

		f, hdr, err := r.FormFile("avatar")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid avatar file")
			return
		default:
			defer f.Close()
			upload = &avatar.Upload{
				Reader:      f,
				Filename:    hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
			}
		}
	} else if !decodeJSON(w, r, &req) {
		return
	}

	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req, upload); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, "user updated successfully")
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, "user deleted successfully")
}

// formProfileRequest reads the optional text fields. An absent field leaves
// the stored value alone.
func formProfileRequest(form *multipart.Form) domain.UpdateProfileRequest {
	var req domain.UpdateProfileRequest
	if v, ok := form.Value["name"]; ok && len(v) > 0 {
		req.Name = &v[0]
	}
	if v, ok := form.Value["phone"]; ok && len(v) > 0 {
		req.Phone = &v[0]
	}
	return req
}
