package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/http/response"
	"github.com/listenupapp/recipebox-server/internal/logger"
	"github.com/listenupapp/recipebox-server/internal/service"
)

const mediaPrefix = "/media/"

// registerMediaRoutes adds the plain chi handlers. Huma does not read
// multipart forms, so uploads bypass it.
func (s *Server) registerMediaRoutes() {
	for _, rs := range recipeSurfaces {
		s.router.Post(apiPrefix+rs.path+"/{id}/upload-image", s.handleUploadImage(rs.surface))
	}
	s.router.Get(mediaPrefix+"*", s.handleServeMedia)
}

// ImageUploadResponse is returned after an image upload.
type ImageUploadResponse struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

func (s *Server) handleUploadImage(surface service.Surface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.Error(w, domainerrors.CodeNotFound, "recipe not found", s.logger)
			return
		}
		principal, err := s.recipeWriter(ctx, surface, recipeID)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.HandleError(w, domainerrors.ValidationWithDetails("upload too large",
					map[string]string{"image": "exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"}), s.logger)
				return
			}
			response.BadRequest(w, "expected a multipart form", s.logger)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("image")
		if err != nil {
			response.HandleError(w, domainerrors.ValidationWithDetails("no image provided",
				map[string]string{"image": "is required"}), s.logger)
			return
		}
		defer func() { _ = file.Close() }()

		contentType, err := imageContentType(header.Header.Get("Content-Type"), file)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		recipe, err := s.services.Recipes.UploadImage(ctx, recipeID, principal.UserID, contentType, file)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, ImageUploadResponse{ID: recipe.ID, Image: imageURL(recipe.Image)}, s.logger)
	}
}

// imageContentType trusts a declared image type and sniffs otherwise.
// The reader is rewound after sniffing.
func imageContentType(declared string, file io.ReadSeeker) (string, error) {
	if strings.HasPrefix(declared, "image/") {
		return declared, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	sniffed := http.DetectContentType(head[:n])
	if !strings.HasPrefix(sniffed, "image/") {
		return "", domainerrors.ValidationWithDetails("unsupported file type",
			map[string]string{"image": "must be an image"})
	}
	return sniffed, nil
}

func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	info, body, err := s.services.Recipes.OpenImage(r.Context(), key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer func() { _ = body.Close() }()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.LastModified.IsZero() {
		w.Header().Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		logger.FromContext(r.Context(), s.logger).Debug("media stream interrupted", "key", key, "error", err)
	}
}
