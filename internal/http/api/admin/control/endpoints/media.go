package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
	"github.com/Nixie-Tech-LLC/signage/internal/storage"
)

// MaxUploadSize caps one media upload at 100 MB.
const MaxUploadSize = 100 << 20

type MediaController struct {
	store   db.Store
	storage storage.Storage
}

func newMediaController(store db.Store, storage storage.Storage) *MediaController {
	return &MediaController{store: store, storage: storage}
}

// MediaModule mounts the authenticated /media endpoints.
func MediaModule(store db.Store, storage storage.Storage) api.Module {
	ctl := newMediaController(store, storage)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/media", ctl.listMedia)
		c.POST("/media/upload", ctl.uploadMedia)
	})
}

// MediaFileModule mounts the public file fetch used by players.
func MediaFileModule(store db.Store, storage storage.Storage) api.Module {
	ctl := newMediaController(store, storage)
	return api.ModuleFunc(func(c *api.Controller) {
		c.RAW(http.MethodGet, "/media/file/:id", ctl.serveFile)
	})
}

// mediaType classifies an upload by MIME prefix.
func mediaType(mimeType string) (string, bool) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaTypeImage, true
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaTypeVideo, true
	default:
		return "", false
	}
}

// GET /api/admin/media
func (m *MediaController) listMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := m.store.ListMedia(ctx.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int("user", user.ID).Msg("[media] list failed")
		return nil, api.Internal("Failed to fetch media")
	}
	return list, nil
}

// POST /api/admin/media/upload
func (m *MediaController) uploadMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxUploadSize+1<<20)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &api.APIError{Code: http.StatusRequestEntityTooLarge, Message: "File too large"}
		}
		log.Warn().Err(err).Msg("[media] upload: missing file")
		return nil, api.BadRequest("No file uploaded")
	}
	if fileHeader.Size > MaxUploadSize {
		return nil, &api.APIError{Code: http.StatusRequestEntityTooLarge, Message: "File too large"}
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	kind, ok := mediaType(mimeType)
	if !ok {
		return nil, api.BadRequest("Only image and video files are allowed")
	}

	filename, err := m.storage.SaveFile(ctx.Request.Context(), fileHeader)
	if err != nil {
		log.Error().Err(err).Msg("[media] upload: save failed")
		return nil, api.Internal("Failed to upload media")
	}

	media, err := m.store.CreateMedia(ctx.Request.Context(), model.Media{
		Name:     fileHeader.Filename,
		Type:     kind,
		Filename: filename,
		FileSize: fileHeader.Size,
		MimeType: mimeType,
		ClientID: user.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("[media] upload: db create failed")
		return nil, api.Internal("Failed to upload media")
	}

	log.Info().Str("media_id", media.ID).Str("type", kind).Int64("size", media.FileSize).Msg("media uploaded")
	return media, nil
}

// GET /api/admin/media/file/:id
func (m *MediaController) serveFile(ctx *gin.Context) {
	media, err := m.store.GetMedia(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("[media] file: lookup failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serve file"})
		return
	}

	obj, err := m.storage.Resolve(ctx.Request.Context(), media.Filename)
	if errors.Is(err, storage.ErrFileNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("media_id", media.ID).Msg("[media] file: resolve failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serve file"})
		return
	}

	if obj.URL != "" {
		ctx.Redirect(http.StatusFound, obj.URL)
		return
	}
	ctx.Header("Content-Type", media.MimeType)
	ctx.File(obj.Path)
}
