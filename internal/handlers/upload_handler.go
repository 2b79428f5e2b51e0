package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

const defaultFileListLimit = 50

type UploadHandler struct {
	uploader *storage.Uploader
	audit    *audit.Dispatcher
}

func NewUploadHandler(uploader *storage.Uploader, audit *audit.Dispatcher) *UploadHandler {
	return &UploadHandler{uploader: uploader, audit: audit}
}

type FileList struct {
	Files       []storage.Object `json:"files"`
	TotalCount  int              `json:"totalCount"`
	HasMore     bool             `json:"hasMore"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
}

func (h *UploadHandler) Single(c *gin.Context) {
	up, err := formFile(c, "file", storage.MaxUploadSize)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	if up == nil {
		httperr.BadRequest(c, "no_file", "No file uploaded")
		return
	}

	obj, err := h.save(c, *up)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	h.dispatch(c, "file_uploaded", obj.Key)
	httpresp.OK(c, gin.H{"message": "File uploaded successfully", "file": obj})
}

func (h *UploadHandler) Multiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		httperr.BadRequest(c, "no_file", "No files uploaded")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		httperr.BadRequest(c, "no_file", "No files uploaded")
		return
	}
	if len(headers) > storage.MaxFilesPerUpload {
		httperr.BadRequest(c, "too_many_files", "At most "+strconv.Itoa(storage.MaxFilesPerUpload)+" files per upload")
		return
	}

	uploads := make([]storage.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh, storage.MaxUploadSize)
		if err != nil {
			respondUploadError(c, err)
			return
		}
		uploads = append(uploads, *up)
	}

	saved := make([]storage.Object, 0, len(uploads))
	for _, up := range uploads {
		obj, err := h.save(c, up)
		if err != nil {
			for _, o := range saved {
				h.uploader.Remove(c.Request.Context(), o.URL)
			}
			respondUploadError(c, err)
			return
		}
		saved = append(saved, obj)
	}

	for _, o := range saved {
		h.dispatch(c, "file_uploaded", o.Key)
	}
	httpresp.OK(c, gin.H{
		"message": strconv.Itoa(len(saved)) + " files uploaded successfully",
		"files":   saved,
	})
}

func (h *UploadHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	store := h.uploader.Store()

	obj, ok := h.locate(c)
	if !ok {
		return
	}
	if err := store.Delete(ctx, obj.Key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.NotFound(c, "file_not_found", "File not found")
			return
		}
		httperr.Internal(c, "file_delete_failed", "Failed to delete file", err)
		return
	}

	h.dispatch(c, "file_deleted", obj.Key)
	httpresp.OK(c, gin.H{"message": "File deleted successfully"})
}

func (h *UploadHandler) List(c *gin.Context) {
	dir := c.Param("directory")
	if dir == "" {
		dir = "images"
	}
	if !storage.IsDirectory(dir) {
		httperr.BadRequest(c, "invalid_directory", "Invalid directory")
		return
	}

	all, err := h.uploader.Store().List(c.Request.Context(), dir)
	if err != nil {
		httperr.Internal(c, "file_list_failed", "Failed to list files", err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultFileListLimit
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}

	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))

	c.JSON(http.StatusOK, FileList{
		Files:       nonNil(all[start:end]),
		TotalCount:  len(all),
		HasMore:     end < len(all),
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(len(all)) / float64(limit))),
	})
}

func (h *UploadHandler) Info(c *gin.Context) {
	obj, ok := h.locate(c)
	if !ok {
		return
	}
	httpresp.OK(c, obj)
}

func (h *UploadHandler) save(c *gin.Context, up storage.Upload) (storage.Object, error) {
	return h.uploader.Save(c.Request.Context(), storage.DirectoryFor(storage.ContentType(up)), up)
}

func (h *UploadHandler) locate(c *gin.Context) (storage.Object, bool) {
	obj, err := storage.Locate(c.Request.Context(), h.uploader.Store(), c.Param("filename"))
	switch {
	case err == nil:
		return obj, true
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
		httperr.NotFound(c, "file_not_found", "File not found")
	default:
		httperr.Internal(c, "file_lookup_failed", "Failed to get file info", err)
	}
	return storage.Object{}, false
}

func (h *UploadHandler) dispatch(c *gin.Context, action, key string) {
	h.audit.Dispatch(audit.Event{
		ActorID:  audit.Ptr(middleware.UserID(c)),
		Action:   action,
		Entity:   "file",
		Metadata: map[string]string{"key": key},
	})
}
