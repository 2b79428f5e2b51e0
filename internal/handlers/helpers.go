package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var errFileTooLarge = errors.New("file too large")

// --------------------------------------------------
// Request parsing
// --------------------------------------------------

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.From(c).Debug("invalid request body", zap.Error(err))
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

// pagination reads limit/offset, accepting page as an alternative to offset.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset, _ = strconv.Atoi(c.Query("offset"))
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 && c.Query("offset") == "" {
		offset = (page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryBool(c *gin.Context, key string) (bool, bool) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// formFile returns the named multipart file, or nil when it was not sent.
func formFile(c *gin.Context, field string, maxSize int) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || isNotMultipart(err) {
			return nil, nil
		}
		return nil, err
	}
	return readUpload(fh, maxSize)
}

func isNotMultipart(err error) bool {
	return errors.Is(err, http.ErrNotMultipart)
}

func readUpload(fh *multipart.FileHeader, maxSize int) (*storage.Upload, error) {
	if maxSize > 0 && fh.Size > int64(maxSize) {
		return nil, errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formFields flattens the text parts of a parsed form or multipart request.
func formFields(c *gin.Context) map[string]string {
	out := map[string]string{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// --------------------------------------------------
// Responses
// --------------------------------------------------

func respondError(c *gin.Context, err error) {
	httperr.Respond(c, err)
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errFileTooLarge), errors.Is(err, storage.ErrTooLarge):
		httperr.TooLarge(c, "file_too_large", "File is too large")
	case errors.Is(err, storage.ErrUnsupportedType):
		httperr.BadRequest(c, "unsupported_file_type", "File type is not allowed")
	default:
		httperr.Internal(c, "upload_failed", "Failed to store file", err)
	}
}

// --------------------------------------------------
// Slugs
// --------------------------------------------------

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
