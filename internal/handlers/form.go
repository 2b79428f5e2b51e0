package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
)

// formData is the text part of an admin multipart form.
type formData map[string]string

func parseForm(c *gin.Context) (formData, bool) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !isNotMultipart(err) {
		httperr.BadRequest(c, "invalid_request", "Invalid form data")
		return nil, false
	}
	return formData(formFields(c)), true
}

func (f formData) has(k string) bool {
	_, ok := f[k]
	return ok
}

func (f formData) get(k string) string {
	return strings.TrimSpace(f[k])
}

// list accepts a JSON array or a comma separated string.
func (f formData) list(k string) []string {
	raw := f.get(k)
	if raw == "" {
		return []string{}
	}
	var out []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &out) == nil {
		return compact(out)
	}
	return compact(strings.Split(raw, ","))
}

func (f formData) boolean(k string) bool {
	b, _ := strconv.ParseBool(f.get(k))
	return b
}

// intPtr returns nil for an empty value.
func (f formData) intPtr(k string, fe map[string]string) *int {
	raw := f.get(k)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe[k] = "Must be a whole number"
		return nil
	}
	return &n
}

func (f formData) price(k string, fe map[string]string) decimal.NullDecimal {
	raw := f.get(k)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		fe[k] = "Must be a non-negative amount"
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// saveFormImage stores the optional image in field. It returns "" when no
// file was sent and false when an error response has been written.
func saveFormImage(c *gin.Context, up *storage.Uploader, field, dir string, maxSize int) (string, bool) {
	file, err := formFile(c, field, maxSize)
	if err != nil {
		respondUploadError(c, err)
		return "", false
	}
	if file == nil {
		return "", true
	}

	obj, err := up.SaveImage(c.Request.Context(), dir, *file, maxSize)
	if err != nil {
		respondUploadError(c, err)
		return "", false
	}
	return obj.URL, true
}
