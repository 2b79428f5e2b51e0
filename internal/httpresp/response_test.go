package httpresp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_HasMore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		data    []int
		total   int64
		offset  int
		hasMore bool
	}{
		{"first page of many", []int{1, 2}, 5, 0, true},
		{"last page", []int{5}, 5, 4, false},
		{"empty", nil, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Page(c, tt.data, tt.total, 2, tt.offset)

			var body PageResponse[int]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.hasMore, body.HasMore)
			assert.NotNil(t, body.Data)
		})
	}
}

func TestList_NilIsEmptyArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	List[string](c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"total":0}`, w.Body.String())
}
