package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelRequest struct {
	Label string `json:"label" binding:"required,taxonomy_label"`
	Sort  int    `json:"sort_position" binding:"gte=0"`
}

func TestSetupValidator_TaxonomyLabel(t *testing.T) {
	SetupValidator()
	router, _ := setupMiddlewareTest()
	router.POST("/labels", func(c *gin.Context) {
		var req labelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondWithBindingError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"label": req.Label})
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "Valid label", body: `{"label":"Men"}`, wantStatus: http.StatusOK},
		{name: "Sentinel label", body: `{"label":"EMPTY"}`, wantStatus: http.StatusBadRequest, wantField: "label"},
		{name: "Blank label", body: `{"label":"   "}`, wantStatus: http.StatusBadRequest, wantField: "label"},
		{name: "Negative sort", body: `{"label":"Men","sort_position":-1}`, wantStatus: http.StatusBadRequest, wantField: "sort_position"},
		{name: "Malformed JSON", body: `{"label":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/labels", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantField == "" {
				return
			}
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			fields, ok := response["fields"].(map[string]interface{})
			require.True(t, ok, "fields missing in %v", response)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}
