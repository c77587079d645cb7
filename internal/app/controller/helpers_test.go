package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/ikkim/shopadmin-backend/internal/db"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testActor = "admin@example.com"

// newTestRouter returns an engine whose requests carry an admin identity,
// as if Authenticate had already run.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint(1))
		c.Set(middleware.UserEmailKey, testActor)
		c.Set(middleware.UserRoleKey, model.RoleAdmin)
		c.Next()
	})
	return router, testDB
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}
