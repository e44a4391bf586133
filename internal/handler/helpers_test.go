package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/middleware"
	"github.com/noah-isme/transport-request-api/internal/models"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *envelopeError         `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type envelopeError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

var (
	parentSession   = models.Session{UserID: "parent-1", Email: "pat@example.com", FullName: "Pat Parent", Role: models.RoleParent, District: "Henrico"}
	districtSession = models.Session{UserID: "staff-1", Email: "dana@henrico.k12.va.us", FullName: "Dana Staff", Role: models.RoleDistrict, District: "Henrico"}
	adminSession    = models.Session{UserID: "admin-1", Email: "admin@example.com", FullName: "Admin", Role: models.RoleAdmin}
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withSession(c *gin.Context, session models.Session) *gin.Context {
	c.Set(middleware.ContextSessionKey, session)
	return c
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}
