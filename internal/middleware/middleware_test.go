package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/service"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/logger"
)

type stubValidator struct {
	claims map[string]*models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s.claims[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type memoryRecorder struct {
	mu      sync.Mutex
	actions []string
	users   []string
}

func (m *memoryRecorder) Record(session models.Session, action, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	m.users = append(m.users, session.UserID)
}

func testRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(middlewares, func(c *gin.Context) {
		session, _ := Session(c)
		c.JSON(http.StatusOK, gin.H{"user": session.UserID, "district": session.District, "log": c.GetString(logger.UserIDKey)})
	})
	r.GET("/protected", handlers...)
	return r
}

var validator = stubValidator{claims: map[string]*models.JWTClaims{
	"parent":   {UserID: "p1", Role: models.RoleParent, District: "Henrico"},
	"staff":    {UserID: "d1", Role: models.RoleDistrict, District: "Henrico"},
	"orphaned": {UserID: "d2", Role: models.RoleDistrict},
}}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	r := testRouter(JWT(validator))

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token parent").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer nope").Code)

	w := doGet(r, "Bearer parent")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"p1","district":"Henrico","log":"p1"}`, w.Body.String())
}

func TestOptionalJWT(t *testing.T) {
	r := testRouter(OptionalJWT(validator))

	w := doGet(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"","district":"","log":""}`, w.Body.String())

	w = doGet(r, "Bearer staff")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"d1"`)
}

func TestRequireRoles(t *testing.T) {
	r := testRouter(JWT(validator), RequireRoles(models.RoleDistrict, models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer parent").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer staff").Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer orphaned").Code)

	anonymous := testRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, doGet(anonymous, "").Code)
}

func TestActivityRecordsOnlySuccess(t *testing.T) {
	recorder := &memoryRecorder{}
	r := testRouter(JWT(validator), Activity(recorder, models.ActivityDocumentView, nil))

	doGet(r, "Bearer staff")
	doGet(r, "Bearer nope")

	assert.Equal(t, []string{models.ActivityDocumentView}, recorder.actions)
	assert.Equal(t, []string{"d1"}, recorder.users)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var meta map[string]interface{}
	r.GET("/meta", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
}

func TestCacheMissHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/meta", func(c *gin.Context) {
		SetCacheHit(c, false)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meta", nil))
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
	assert.Nil(t, ExtractMeta(nil))
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/requests/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/requests/r1", "/requests/r2", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `path="/requests/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "wp-login")
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}
