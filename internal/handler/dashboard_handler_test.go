package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/middleware"
	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type fakeDashboardService struct {
	cached bool
	err    error
}

func (f *fakeDashboardService) District(_ context.Context, session models.Session) (*models.DistrictDashboard, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.DistrictDashboard{District: session.District}, f.cached, nil
}

func (f *fakeDashboardService) Admin(context.Context, models.Session) (*models.AdminDashboard, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.AdminDashboard{DistrictCount: 2}, f.cached, nil
}

func TestDashboardHandlerReportsSnapshotHeader(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardService{cached: true})
	c, w := newGinContext(http.MethodGet, "/district/dashboard", nil)
	handler.District(withSession(c, districtSession))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, string(envelope.Data), `"district":"Henrico"`)
}

func TestDashboardHandlerAdminMiss(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardService{})
	c, w := newGinContext(http.MethodGet, "/admin/dashboard", nil)
	handler.Admin(withSession(c, adminSession))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))
	assert.Equal(t, false, decodeEnvelope(t, w).Meta["cache_hit"])
}

func TestDashboardHandlerErrorHasNoSnapshotHeader(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardService{err: appErrors.ErrForbidden})
	c, w := newGinContext(http.MethodGet, "/admin/dashboard", nil)
	handler.Admin(withSession(c, districtSession))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get(middleware.CacheHeader))
}
