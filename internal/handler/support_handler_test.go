package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type fakeSupportService struct {
	lastFilter  models.SupportFilter
	lastContact models.ContactRequest
	lastTriage  models.UpdateSupportMessageRequest
	lastSession models.Session
}

func (f *fakeSupportService) Create(_ context.Context, session models.Session, req models.CreateSupportMessageRequest) (*models.SupportMessage, error) {
	f.lastSession = session
	return &models.SupportMessage{ID: "msg-1", Subject: req.Subject, Status: models.SupportPending}, nil
}

func (f *fakeSupportService) Contact(_ context.Context, req models.ContactRequest) (*models.SupportMessage, error) {
	f.lastContact = req
	return &models.SupportMessage{ID: "msg-2", Role: "public"}, nil
}

func (f *fakeSupportService) List(_ context.Context, _ models.Session, filter models.SupportFilter) ([]models.SupportMessage, models.Pagination, error) {
	f.lastFilter = filter
	return []models.SupportMessage{}, models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeSupportService) UpdateTriage(_ context.Context, _ models.Session, id string, req models.UpdateSupportMessageRequest) (*models.SupportMessage, error) {
	f.lastTriage = req
	if id == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &models.SupportMessage{ID: id, Status: *req.Status}, nil
}

func TestSupportHandlerCreateUsesSession(t *testing.T) {
	svc := &fakeSupportService{}
	handler := NewSupportHandler(svc)

	c, w := newGinContext(http.MethodPost, "/support", []byte(`{"subject":"Bus late","message":"Bus 12 was late twice"}`))
	handler.Create(withSession(c, districtSession))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Henrico", svc.lastSession.District)
}

func TestSupportHandlerContactIsPublic(t *testing.T) {
	svc := &fakeSupportService{}
	handler := NewSupportHandler(svc)

	c, w := newGinContext(http.MethodPost, "/contact", []byte(`{"name":"Sam","email":"sam@example.com","message":"Hello"}`))
	handler.Contact(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Sam", svc.lastContact.Name)
	assert.Contains(t, w.Body.String(), "Thank you for contacting us")
}

func TestSupportHandlerListMapsAllToNoFilter(t *testing.T) {
	svc := &fakeSupportService{}
	handler := NewSupportHandler(svc)

	c, w := newGinContext(http.MethodGet, "/admin/support?status=all&district=All&search=bus&page=2", nil)
	handler.List(withSession(c, adminSession))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SupportStatus(""), svc.lastFilter.Status)
	assert.Empty(t, svc.lastFilter.District)
	assert.Equal(t, "bus", svc.lastFilter.Search)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, 10, svc.lastFilter.PageSize)
}

func TestSupportHandlerListStatusFilter(t *testing.T) {
	svc := &fakeSupportService{}
	handler := NewSupportHandler(svc)

	c, _ := newGinContext(http.MethodGet, "/admin/support?status=in-progress", nil)
	handler.List(withSession(c, adminSession))

	assert.Equal(t, models.SupportInProgress, svc.lastFilter.Status)
}

func TestSupportHandlerUpdateTriage(t *testing.T) {
	svc := &fakeSupportService{}
	handler := NewSupportHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/admin/support/msg-1", []byte(`{"status":"resolved"}`))
	c.Params = gin.Params{{Key: "id", Value: "msg-1"}}
	handler.UpdateTriage(withSession(c, adminSession))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastTriage.Status)
	assert.Equal(t, models.SupportResolved, *svc.lastTriage.Status)
}

func TestSupportHandlerUpdateTriageNotFound(t *testing.T) {
	handler := NewSupportHandler(&fakeSupportService{})

	c, w := newGinContext(http.MethodPatch, "/admin/support/missing", []byte(`{"status":"resolved"}`))
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.UpdateTriage(withSession(c, adminSession))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
