package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
)

type fakeParentRequests struct {
	lastQuery  workflow.Query
	lastUpdate models.ParentRequestUpdate
	deleted    string
}

func (f *fakeParentRequests) List(_ context.Context, _ models.Session, q workflow.Query, page, size int) ([]models.TransportRequest, models.Pagination, error) {
	f.lastQuery = q
	return []models.TransportRequest{{ID: "req-1"}}, models.Pagination{Page: page, PageSize: size, TotalCount: 1}, nil
}

func (f *fakeParentRequests) Get(_ context.Context, _ models.Session, id string) (*models.TransportRequest, error) {
	if id != "req-1" {
		return nil, appErrors.ErrNotFound
	}
	return &models.TransportRequest{ID: id}, nil
}

func (f *fakeParentRequests) Children(context.Context, models.Session) ([]models.Child, error) {
	return []models.Child{{FirstName: "Ava", LastName: "Smith", School: "Lincoln Elementary", RequestID: "req-1"}}, nil
}

func (f *fakeParentRequests) Update(_ context.Context, _ models.Session, id string, upd models.ParentRequestUpdate) (*models.TransportRequest, error) {
	f.lastUpdate = upd
	return &models.TransportRequest{ID: id}, nil
}

func (f *fakeParentRequests) Delete(_ context.Context, _ models.Session, id string) error {
	f.deleted = id
	return nil
}

func TestRequestHandlerListSearch(t *testing.T) {
	svc := &fakeParentRequests{}
	handler := NewRequestHandler(svc)

	c, w := newGinContext(http.MethodGet, "/parent/requests?search=lincoln", nil)
	handler.List(withSession(c, parentSession))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lincoln", svc.lastQuery.Filter.Search)
}

func TestRequestHandlerGetOtherFamily(t *testing.T) {
	handler := NewRequestHandler(&fakeParentRequests{})

	c, w := newGinContext(http.MethodGet, "/parent/requests/req-9", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-9"}}
	handler.Get(withSession(c, parentSession))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestHandlerUpdatePartial(t *testing.T) {
	svc := &fakeParentRequests{}
	handler := NewRequestHandler(svc)

	c, w := newGinContext(http.MethodPatch, "/parent/requests/req-1", []byte(`{"pickupTime":"07:15"}`))
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Update(withSession(c, parentSession))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastUpdate.PickupTime)
	assert.Equal(t, "07:15", *svc.lastUpdate.PickupTime)
	assert.Nil(t, svc.lastUpdate.School)
}

func TestRequestHandlerChildrenAndDelete(t *testing.T) {
	svc := &fakeParentRequests{}
	handler := NewRequestHandler(svc)

	c, w := newGinContext(http.MethodGet, "/parent/children", nil)
	handler.Children(withSession(c, parentSession))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"firstName":"Ava"`)

	c, _ = newGinContext(http.MethodDelete, "/parent/requests/req-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Delete(withSession(c, parentSession))
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "req-1", svc.deleted)
}
