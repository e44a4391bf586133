package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/middleware"
	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/internal/workflow"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

const queryDateLayout = "2006-01-02"

// sessionFromContext returns the caller or answers 401 when the route ran without JWT.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.Session(c)
	if !ok || !session.Authenticated() {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return session, true
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func parseDateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

// parseDateRange reads from/to. The end date covers its whole day.
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return from, to, nil
}

// parseWorkflowQuery maps table query parameters onto a workflow query.
func parseWorkflowQuery(c *gin.Context) (workflow.Query, error) {
	from, to, err := parseDateRange(c)
	if err != nil {
		return workflow.Query{}, err
	}
	return workflow.Query{
		Filter: workflow.Filter{
			Search:   c.Query("search"),
			District: c.Query("district"),
			School:   c.Query("school"),
			Status:   c.Query("status"),
			Tab:      workflow.Tab(strings.ToLower(c.Query("tab"))),
			From:     from,
			To:       to,
		},
		Sort: workflow.Sort{
			Field: workflow.SortField(strings.ToLower(c.Query("sort"))),
			Order: workflow.SortOrder(strings.ToLower(c.Query("order"))),
		}.Normalise(),
	}, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
