package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/transport-request-api/internal/models"
)

var activityColumnList = []string{"id", "actor", "user_id", "action", "district", "details", "timestamp"}

// ActivityRepository appends to and reads the system activity log.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.SystemActivity) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	query := `INSERT INTO system_activity (` + strings.Join(activityColumnList, ", ") + `) VALUES (:` + strings.Join(activityColumnList, ", :") + `)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create system activity: %w", err)
	}
	return nil
}

// List returns log entries newest first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.SystemActivity, error) {
	builder := psql.Select(activityColumnList...).From("system_activity")
	if filter.District != "" {
		builder = builder.Where(sq.Eq{"district": filter.District})
	}
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"timestamp": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"timestamp": *filter.To})
	}
	builder = builder.OrderBy("timestamp DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list system activity: %w", err)
	}
	var out []models.SystemActivity
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list system activity: %w", err)
	}
	return out, nil
}
