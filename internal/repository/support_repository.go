package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/transport-request-api/internal/models"
)

var supportColumnList = []string{"id", "subject", "sender", "email", "district", "status", "priority", "message", "role", "user_id", "date"}

// SupportRepository stores support tickets and contact form submissions.
type SupportRepository struct {
	db *sqlx.DB
}

// NewSupportRepository constructs a SupportRepository.
func NewSupportRepository(db *sqlx.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// Create inserts a support message.
func (r *SupportRepository) Create(ctx context.Context, msg *models.SupportMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Date.IsZero() {
		msg.Date = time.Now().UTC()
	}
	query := `INSERT INTO support_messages (` + strings.Join(supportColumnList, ", ") + `) VALUES (:` + strings.Join(supportColumnList, ", :") + `)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create support message: %w", err)
	}
	return nil
}

// FindByID returns a single support message.
func (r *SupportRepository) FindByID(ctx context.Context, id string) (*models.SupportMessage, error) {
	query, args, err := psql.Select(supportColumnList...).From("support_messages").Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find support message: %w", err)
	}
	var msg models.SupportMessage
	if err := r.db.GetContext(ctx, &msg, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find support message: %w", err)
	}
	return &msg, nil
}

// List returns a page of messages newest first together with the total match count.
func (r *SupportRepository) List(ctx context.Context, filter models.SupportFilter) ([]models.SupportMessage, int, error) {
	where := sq.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		where = append(where, sq.Or{
			sq.ILike{"subject": pattern},
			sq.ILike{"sender": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"message": pattern},
		})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": string(filter.Status)})
	}
	if filter.District != "" {
		where = append(where, sq.Eq{"district": filter.District})
	}
	if filter.From != nil {
		where = append(where, sq.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		where = append(where, sq.LtOrEq{"date": *filter.To})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	listBuilder := psql.Select(supportColumnList...).From("support_messages").
		OrderBy("date DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))
	countBuilder := psql.Select("COUNT(*)").From("support_messages")
	if len(where) > 0 {
		listBuilder = listBuilder.Where(where)
		countBuilder = countBuilder.Where(where)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list support messages: %w", err)
	}
	var out []models.SupportMessage
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list support messages: %w", err)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count support messages: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count support messages: %w", err)
	}
	return out, total, nil
}

// ListAll returns every message newest first, used by dashboards and reports.
func (r *SupportRepository) ListAll(ctx context.Context) ([]models.SupportMessage, error) {
	query, args, err := psql.Select(supportColumnList...).From("support_messages").OrderBy("date DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all support messages: %w", err)
	}
	var out []models.SupportMessage
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list all support messages: %w", err)
	}
	return out, nil
}

// UpdateTriage changes status and/or priority. sql.ErrNoRows is returned for an unknown id.
func (r *SupportRepository) UpdateTriage(ctx context.Context, id string, status *models.SupportStatus, priority *models.SupportPriority) error {
	builder := psql.Update("support_messages")
	if status != nil {
		builder = builder.Set("status", string(*status))
	}
	if priority != nil {
		builder = builder.Set("priority", string(*priority))
	}
	query, args, err := builder.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update support message: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update support message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
