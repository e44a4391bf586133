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

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var requestColumnList = []string{
	"id", "user_id", "student_first_name", "student_last_name", "student_id", "school", "grade",
	"school_year", "district", "status", "flag_dnr", "flag_needs_attended", "flag_non_verbal",
	"pickup_location", "pickup_time", "drop_off_location", "drop_off_time", "admin_notes", "details",
	"created_at", "updated_at", "updated_by",
}

var requestColumns = strings.Join(requestColumnList, ", ")

// RequestRepository stores transportation requests. Every owner-scoped
// statement keys on user_id so a parent can never reach another family's rows.
type RequestRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRequestRepository constructs the repository. A positive timeout bounds every statement.
func NewRequestRepository(db *sqlx.DB, timeout time.Duration) *RequestRepository {
	return &RequestRepository{db: db, timeout: timeout}
}

func (r *RequestRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts a request, assigning an id and server-side creation time when absent.
func (r *RequestRepository) Create(ctx context.Context, req *models.TransportRequest) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt == nil {
		now := time.Now().UTC()
		req.CreatedAt = &now
	}
	req.Status = req.Status.OrDefault()

	query := `INSERT INTO transport_requests (` + requestColumns + `) VALUES (:` + strings.Join(requestColumnList, ", :") + `)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create transport request: %w", err)
	}
	return nil
}

// FindByID loads a request regardless of owner.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.TransportRequest, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindOwned loads a request only when it belongs to ownerID.
func (r *RequestRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.TransportRequest, error) {
	return r.findOne(ctx, sq.Eq{"id": id, "user_id": ownerID})
}

func (r *RequestRepository) findOne(ctx context.Context, where sq.Eq) (*models.TransportRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query, args, err := psql.Select(requestColumnList...).From("transport_requests").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find transport request: %w", err)
	}
	var req models.TransportRequest
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find transport request: %w", err)
	}
	return &req, nil
}

// ListByOwner returns a parent's requests newest first. A non-positive limit returns all of them.
func (r *RequestRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.TransportRequest, error) {
	return r.ListAll(ctx, models.RequestQuery{OwnerID: ownerID, Limit: limit})
}

// ListAll returns requests across owners narrowed by q, newest first.
func (r *RequestRepository) ListAll(ctx context.Context, q models.RequestQuery) ([]models.TransportRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	builder := psql.Select(requestColumnList...).From("transport_requests")
	if q.OwnerID != "" {
		builder = builder.Where(sq.Eq{"user_id": q.OwnerID})
	}
	if q.District != "" {
		builder = builder.Where(sq.Eq{"district": q.District})
	}
	if q.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(q.Status)})
	}
	if q.From != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *q.From})
	}
	if q.To != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *q.To})
	}
	builder = builder.OrderBy("created_at DESC NULLS LAST", "id")
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transport requests: %w", err)
	}
	var out []models.TransportRequest
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list transport requests: %w", err)
	}
	return out, nil
}

// UpdateStatus persists status, notes and audit fields for one request in a
// single statement keyed by id and owner. When expectedUpdatedAt is set the
// row must still be at that version: its updated_at, or created_at for a row
// never updated. A zero expectedUpdatedAt requires updated_at to be NULL.
// sql.ErrNoRows is returned when nothing matched.
func (r *RequestRepository) UpdateStatus(ctx context.Context, req *models.TransportRequest, expectedUpdatedAt *time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	builder := psql.Update("transport_requests").
		Set("status", string(req.Status)).
		Set("admin_notes", req.AdminNotes).
		Set("updated_at", req.UpdatedAt).
		Set("updated_by", req.UpdatedBy).
		Where(sq.Eq{"id": req.ID, "user_id": req.OwnerID()})
	switch {
	case expectedUpdatedAt == nil:
	case expectedUpdatedAt.IsZero():
		builder = builder.Where("updated_at IS NULL")
	default:
		builder = builder.Where("COALESCE(updated_at, created_at) = ?", *expectedUpdatedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update request status: %w", err)
	}
	return r.execOne(ctx, "update request status", query, args)
}

// UpdateFields applies a parent's limited edit to one owned request.
func (r *RequestRepository) UpdateFields(ctx context.Context, id, ownerID string, upd models.ParentRequestUpdate, at time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	builder := psql.Update("transport_requests")
	set := func(column string, value *string) {
		if value != nil {
			builder = builder.Set(column, *value)
		}
	}
	set("student_first_name", upd.StudentFirstName)
	set("student_last_name", upd.StudentLastName)
	set("school", upd.School)
	set("pickup_time", upd.PickupTime)
	set("pickup_location", upd.PickupLocation)
	set("drop_off_time", upd.DropOffTime)
	set("drop_off_location", upd.DropOffLocation)
	builder = builder.Set("updated_at", at).Where(sq.Eq{"id": id, "user_id": ownerID})

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update request fields: %w", err)
	}
	return r.execOne(ctx, "update request fields", query, args)
}

// DeleteOwned removes a request belonging to ownerID.
func (r *RequestRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	const query = `DELETE FROM transport_requests WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, "delete transport request", query, []interface{}{id, ownerID})
}

// DocumentReferenced reports whether any request's DNR record points at rel.
func (r *RequestRepository) DocumentReferenced(ctx context.Context, rel string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	const query = `SELECT EXISTS (SELECT 1 FROM transport_requests WHERE details->'dnr'->>'documentation' = $1)`
	var found bool
	if err := r.db.GetContext(ctx, &found, query, rel); err != nil {
		return false, fmt.Errorf("check document reference: %w", err)
	}
	return found, nil
}

func (r *RequestRepository) execOne(ctx context.Context, op, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
