package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/valuator/api/internal/database"
	"github.com/stwalsh4118/valuator/api/internal/models"
)

// PropertyRepository defines data access for appraisal records in valuator_data.
type PropertyRepository interface {
	// Create inserts a new record holding only the identity block.
	// Returns ErrDuplicateFileNumber if the file number is already stored.
	Create(ctx context.Context, identity models.Identity) (int64, error)

	// Exists reports whether a record with the file number is stored.
	Exists(ctx context.Context, fileNumber string) (bool, error)

	// FindByFileNumber loads the full record.
	// Returns nil, nil if no record is found (not an error).
	FindByFileNumber(ctx context.Context, fileNumber string) (*models.PropertyRecord, error)

	// UpdateEnrichment merges lookup results into the subject: only columns
	// that are currently NULL are filled. Returns ErrRecordNotFound when the
	// file number does not exist.
	UpdateEnrichment(ctx context.Context, fileNumber string, e models.Enrichment) error

	// UpdateComparableEnrichment applies the same merge rule to one comparable slot.
	UpdateComparableEnrichment(ctx context.Context, fileNumber string, compIndex int, e models.Enrichment) error

	// UpsertFull overwrites every subject and comparable column with the
	// submission in a single transaction. Missing values are written as NULL.
	UpsertFull(ctx context.Context, fileNumber string, sub models.FullSubmission) error

	// ReadSubjectProjection returns the subject view, or nil, nil when absent.
	ReadSubjectProjection(ctx context.Context, fileNumber string) (*models.SubjectView, error)

	// ReadCompProjection returns one comparable when its stored address, city
	// and zip match the filter exactly. Returns nil, nil when nothing matches.
	ReadCompProjection(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error)

	// ListRecent returns the most recently updated records, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.RecordSummary, error)
}

// propertyRepository is the pgx implementation of PropertyRepository.
type propertyRepository struct {
	db database.Querier
}

// NewPropertyRepository creates a PropertyRepository backed by db.
func NewPropertyRepository(db database.Querier) PropertyRepository {
	return &propertyRepository{db: db}
}

var table = models.PropertyRecord{}.TableName()

// enrichmentIdentityColumns are the identity-level columns a subject lookup may fill.
var enrichmentIdentityColumns = []string{"latitude", "longitude", "county", "parcel_number"}

func (r *propertyRepository) Create(ctx context.Context, identity models.Identity) (int64, error) {
	rec := &models.PropertyRecord{Identity: identity}
	cols := models.IdentityColumns()

	names := append([]string{"file_number"}, models.ColumnNames(cols)...)
	args := make([]any, 0, len(names))
	args = append(args, identity.FileNumber)
	for _, c := range cols {
		args = append(args, c.Value(rec))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(names, ", "), placeholders(1, len(names)),
	)

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateFileNumber
		}
		return 0, fmt.Errorf("failed to insert record %s: %w", identity.FileNumber, err)
	}
	return id, nil
}

func (r *propertyRepository) Exists(ctx context.Context, fileNumber string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE file_number = $1)", table)

	var exists bool
	if err := r.db.QueryRow(ctx, query, fileNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check file number %s: %w", fileNumber, err)
	}
	return exists, nil
}

func (r *propertyRepository) FindByFileNumber(ctx context.Context, fileNumber string) (*models.PropertyRecord, error) {
	cols := models.RecordColumns()
	query := fmt.Sprintf(
		"SELECT id, file_number, %s, created_at, updated_at FROM %s WHERE file_number = $1",
		strings.Join(models.ColumnNames(cols), ", "), table,
	)

	rec := &models.PropertyRecord{}
	dest := []any{&rec.ID, &rec.FileNumber}
	dest = append(dest, scanTargets(rec, cols)...)
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)

	if err := r.db.QueryRow(ctx, query, fileNumber).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query record %s: %w", fileNumber, err)
	}
	return rec, nil
}

func (r *propertyRepository) UpdateEnrichment(ctx context.Context, fileNumber string, e models.Enrichment) error {
	cols := make([]models.Column, 0, len(enrichmentIdentityColumns))
	for _, name := range enrichmentIdentityColumns {
		col, _ := models.LookupColumn(name)
		cols = append(cols, col)
	}
	cols = append(cols, models.RoleColumns(models.RoleSubject)...)

	return r.merge(ctx, fileNumber, cols, e.Record(models.RoleSubject))
}

func (r *propertyRepository) UpdateComparableEnrichment(ctx context.Context, fileNumber string, compIndex int, e models.Enrichment) error {
	role, err := models.CompRole(compIndex)
	if err != nil {
		return ErrInvalidCompIndex
	}
	return r.merge(ctx, fileNumber, models.RoleColumns(role), e.Record(role))
}

// merge writes cols as COALESCE(column, value) so stored values win over
// incoming ones and NULL arguments leave the column unchanged.
func (r *propertyRepository) merge(ctx context.Context, fileNumber string, cols []models.Column, src *models.PropertyRecord) error {
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	args = append(args, fileNumber)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = COALESCE(%s, $%d)", c.Name, c.Name, i+2)
		args = append(args, c.Value(src))
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE file_number = $1",
		table, strings.Join(sets, ", "),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to merge enrichment for %s: %w", fileNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *propertyRepository) UpsertFull(ctx context.Context, fileNumber string, sub models.FullSubmission) error {
	cols := models.SubmissionColumns()
	src := sub.Record()

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	args = append(args, fileNumber)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c.Name, i+2)
		args = append(args, c.Value(src))
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE file_number = $1",
		table, strings.Join(sets, ", "),
	)

	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to write submission for %s: %w", fileNumber, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (r *propertyRepository) ReadSubjectProjection(ctx context.Context, fileNumber string) (*models.SubjectView, error) {
	cols := append(models.IdentityColumns(), models.RoleColumns(models.RoleSubject)...)
	query := fmt.Sprintf(
		"SELECT file_number, %s FROM %s WHERE file_number = $1",
		strings.Join(models.ColumnNames(cols), ", "), table,
	)

	rec := &models.PropertyRecord{}
	dest := append([]any{&rec.FileNumber}, scanTargets(rec, cols)...)

	if err := r.db.QueryRow(ctx, query, fileNumber).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query subject for %s: %w", fileNumber, err)
	}
	return rec.SubjectView(), nil
}

func (r *propertyRepository) ReadCompProjection(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error) {
	role, err := models.CompRole(compIndex)
	if err != nil {
		return nil, ErrInvalidCompIndex
	}

	cols := models.RoleColumns(role)
	query := fmt.Sprintf(
		"SELECT file_number, %[1]s FROM %[2]s WHERE file_number = $1 AND %[3]s_address = $2 AND %[3]s_city = $3 AND %[3]s_zip = $4",
		strings.Join(models.ColumnNames(cols), ", "), table, role,
	)

	rec := &models.PropertyRecord{}
	dest := append([]any{&rec.FileNumber}, scanTargets(rec, cols)...)

	err = r.db.QueryRow(ctx, query, fileNumber, filter.Address, filter.City, filter.Zip).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s for %s: %w", role, fileNumber, err)
	}

	return &models.CompView{
		FileNumber:           rec.FileNumber,
		CompNumber:           compIndex,
		ComparableAttributes: rec.Comps[compIndex-1],
	}, nil
}

func (r *propertyRepository) ListRecent(ctx context.Context, limit int) ([]models.RecordSummary, error) {
	query := fmt.Sprintf(
		"SELECT file_number, address, city, state, updated_at FROM %s ORDER BY updated_at DESC LIMIT $1",
		table,
	)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var results []models.RecordSummary
	for rows.Next() {
		var s models.RecordSummary
		if err := rows.Scan(&s.FileNumber, &s.Address, &s.City, &s.State, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record summary: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	if results == nil {
		results = []models.RecordSummary{}
	}
	return results, nil
}

func scanTargets(rec *models.PropertyRecord, cols []models.Column) []any {
	dest := make([]any, len(cols))
	for i, c := range cols {
		dest[i] = c.Pointer(rec)
	}
	return dest
}

// placeholders returns "$from, ..., $(from+n-1)".
func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}
