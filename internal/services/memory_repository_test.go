package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/repository"
)

// memoryPropertyRepository is an in-memory PropertyRepository with the same
// merge and overwrite rules as the SQL implementation.
type memoryPropertyRepository struct {
	mu      sync.Mutex
	records map[string]*models.PropertyRecord
	nextID  int64
}

func newMemoryPropertyRepository() *memoryPropertyRepository {
	return &memoryPropertyRepository{records: map[string]*models.PropertyRecord{}}
}

func (m *memoryPropertyRepository) Create(_ context.Context, identity models.Identity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[identity.FileNumber]; ok {
		return 0, repository.ErrDuplicateFileNumber
	}
	m.nextID++
	now := time.Now()
	m.records[identity.FileNumber] = &models.PropertyRecord{
		Identity:  identity,
		ID:        m.nextID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return m.nextID, nil
}

func (m *memoryPropertyRepository) Exists(_ context.Context, fileNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[fileNumber]
	return ok, nil
}

func (m *memoryPropertyRepository) FindByFileNumber(_ context.Context, fileNumber string) (*models.PropertyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[fileNumber]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryPropertyRepository) UpdateEnrichment(_ context.Context, fileNumber string, e models.Enrichment) error {
	var cols []models.Column
	for _, name := range []string{"latitude", "longitude", "county", "parcel_number"} {
		col, _ := models.LookupColumn(name)
		cols = append(cols, col)
	}
	cols = append(cols, models.RoleColumns(models.RoleSubject)...)
	return m.merge(fileNumber, cols, e.Record(models.RoleSubject))
}

func (m *memoryPropertyRepository) UpdateComparableEnrichment(_ context.Context, fileNumber string, compIndex int, e models.Enrichment) error {
	role, err := models.CompRole(compIndex)
	if err != nil {
		return repository.ErrInvalidCompIndex
	}
	return m.merge(fileNumber, models.RoleColumns(role), e.Record(role))
}

func (m *memoryPropertyRepository) merge(fileNumber string, cols []models.Column, src *models.PropertyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[fileNumber]
	if !ok {
		return repository.ErrRecordNotFound
	}
	for _, c := range cols {
		if c.IsNull(rec) {
			c.Copy(rec, src)
		}
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *memoryPropertyRepository) UpsertFull(_ context.Context, fileNumber string, sub models.FullSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[fileNumber]
	if !ok {
		return repository.ErrRecordNotFound
	}
	src := sub.Record()
	for _, c := range models.SubmissionColumns() {
		c.Copy(rec, src)
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (m *memoryPropertyRepository) ReadSubjectProjection(ctx context.Context, fileNumber string) (*models.SubjectView, error) {
	rec, _ := m.FindByFileNumber(ctx, fileNumber)
	if rec == nil {
		return nil, nil
	}
	return rec.SubjectView(), nil
}

func (m *memoryPropertyRepository) ReadCompProjection(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error) {
	if _, err := models.CompRole(compIndex); err != nil {
		return nil, repository.ErrInvalidCompIndex
	}
	rec, _ := m.FindByFileNumber(ctx, fileNumber)
	if rec == nil {
		return nil, nil
	}
	comp := rec.Comps[compIndex-1]
	if deref(comp.Address) != filter.Address || deref(comp.City) != filter.City || deref(comp.Zip) != filter.Zip {
		return nil, nil
	}
	return &models.CompView{FileNumber: rec.FileNumber, CompNumber: compIndex, ComparableAttributes: comp}, nil
}

func (m *memoryPropertyRepository) ListRecent(_ context.Context, limit int) ([]models.RecordSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RecordSummary{}
	for _, rec := range m.records {
		out = append(out, models.RecordSummary{
			FileNumber: rec.FileNumber,
			Address:    rec.Address,
			City:       rec.City,
			State:      rec.State,
			UpdatedAt:  rec.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
