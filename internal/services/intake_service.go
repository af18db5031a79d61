package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	"github.com/stwalsh4118/valuator/api/internal/logger"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/repository"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// MaxFileNumberLength bounds the business key.
const MaxFileNumberLength = 64

// DashboardLimit is the number of records listed on the dashboard.
const DashboardLimit = 50

// Warning is a non-fatal enrichment failure reported back to the caller.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// EnrichResult describes the outcome of a best-effort enrichment.
type EnrichResult struct {
	Warnings []Warning `json:"warnings"`
	Applied  bool      `json:"applied"`
}

// StartResult is returned once step 1 has created a record.
type StartResult struct {
	FileNumber string    `json:"file_number"`
	Warnings   []Warning `json:"warnings"`
	ID         int64     `json:"id"`
}

// IntakeService drives the two-step appraisal form.
type IntakeService interface {
	// Start validates the identity, creates the record and enriches it.
	// Returns ErrInvalidIdentity or ErrDuplicateFileNumber; enrichment
	// problems are reported as warnings.
	Start(ctx context.Context, identity models.Identity) (*StartResult, error)

	// Enrich re-runs the subject lookups for an existing record.
	// Returns ErrRecordNotFound if the file number is unknown.
	Enrich(ctx context.Context, fileNumber string) (*EnrichResult, error)

	// EnrichComparable looks up a comparable by address and fills its slot.
	EnrichComparable(ctx context.Context, fileNumber string, compIndex int, addr enrichment.Address) (*EnrichResult, error)

	// Complete writes the full step-2 submission, replacing all attribute columns.
	// Returns ErrRecordNotFound if step 1 never ran for the file number.
	Complete(ctx context.Context, fileNumber string, sub models.FullSubmission) error

	// CheckFileNumber reports whether the file number is already in use.
	CheckFileNumber(ctx context.Context, fileNumber string) (bool, error)

	// GetRecord returns the stored record or ErrRecordNotFound.
	GetRecord(ctx context.Context, fileNumber string) (*models.PropertyRecord, error)

	// GetSubject returns the subject projection or ErrRecordNotFound.
	GetSubject(ctx context.Context, fileNumber string) (*models.SubjectView, error)

	// GetComparable returns one comparable whose address, city and zip match
	// the filter. Returns ErrInvalidCompIndex or ErrRecordNotFound.
	GetComparable(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error)

	// Geocode resolves an address through the configured geocoder.
	Geocode(ctx context.Context, address string) (*enrichment.LatLng, error)

	// Dashboard lists recently updated records.
	Dashboard(ctx context.Context) ([]models.RecordSummary, error)
}

type intakeService struct {
	repo     repository.PropertyRepository
	geocoder enrichment.Geocoder
	lookup   enrichment.PropertyLookup
	log      *logger.Logger
}

// NewIntakeService creates an IntakeService.
func NewIntakeService(
	repo repository.PropertyRepository,
	geocoder enrichment.Geocoder,
	lookup enrichment.PropertyLookup,
	log *logger.Logger,
) IntakeService {
	return &intakeService{
		repo:     repo,
		geocoder: geocoder,
		lookup:   lookup,
		log:      log.WithComponent("intake"),
	}
}

func (s *intakeService) Start(ctx context.Context, identity models.Identity) (*StartResult, error) {
	identity.FileNumber = strings.TrimSpace(identity.FileNumber)
	if err := validateIdentity(identity); err != nil {
		s.log.Warn("Invalid identity provided", logger.Fields{
			"file_number": identity.FileNumber,
			"reason":      err.Error(),
		})
		return nil, err
	}

	id, err := s.repo.Create(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrDuplicateFileNumber) {
			s.log.Info("Duplicate file number rejected", logger.Fields{"file_number": identity.FileNumber})
			return nil, ErrDuplicateFileNumber
		}
		s.log.Error("Failed to create record", err, logger.Fields{"file_number": identity.FileNumber})
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.log.Info("Record created", logger.Fields{"file_number": identity.FileNumber, "id": id})

	result := &StartResult{ID: id, FileNumber: identity.FileNumber, Warnings: []Warning{}}

	enriched, err := s.enrichSubject(ctx, &models.PropertyRecord{Identity: identity})
	if err != nil {
		// The record exists, so a failed merge is only a warning.
		s.log.Error("Failed to store enrichment", err, logger.Fields{"file_number": identity.FileNumber})
		result.Warnings = append(result.Warnings, Warning{Source: "store", Message: "enrichment could not be saved"})
		return result, nil
	}
	result.Warnings = append(result.Warnings, enriched.Warnings...)
	return result, nil
}

func (s *intakeService) Enrich(ctx context.Context, fileNumber string) (*EnrichResult, error) {
	rec, err := s.GetRecord(ctx, fileNumber)
	if err != nil {
		return nil, err
	}
	return s.enrichSubject(ctx, rec)
}

// enrichSubject geocodes (when coordinates are missing) and looks up the
// subject, then merges whatever came back. External failures become warnings.
func (s *intakeService) enrichSubject(ctx context.Context, rec *models.PropertyRecord) (*EnrichResult, error) {
	result := &EnrichResult{Warnings: []Warning{}}
	addr := identityAddress(rec.Identity)
	fields := logger.Fields{"file_number": rec.FileNumber}

	var e models.Enrichment

	if rec.Latitude == nil || rec.Longitude == nil {
		loc, err := s.geocoder.Geocode(ctx, addr.OneLine())
		if err != nil {
			s.log.Warn("Geocoding failed", withErr(fields, err))
			result.Warnings = append(result.Warnings, Warning{Source: "geocode", Message: err.Error()})
		} else {
			e.Latitude = &loc.Latitude
			e.Longitude = &loc.Longitude
		}
	}

	details, err := s.lookup.LookupProperty(ctx, addr)
	if err != nil {
		s.log.Warn("Property lookup failed", withErr(fields, err))
		result.Warnings = append(result.Warnings, Warning{Source: "property_lookup", Message: err.Error()})
	} else {
		found := details.ToEnrichment()
		e.County = found.County
		e.ParcelNumber = found.ParcelNumber
		e.Attributes = found.Attributes
	}

	if e.IsEmpty() {
		return result, nil
	}

	if err := s.repo.UpdateEnrichment(ctx, rec.FileNumber, e); err != nil {
		return nil, fmt.Errorf("failed to merge enrichment: %w", err)
	}

	s.log.Info("Subject enriched", logger.Fields{
		"file_number": rec.FileNumber,
		"warnings":    len(result.Warnings),
	})
	result.Applied = true
	return result, nil
}

func (s *intakeService) EnrichComparable(ctx context.Context, fileNumber string, compIndex int, addr enrichment.Address) (*EnrichResult, error) {
	if _, err := models.CompRole(compIndex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompIndex, err)
	}

	fileNumber = strings.TrimSpace(fileNumber)
	exists, err := s.CheckFileNumber(ctx, fileNumber)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}

	result := &EnrichResult{Warnings: []Warning{}}
	fields := logger.Fields{"file_number": fileNumber, "comp": compIndex}

	details, err := s.lookup.LookupProperty(ctx, addr)
	if err != nil {
		s.log.Warn("Comparable lookup failed", withErr(fields, err))
		result.Warnings = append(result.Warnings, Warning{Source: "property_lookup", Message: err.Error()})
		return result, nil
	}

	e := details.ToEnrichment()
	e.County, e.ParcelNumber = nil, nil
	e.Address = firstNonNil(e.Address, nonBlank(addr.Street))
	e.City = firstNonNil(e.City, nonBlank(addr.City))
	e.State = firstNonNil(e.State, nonBlank(addr.State))
	e.Zip = firstNonNil(e.Zip, nonBlank(addr.Zip))

	if err := s.repo.UpdateComparableEnrichment(ctx, fileNumber, compIndex, e); err != nil {
		s.log.Error("Failed to merge comparable enrichment", err, fields)
		return nil, fmt.Errorf("failed to merge comparable enrichment: %w", err)
	}

	s.log.Info("Comparable enriched", fields)
	result.Applied = true
	return result, nil
}

func (s *intakeService) Complete(ctx context.Context, fileNumber string, sub models.FullSubmission) error {
	fileNumber = strings.TrimSpace(fileNumber)
	log := s.log.WithFileNumber(fileNumber)
	if err := s.repo.UpsertFull(ctx, fileNumber, sub); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			log.Info("Submission for unknown file number", nil)
			return ErrRecordNotFound
		}
		log.Error("Failed to store submission", err, nil)
		return fmt.Errorf("failed to store submission: %w", err)
	}

	log.Info("Submission stored", nil)
	return nil
}

func (s *intakeService) CheckFileNumber(ctx context.Context, fileNumber string) (bool, error) {
	fileNumber = strings.TrimSpace(fileNumber)
	exists, err := s.repo.Exists(ctx, fileNumber)
	if err != nil {
		s.log.Error("Failed to check file number", err, logger.Fields{"file_number": fileNumber})
		return false, fmt.Errorf("failed to check file number: %w", err)
	}
	return exists, nil
}

func (s *intakeService) GetRecord(ctx context.Context, fileNumber string) (*models.PropertyRecord, error) {
	fileNumber = strings.TrimSpace(fileNumber)
	rec, err := s.repo.FindByFileNumber(ctx, fileNumber)
	if err != nil {
		s.log.Error("Failed to load record", err, logger.Fields{"file_number": fileNumber})
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

func (s *intakeService) GetSubject(ctx context.Context, fileNumber string) (*models.SubjectView, error) {
	fileNumber = strings.TrimSpace(fileNumber)
	view, err := s.repo.ReadSubjectProjection(ctx, fileNumber)
	if err != nil {
		s.log.Error("Failed to read subject", err, logger.Fields{"file_number": fileNumber})
		return nil, fmt.Errorf("failed to read subject: %w", err)
	}
	if view == nil {
		return nil, ErrRecordNotFound
	}
	return view, nil
}

func (s *intakeService) GetComparable(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error) {
	if _, err := models.CompRole(compIndex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompIndex, err)
	}

	fileNumber = strings.TrimSpace(fileNumber)
	filter = models.CompFilter{
		Address: strings.TrimSpace(filter.Address),
		City:    strings.TrimSpace(filter.City),
		Zip:     strings.TrimSpace(filter.Zip),
	}

	view, err := s.repo.ReadCompProjection(ctx, fileNumber, compIndex, filter)
	if err != nil {
		s.log.Error("Failed to read comparable", err, logger.Fields{"file_number": fileNumber, "comp": compIndex})
		return nil, fmt.Errorf("failed to read comparable: %w", err)
	}
	if view == nil {
		return nil, ErrRecordNotFound
	}
	return view, nil
}

func (s *intakeService) Geocode(ctx context.Context, address string) (*enrichment.LatLng, error) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.Warn("Geocoding failed", logger.Fields{"address": address, "error": err.Error()})
		return nil, err
	}
	return loc, nil
}

func (s *intakeService) Dashboard(ctx context.Context) ([]models.RecordSummary, error) {
	records, err := s.repo.ListRecent(ctx, DashboardLimit)
	if err != nil {
		s.log.Error("Failed to list records", err, nil)
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func validateIdentity(identity models.Identity) error {
	if identity.FileNumber == "" {
		return fmt.Errorf("%w: file number is required", ErrInvalidIdentity)
	}
	if strings.Contains(identity.FileNumber, "/") {
		return fmt.Errorf("%w: file number must not contain '/'", ErrInvalidIdentity)
	}
	if len(identity.FileNumber) > MaxFileNumberLength {
		return fmt.Errorf("%w: file number must be at most %d characters", ErrInvalidIdentity, MaxFileNumberLength)
	}
	if (identity.Latitude == nil) != (identity.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be supplied together", ErrInvalidIdentity)
	}
	if lat := identity.Latitude; lat != nil && (*lat < MinLatitude || *lat > MaxLatitude) {
		return fmt.Errorf("%w: latitude must be between %f and %f, got %f",
			ErrInvalidIdentity, MinLatitude, MaxLatitude, *lat)
	}
	if lng := identity.Longitude; lng != nil && (*lng < MinLongitude || *lng > MaxLongitude) {
		return fmt.Errorf("%w: longitude must be between %f and %f, got %f",
			ErrInvalidIdentity, MinLongitude, MaxLongitude, *lng)
	}
	return nil
}

func identityAddress(id models.Identity) enrichment.Address {
	return enrichment.Address{
		Street: deref(id.Address),
		City:   deref(id.City),
		State:  deref(id.State),
		Zip:    deref(id.Zip),
	}
}

func withErr(fields logger.Fields, err error) logger.Fields {
	out := make(logger.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonNil(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
