package models

import (
	"fmt"
	"time"
)

// MaxComparables is the number of comparable slots stored per record.
const MaxComparables = 3

// Role identifies which property block of a record a column belongs to.
type Role string

const (
	RoleIdentity Role = "identity"
	RoleSubject  Role = "subject"
	RoleComp1    Role = "comp1"
	RoleComp2    Role = "comp2"
	RoleComp3    Role = "comp3"
)

// CompRole returns the role for a 1-based comparable index.
func CompRole(index int) (Role, error) {
	switch index {
	case 1:
		return RoleComp1, nil
	case 2:
		return RoleComp2, nil
	case 3:
		return RoleComp3, nil
	default:
		return "", fmt.Errorf("comparable index must be between 1 and %d, got %d", MaxComparables, index)
	}
}

// compIndex returns the 0-based slot for a comparable role, or -1.
func (r Role) compIndex() int {
	switch r {
	case RoleComp1:
		return 0
	case RoleComp2:
		return 1
	case RoleComp3:
		return 2
	default:
		return -1
	}
}

// Identity holds the subject identity captured at step 1.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Identity struct {
	FileNumber   string   `json:"file_number"`
	Address      *string  `json:"address"`
	Unit         *string  `json:"unit"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Zip          *string  `json:"zip"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PropertyType *string  `json:"property_type"`
	BorrowerName *string  `json:"borrower_name"`
}

// PropertyAttributes is the attribute block shared by the subject and
// every comparable.
type PropertyAttributes struct {
	DataSource        *string  `json:"data_source"`
	MLS               *string  `json:"mls"`
	OriginalListPrice *float64 `json:"original_list_price"`
	OriginalListDate  *string  `json:"original_list_date"`
	SalePrice         *float64 `json:"sale_price"`
	SaleDate          *string  `json:"sale_date"`
	CDOM              *int     `json:"cdom"`
	SiteSize          *float64 `json:"site_size"`
	Location          *string  `json:"location"`
	View              *string  `json:"view"`
	YearBuilt         *int     `json:"year_built"`
	DesignStyle       *string  `json:"des_style"`
	Condition         *string  `json:"condition"`
	Beds              *int     `json:"beds"`
	FullBaths         *int     `json:"full_baths"`
	HalfBaths         *int     `json:"half_baths"`
	GLA               *float64 `json:"gla"`
	Basement          *string  `json:"basement"`
	Garage            *string  `json:"garage"`
}

// SubjectAttributes is the subject's attribute block plus free-text comments.
type SubjectAttributes struct {
	PropertyAttributes
	AdditionalComments *string `json:"additional_comments"`
}

// ComparableAttributes is one comparable: its own address block plus attributes.
type ComparableAttributes struct {
	Address *string `json:"address"`
	Unit    *string `json:"unit"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
	PropertyAttributes
}

// PropertyRecord is one appraisal file: a row of valuator_data.
type PropertyRecord struct {
	Identity
	CreatedAt    time.Time                            `json:"created_at"`
	UpdatedAt    time.Time                            `json:"updated_at"`
	County       *string                              `json:"county"`
	ParcelNumber *string                              `json:"parcel_number"`
	Subject      SubjectAttributes                    `json:"subject"`
	Comps        [MaxComparables]ComparableAttributes `json:"comps"`
	ID           int64                                `json:"id"`
}

// TableName is the wide property table.
func (PropertyRecord) TableName() string {
	return "valuator_data"
}

// attributes returns the attribute block for a subject or comparable role.
func (p *PropertyRecord) attributes(role Role) *PropertyAttributes {
	if role == RoleSubject {
		return &p.Subject.PropertyAttributes
	}
	if i := role.compIndex(); i >= 0 {
		return &p.Comps[i].PropertyAttributes
	}
	return nil
}

// FullSubmission is the step-2 payload: every subject and comparable attribute.
type FullSubmission struct {
	Subject SubjectAttributes
	Comps   [MaxComparables]ComparableAttributes
}

// Record places the submission into an otherwise empty record so column
// accessors can read it.
func (s FullSubmission) Record() *PropertyRecord {
	return &PropertyRecord{Subject: s.Subject, Comps: s.Comps}
}

// Enrichment is a partial update produced from external lookups. Nil fields
// mean "no data" and never overwrite stored values. The address block only
// applies to comparables.
type Enrichment struct {
	Latitude     *float64
	Longitude    *float64
	County       *string
	ParcelNumber *string
	Address      *string
	City         *string
	State        *string
	Zip          *string
	Attributes   PropertyAttributes
}

// IsEmpty reports whether the enrichment carries no data at all.
func (e Enrichment) IsEmpty() bool {
	return e.Latitude == nil && e.Longitude == nil && e.County == nil &&
		e.ParcelNumber == nil && e.Address == nil && e.City == nil &&
		e.State == nil && e.Zip == nil && e.Attributes == (PropertyAttributes{})
}

// Record places the enrichment into the slot for role so column accessors
// can read it. Identity-level fields only apply to the subject.
func (e Enrichment) Record(role Role) *PropertyRecord {
	rec := &PropertyRecord{}
	if role == RoleSubject {
		rec.Latitude = e.Latitude
		rec.Longitude = e.Longitude
		rec.County = e.County
		rec.ParcelNumber = e.ParcelNumber
		rec.Subject.PropertyAttributes = e.Attributes
		return rec
	}
	if i := role.compIndex(); i >= 0 {
		rec.Comps[i] = ComparableAttributes{
			Address:            e.Address,
			City:               e.City,
			State:              e.State,
			Zip:                e.Zip,
			PropertyAttributes: e.Attributes,
		}
	}
	return rec
}

// SubjectView is the flat subject projection served by the read API.
type SubjectView struct {
	FileNumber   string   `json:"file_number"`
	Address      *string  `json:"address"`
	Unit         *string  `json:"unit"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Zip          *string  `json:"zip"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PropertyType *string  `json:"property_type"`
	County       *string  `json:"county"`
	ParcelNumber *string  `json:"parcel_number"`
	SubjectAttributes
}

// SubjectView projects the record onto the subject read model.
func (p *PropertyRecord) SubjectView() *SubjectView {
	return &SubjectView{
		FileNumber:        p.FileNumber,
		Address:           p.Address,
		Unit:              p.Unit,
		City:              p.City,
		State:             p.State,
		Zip:               p.Zip,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		PropertyType:      p.PropertyType,
		County:            p.County,
		ParcelNumber:      p.ParcelNumber,
		SubjectAttributes: p.Subject,
	}
}

// CompView is the flat comparable projection served by the read API.
type CompView struct {
	FileNumber string `json:"file_number"`
	CompNumber int    `json:"comp_number"`
	ComparableAttributes
}

// CompFilter corroborates a comparable's identity before it is returned.
type CompFilter struct {
	Address string
	City    string
	Zip     string
}

// RecordSummary is a short listing entry for the dashboard.
type RecordSummary struct {
	UpdatedAt  time.Time `json:"updated_at"`
	FileNumber string    `json:"file_number"`
	Address    *string   `json:"address"`
	City       *string   `json:"city"`
	State      *string   `json:"state"`
}
