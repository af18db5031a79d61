package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the storage kind of a column.
type Kind int

const (
	KindText Kind = iota
	KindReal
	KindInteger
)

// SQLType returns the PostgreSQL column type for the kind.
func (k Kind) SQLType() string {
	switch k {
	case KindReal:
		return "DOUBLE PRECISION"
	case KindInteger:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInteger:
		return "integer"
	default:
		return "text"
	}
}

// Column describes one nullable column of valuator_data and how it maps onto
// PropertyRecord. The column list below is the authoritative field set: DDL,
// scans, full writes and form decoding all derive from it.
type Column struct {
	ref func(*PropertyRecord) any
	// Name is the SQL column name, also the form field name.
	Name string
	// Field is the name within its role block ("gla", "address", ...).
	Field string
	// Alias is an alternative form field name accepted on decode.
	Alias string
	Role  Role
	Kind  Kind
}

// Pointer returns the address of the record field backing the column
// (a **string, **float64 or **int), suitable as a Scan destination.
func (c Column) Pointer(rec *PropertyRecord) any {
	return c.ref(rec)
}

// Value returns the record's current value for the column as a nullable
// pointer (*string, *float64 or *int), suitable as a query argument.
func (c Column) Value(rec *PropertyRecord) any {
	switch p := c.ref(rec).(type) {
	case **string:
		return *p
	case **float64:
		return *p
	case **int:
		return *p
	default:
		return nil
	}
}

// IsNull reports whether the record holds no value for the column.
func (c Column) IsNull(rec *PropertyRecord) bool {
	switch p := c.ref(rec).(type) {
	case **string:
		return *p == nil
	case **float64:
		return *p == nil
	case **int:
		return *p == nil
	default:
		return true
	}
}

// Copy sets dst's value for the column to src's value.
func (c Column) Copy(dst, src *PropertyRecord) {
	switch d := c.ref(dst).(type) {
	case **string:
		*d = *c.ref(src).(**string)
	case **float64:
		*d = *c.ref(src).(**float64)
	case **int:
		*d = *c.ref(src).(**int)
	}
}

// Set parses raw according to the column kind and stores it on rec.
// Blank input stores NULL.
func (c Column) Set(rec *PropertyRecord, raw string) error {
	raw = strings.TrimSpace(raw)
	switch p := c.ref(rec).(type) {
	case **string:
		*p = nil
		if raw != "" {
			*p = &raw
		}
	case **float64:
		*p = nil
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(raw), 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		*p = &f
	case **int:
		*p = nil
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		*p = &n
	}
	return nil
}

type attributeField struct {
	ref   func(*PropertyAttributes) any
	name  string
	alias string
	kind  Kind
}

// attributeFields lists the PropertyAttributes block in column order.
var attributeFields = []attributeField{
	{name: "data_source", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.DataSource }},
	{name: "mls", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.MLS }},
	{name: "original_list_price", alias: "orig_list_price", kind: KindReal, ref: func(a *PropertyAttributes) any { return &a.OriginalListPrice }},
	{name: "original_list_date", alias: "orig_list_date", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.OriginalListDate }},
	{name: "sale_price", kind: KindReal, ref: func(a *PropertyAttributes) any { return &a.SalePrice }},
	{name: "sale_date", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.SaleDate }},
	{name: "cdom", kind: KindInteger, ref: func(a *PropertyAttributes) any { return &a.CDOM }},
	{name: "site_size", kind: KindReal, ref: func(a *PropertyAttributes) any { return &a.SiteSize }},
	{name: "location", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.Location }},
	{name: "view", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.View }},
	{name: "year_built", kind: KindInteger, ref: func(a *PropertyAttributes) any { return &a.YearBuilt }},
	{name: "des_style", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.DesignStyle }},
	{name: "condition", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.Condition }},
	{name: "beds", kind: KindInteger, ref: func(a *PropertyAttributes) any { return &a.Beds }},
	{name: "full_baths", kind: KindInteger, ref: func(a *PropertyAttributes) any { return &a.FullBaths }},
	{name: "half_baths", kind: KindInteger, ref: func(a *PropertyAttributes) any { return &a.HalfBaths }},
	{name: "gla", kind: KindReal, ref: func(a *PropertyAttributes) any { return &a.GLA }},
	{name: "basement", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.Basement }},
	{name: "garage", kind: KindText, ref: func(a *PropertyAttributes) any { return &a.Garage }},
}

var (
	identityColumns   []Column
	submissionColumns []Column
	roleColumns       = map[Role][]Column{}
	columnsByName     = map[string]Column{}
)

func init() {
	identityColumns = []Column{
		identityColumn("address", KindText, func(r *PropertyRecord) any { return &r.Address }),
		identityColumn("unit", KindText, func(r *PropertyRecord) any { return &r.Unit }),
		identityColumn("city", KindText, func(r *PropertyRecord) any { return &r.City }),
		identityColumn("state", KindText, func(r *PropertyRecord) any { return &r.State }),
		identityColumn("zip", KindText, func(r *PropertyRecord) any { return &r.Zip }),
		identityColumn("latitude", KindReal, func(r *PropertyRecord) any { return &r.Latitude }),
		identityColumn("longitude", KindReal, func(r *PropertyRecord) any { return &r.Longitude }),
		identityColumn("property_type", KindText, func(r *PropertyRecord) any { return &r.PropertyType }),
		identityColumn("borrower_name", KindText, func(r *PropertyRecord) any { return &r.BorrowerName }),
		identityColumn("county", KindText, func(r *PropertyRecord) any { return &r.County }),
		identityColumn("parcel_number", KindText, func(r *PropertyRecord) any { return &r.ParcelNumber }),
	}

	subject := attributeColumns(RoleSubject)
	subject = append(subject, Column{
		Name:  "additional_comments",
		Field: "additional_comments",
		Role:  RoleSubject,
		Kind:  KindText,
		ref:   func(r *PropertyRecord) any { return &r.Subject.AdditionalComments },
	})
	roleColumns[RoleSubject] = subject
	submissionColumns = append(submissionColumns, subject...)

	for i := 1; i <= MaxComparables; i++ {
		role, _ := CompRole(i)
		slot := i - 1
		comp := []Column{
			compAddressColumn(role, "address", func(r *PropertyRecord) any { return &r.Comps[slot].Address }),
			compAddressColumn(role, "unit", func(r *PropertyRecord) any { return &r.Comps[slot].Unit }),
			compAddressColumn(role, "city", func(r *PropertyRecord) any { return &r.Comps[slot].City }),
			compAddressColumn(role, "state", func(r *PropertyRecord) any { return &r.Comps[slot].State }),
			compAddressColumn(role, "zip", func(r *PropertyRecord) any { return &r.Comps[slot].Zip }),
		}
		comp = append(comp, attributeColumns(role)...)
		roleColumns[role] = comp
		submissionColumns = append(submissionColumns, comp...)
	}

	for _, c := range RecordColumns() {
		columnsByName[c.Name] = c
	}
}

func identityColumn(name string, kind Kind, ref func(*PropertyRecord) any) Column {
	return Column{Name: name, Field: name, Role: RoleIdentity, Kind: kind, ref: ref}
}

func compAddressColumn(role Role, field string, ref func(*PropertyRecord) any) Column {
	return Column{Name: string(role) + "_" + field, Field: field, Role: role, Kind: KindText, ref: ref}
}

func attributeColumns(role Role) []Column {
	cols := make([]Column, 0, len(attributeFields))
	for _, f := range attributeFields {
		f := f
		c := Column{
			Name:  string(role) + "_" + f.name,
			Field: f.name,
			Role:  role,
			Kind:  f.kind,
			ref:   func(r *PropertyRecord) any { return f.ref(r.attributes(role)) },
		}
		// The comparable blocks of the form post the shortened names.
		if f.alias != "" && role != RoleSubject {
			c.Alias = string(role) + "_" + f.alias
		}
		cols = append(cols, c)
	}
	return cols
}

// IdentityColumns returns the step-1 and enrichment columns, excluding file_number.
func IdentityColumns() []Column {
	return append([]Column(nil), identityColumns...)
}

// SubmissionColumns returns the authoritative set of columns written by a
// full step-2 submission, in table order.
func SubmissionColumns() []Column {
	return append([]Column(nil), submissionColumns...)
}

// RoleColumns returns the columns of one subject or comparable block.
func RoleColumns(role Role) []Column {
	return append([]Column(nil), roleColumns[role]...)
}

// RecordColumns returns every nullable column of valuator_data in table order.
func RecordColumns() []Column {
	cols := make([]Column, 0, len(identityColumns)+len(submissionColumns))
	cols = append(cols, identityColumns...)
	cols = append(cols, submissionColumns...)
	return cols
}

// LookupColumn finds a column by its SQL name.
func LookupColumn(name string) (Column, bool) {
	c, ok := columnsByName[name]
	return c, ok
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
