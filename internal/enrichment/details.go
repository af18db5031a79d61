package enrichment

import (
	"math"
	"strconv"
	"strings"

	"github.com/stwalsh4118/valuator/api/internal/models"
)

// PropertyDetails is the normalized result of a property lookup.
// Nil fields were absent from the response.
type PropertyDetails struct {
	County       *string  `json:"county"`
	ParcelNumber *string  `json:"parcel_number"`
	Street       *string  `json:"street"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Zip          *string  `json:"zip"`
	GLA          *float64 `json:"gla"`
	SiteSize     *float64 `json:"site_size"`
	YearBuilt    *int     `json:"year_built"`
	Beds         *int     `json:"beds"`
	FullBaths    *int     `json:"full_baths"`
	HalfBaths    *int     `json:"half_baths"`
	Condition    *string  `json:"condition"`
	View         *string  `json:"view"`
	Garage       *string  `json:"garage"`
	Basement     *string  `json:"basement"`
}

// ToEnrichment converts the details into a store-side partial update.
func (d *PropertyDetails) ToEnrichment() models.Enrichment {
	e := models.Enrichment{
		County:       d.County,
		ParcelNumber: d.ParcelNumber,
		Address:      d.Street,
		City:         d.City,
		State:        d.State,
		Zip:          d.Zip,
	}
	e.Attributes.GLA = d.GLA
	e.Attributes.SiteSize = d.SiteSize
	e.Attributes.YearBuilt = d.YearBuilt
	e.Attributes.Beds = d.Beds
	e.Attributes.FullBaths = d.FullBaths
	e.Attributes.HalfBaths = d.HalfBaths
	e.Attributes.Condition = d.Condition
	e.Attributes.View = d.View
	e.Attributes.Garage = d.Garage
	e.Attributes.Basement = d.Basement
	return e
}

func detailsFromAttom(p attomProperty) *PropertyDetails {
	rooms := p.Building.Rooms
	d := &PropertyDetails{
		County:       nonEmpty(p.Area.CountySecSubd),
		ParcelNumber: nonEmpty(p.Identifier.APN),
		Street:       nonEmpty(p.Address.Line1),
		City:         nonEmpty(p.Address.Locality),
		State:        nonEmpty(p.Address.CountrySubd),
		Zip:          nonEmpty(p.Address.Postal1),
		GLA:          p.Building.Size.LivingSize,
		SiteSize:     p.Lot.LotSize2,
		YearBuilt:    p.Summary.YearBuilt,
		Beds:         rooms.Beds,
		FullBaths:    rooms.BathsFull,
		HalfBaths:    HalfBaths(rooms.BathsFull, rooms.BathsTotal),
		Condition:    nonEmpty(p.Building.Construction.Condition),
		View:         nonEmpty(p.Building.Summary.View),
		Garage:       nonEmpty(p.Building.Parking.GarageType),
	}
	if size := p.Building.Interior.BsmtSize; size != nil {
		s := strconv.FormatFloat(*size, 'f', -1, 64)
		d.Basement = &s
	}
	return d
}

// HalfBaths derives the half-bath count from the full and total bath counts.
// A fractional total counts its remainder as one half bath. When the full
// count is known but the total is not, the result is zero; without a full
// count the result is absent.
func HalfBaths(full *int, total *float64) *int {
	if full == nil {
		return nil
	}
	half := 0
	if total != nil {
		half = int(math.Ceil(*total - float64(*full)))
		if half < 0 {
			half = 0
		}
	}
	return &half
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
