// Package filter holds the listing search predicates of a browsing session
// and turns them into backend query parameters.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"proptech/portal/internal/models"
)

// All is the no-op value of the select style fields.
const All = "all"

// MaxPrice is the upper end of the price slider; a range ending here has no
// upper bound.
const MaxPrice float64 = 10_000_000_000

const (
	SoldAll  = All
	SoldOnly = "sold"
	SoldNot  = "not_sold"
)

// State is the filter form. Zero values are not meaningful; start from Default.
type State struct {
	ListingType  string     `json:"listingType"`
	PropertyType string     `json:"propertyType"`
	MinBedrooms  string     `json:"minBedrooms"`
	PriceRange   [2]float64 `json:"priceRange"`
	Address      string     `json:"address"`
	Sold         string     `json:"sold"`
}

func Default() State {
	return State{
		ListingType:  All,
		PropertyType: All,
		MinBedrooms:  All,
		PriceRange:   [2]float64{0, MaxPrice},
		Sold:         SoldAll,
	}
}

// Validate rejects values the form could never produce.
func (s State) Validate() error {
	if s.ListingType != All && !models.ListingType(s.ListingType).Valid() {
		return fmt.Errorf("invalid listing type %q", s.ListingType)
	}
	if s.PropertyType != All && !models.PropertyType(s.PropertyType).Valid() {
		return fmt.Errorf("invalid property type %q", s.PropertyType)
	}
	if s.MinBedrooms != All {
		n, err := strconv.Atoi(s.MinBedrooms)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid bedrooms %q", s.MinBedrooms)
		}
	}
	lo, hi := s.PriceRange[0], s.PriceRange[1]
	if lo < 0 || hi > MaxPrice || lo > hi {
		return fmt.Errorf("invalid price range [%v, %v]", lo, hi)
	}
	switch s.Sold {
	case SoldAll, SoldOnly, SoldNot:
	default:
		return fmt.Errorf("invalid sold filter %q", s.Sold)
	}
	return nil
}

// Params are the search predicates actually sent to the backend. Nil and
// empty fields are omitted from the query.
type Params struct {
	ListingType  models.ListingType  `json:"listingType,omitempty"`
	PropertyType models.PropertyType `json:"propertyType,omitempty"`
	MinBedrooms  *int                `json:"minBedrooms,omitempty"`
	MinPrice     *float64            `json:"minPrice,omitempty"`
	MaxPrice     *float64            `json:"maxPrice,omitempty"`
	Address      string              `json:"address,omitempty"`
}

// Params derives the backend predicates, leaving out every field that holds
// its no-op value.
func (s State) Params() Params {
	var p Params
	if s.ListingType != All {
		p.ListingType = models.ListingType(s.ListingType)
	}
	if s.PropertyType != All {
		p.PropertyType = models.PropertyType(s.PropertyType)
	}
	if s.MinBedrooms != All {
		if n, err := strconv.Atoi(s.MinBedrooms); err == nil {
			p.MinBedrooms = &n
		}
	}
	if lo := s.PriceRange[0]; lo > 0 {
		p.MinPrice = &lo
	}
	if hi := s.PriceRange[1]; hi < MaxPrice {
		p.MaxPrice = &hi
	}
	if addr := strings.TrimSpace(s.Address); addr != "" {
		p.Address = addr
	}
	return p
}

// Values encodes p as a query string.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.ListingType != "" {
		v.Set("listingType", string(p.ListingType))
	}
	if p.PropertyType != "" {
		v.Set("propertyType", string(p.PropertyType))
	}
	if p.MinBedrooms != nil {
		v.Set("minBedrooms", strconv.Itoa(*p.MinBedrooms))
	}
	if p.MinPrice != nil {
		v.Set("minPrice", formatPrice(*p.MinPrice))
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", formatPrice(*p.MaxPrice))
	}
	if p.Address != "" {
		v.Set("address", p.Address)
	}
	return v
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FromQuery seeds a state from the page URL: type=SALE|RENT and
// province=<name>. The second result reports whether anything was seeded.
func FromQuery(q url.Values) (State, bool) {
	s := Default()
	return s, s.Seed(q)
}

// Seed applies the URL parameters onto s and reports whether any applied.
func (s *State) Seed(q url.Values) bool {
	seeded := false
	if t := q.Get("type"); t == string(models.ListingTypeSale) || t == string(models.ListingTypeRent) {
		s.ListingType = t
		seeded = true
	}
	if province := q.Get("province"); province != "" {
		s.Address = province
		seeded = true
	}
	return seeded
}

// Matches applies the sold filter, which the search endpoint does not support.
func (s State) Matches(l models.Listing) bool {
	switch s.Sold {
	case SoldOnly:
		return l.IsSold
	case SoldNot:
		return !l.IsSold
	}
	return true
}

// Patch is a partial form update; nil fields are left alone.
type Patch struct {
	ListingType  *string     `json:"listingType"`
	PropertyType *string     `json:"propertyType"`
	MinBedrooms  *string     `json:"minBedrooms"`
	PriceRange   *[2]float64 `json:"priceRange"`
	Price        *string     `json:"price"`
	Address      *string     `json:"address"`
	Sold         *string     `json:"sold"`
	Reset        bool        `json:"reset"`
}

// Apply writes the patch onto s. Price takes a preset key and wins over
// PriceRange when both are given.
func (p Patch) Apply(s *State) error {
	if p.Reset {
		*s = Default()
	}
	if p.ListingType != nil {
		s.ListingType = *p.ListingType
	}
	if p.PropertyType != nil {
		s.PropertyType = *p.PropertyType
	}
	if p.MinBedrooms != nil {
		s.MinBedrooms = *p.MinBedrooms
	}
	if p.PriceRange != nil {
		s.PriceRange = *p.PriceRange
	}
	if p.Price != nil {
		preset, ok := FindPricePreset(*p.Price)
		if !ok {
			return fmt.Errorf("unknown price preset %q", *p.Price)
		}
		s.PriceRange = [2]float64{preset.Min, preset.Max}
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Sold != nil {
		s.Sold = *p.Sold
	}
	return nil
}
