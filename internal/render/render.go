// Package render turns a listing result set into the list and map view of
// the listing page. Everything here is a pure function of its inputs.
package render

import (
	"fmt"

	"github.com/mmcloughlin/geohash"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"proptech/portal/internal/models"
)

// GeohashPrecision groups markers into cells roughly 150m across.
const GeohashPrecision = 7

// Default map centre, Ho Chi Minh City.
const (
	DefaultLat = 10.7769
	DefaultLng = 106.7009
)

type Options struct {
	DefaultLat float64
	DefaultLng float64
}

func DefaultOptions() Options {
	return Options{DefaultLat: DefaultLat, DefaultLng: DefaultLng}
}

type Card struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Price       float64            `json:"price"`
	PriceLabel  string             `json:"priceLabel"`
	ListingType models.ListingType `json:"listingType"`
	Bedrooms    int                `json:"bedrooms"`
	Bathrooms   int                `json:"bathrooms"`
	Area        float64            `json:"area"`
	Image       string             `json:"image,omitempty"`
	IsSold      bool               `json:"isSold"`
	DetailPath  string             `json:"detailPath"`
}

// Marker is one map pin. Fallback marks pins placed at the default centre
// because the property has no usable coordinates.
type Marker struct {
	ListingID  string  `json:"listingId"`
	Name       string  `json:"name"`
	PriceLabel string  `json:"priceLabel"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Fallback   bool    `json:"fallback"`
	Cell       string  `json:"cell"`
	// Shared counts the pins in the same geohash cell, this one included.
	Shared int `json:"shared"`
}

type View struct {
	Title   string   `json:"title"`
	Loading bool     `json:"loading"`
	Cards   []Card   `json:"cards"`
	Markers []Marker `json:"markers"`
}

// Render builds the view. Every listing gets exactly one card and one marker.
func Render(listings []models.Listing, loading bool, opts Options) View {
	v := View{
		Loading: loading,
		Cards:   make([]Card, 0, len(listings)),
		Markers: make([]Marker, 0, len(listings)),
	}
	if loading {
		v.Title = "Loading..."
	} else {
		v.Title = fmt.Sprintf("%d results found", len(listings))
	}

	cells := make(map[string]int, len(listings))
	for i := range listings {
		l := &listings[i]
		label := FormatPrice(l.Price)

		card := Card{
			ID:          l.ID,
			Name:        l.Name,
			Address:     l.AddressLine(),
			Price:       l.Price,
			PriceLabel:  label,
			ListingType: l.ListingType,
			Bedrooms:    l.Bedrooms,
			Bathrooms:   l.Bathrooms,
			Area:        l.Area,
			IsSold:      l.IsSold,
			DetailPath:  DetailPath(l.ID),
		}
		if imgs := l.Images(); len(imgs) > 0 {
			card.Image = imgs[0]
		}
		v.Cards = append(v.Cards, card)

		lat, lng, ok := l.Coordinates()
		if !ok {
			lat, lng = opts.DefaultLat, opts.DefaultLng
		}
		cell := geohash.EncodeWithPrecision(lat, lng, GeohashPrecision)
		cells[cell]++
		v.Markers = append(v.Markers, Marker{
			ListingID:  l.ID,
			Name:       l.Name,
			PriceLabel: label,
			Lat:        lat,
			Lng:        lng,
			Fallback:   !ok,
			Cell:       cell,
		})
	}
	for i := range v.Markers {
		v.Markers[i].Shared = cells[v.Markers[i].Cell]
	}
	return v
}

// DetailPath is the synthetic address pushed when a listing is opened.
func DetailPath(listingID string) string {
	return "/listings/" + listingID
}

// FormatPrice renders an amount the way Vietnamese users read it,
// e.g. "2.000.000.000 VNĐ".
func FormatPrice(v float64) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(0))) + " VNĐ"
}

// FormatNumber groups digits the Vietnamese way with up to one decimal.
func FormatNumber(v float64) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(1)))
}
