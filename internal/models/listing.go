package models

import "strings"

// ListingType is the transaction kind a listing is offered for.
type ListingType string

const (
	ListingTypeSale ListingType = "SALE"
	ListingTypeRent ListingType = "RENT"
)

// Valid reports whether lt is one of the backend listing types.
func (lt ListingType) Valid() bool {
	return lt == ListingTypeSale || lt == ListingTypeRent
}

// Listing is a marketplace offer of a property for sale or rent.
type Listing struct {
	ID               string      `json:"id"`
	PropertyID       string      `json:"propertyId"`
	Property         *Property   `json:"property,omitempty"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Price            float64     `json:"price"`
	ListingType      ListingType `json:"listingType"`
	AgentID          string      `json:"agentId"`
	Bedrooms         int         `json:"bedrooms"`
	Bathrooms        int         `json:"bathrooms"`
	Area             float64     `json:"area"`
	ImageURLs        []string    `json:"imageUrls"`
	FeaturedImageURL string      `json:"featuredImageUrl"`
	UpdatedAt        Timestamp   `json:"updatedAt"`
	IsActive         bool        `json:"isActive"`
	IsSold           bool        `json:"isSold"`
}

// Images returns the image set shown for the listing: the gallery when it
// has entries, otherwise the featured image alone.
func (l *Listing) Images() []string {
	if len(l.ImageURLs) > 0 {
		return l.ImageURLs
	}
	if l.FeaturedImageURL != "" {
		return []string{l.FeaturedImageURL}
	}
	return nil
}

// AddressLine joins the non-empty address parts of the embedded property.
func (l *Listing) AddressLine() string {
	if l.Property == nil {
		return ""
	}
	return l.Property.Address.Line()
}

// Coordinates returns the property position. ok is false when the property is
// missing or either coordinate is zero.
func (l *Listing) Coordinates() (lat, lng float64, ok bool) {
	if l.Property == nil {
		return 0, 0, false
	}
	lat, lng = l.Property.Address.Latitude, l.Property.Address.Longitude
	if lat == 0 || lng == 0 {
		return 0, 0, false
	}
	return lat, lng, true
}

// UpdateListingRequest is the partial update body accepted by the listing API.
type UpdateListingRequest struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	ListingType *ListingType `json:"listingType,omitempty"`
	Bedrooms    *int         `json:"bedrooms,omitempty"`
	Bathrooms   *int         `json:"bathrooms,omitempty"`
	Area        *float64     `json:"area,omitempty"`
	IsActive    *bool        `json:"isActive,omitempty"`
	IsSold      *bool        `json:"isSold,omitempty"`
}

// ImageUpload is one file of a multipart listing upload.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// AddListingRequest carries the fields and files of a new listing.
type AddListingRequest struct {
	PropertyID    string        `json:"propertyId"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	ListingType   ListingType   `json:"listingType"`
	AgentID       string        `json:"agentId"`
	Bedrooms      int           `json:"bedrooms"`
	Bathrooms     int           `json:"bathrooms"`
	Area          float64       `json:"area"`
	Images        []ImageUpload `json:"-"`
	FeaturedImage *ImageUpload  `json:"-"`
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}
