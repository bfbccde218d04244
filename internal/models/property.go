package models

// PropertyType classifies the physical property.
type PropertyType string

const (
	PropertyTypeUnknown    PropertyType = "UNKNOWN_PROPERTY"
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeVilla      PropertyType = "VILLA"
	PropertyTypeOffice     PropertyType = "OFFICE"
	PropertyTypeRetail     PropertyType = "RETAIL"
	PropertyTypeIndustrial PropertyType = "INDUSTRIAL"
	PropertyTypeLand       PropertyType = "LAND"
)

var propertyTypes = map[PropertyType]bool{
	PropertyTypeUnknown: true, PropertyTypeApartment: true, PropertyTypeHouse: true,
	PropertyTypeVilla: true, PropertyTypeOffice: true, PropertyTypeRetail: true,
	PropertyTypeIndustrial: true, PropertyTypeLand: true,
}

func (pt PropertyType) Valid() bool {
	return propertyTypes[pt]
}

type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	Country    string  `json:"country"`
	PostalCode string  `json:"postalCode"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Line renders the address as "street, city, province".
func (a Address) Line() string {
	return joinNonEmpty(", ", a.Street, a.City, a.Province)
}

type Property struct {
	PropertyID    string       `json:"propertyId"`
	Address       Address      `json:"address"`
	PropertyType  PropertyType `json:"propertyType"`
	YearBuilt     int          `json:"yearBuilt"`
	LotSize       float64      `json:"lotSize"`
	ParkingSpaces int          `json:"parkingSpaces"`
	GarageSize    float64      `json:"garageSize"`
	Amenities     []string     `json:"amenities"`
	HoaFee        float64      `json:"hoaFee"`
	IsActive      bool         `json:"isActive"`
}

// AddPropertyRequest is the create body of the property API.
type AddPropertyRequest struct {
	Address       Address      `json:"address"`
	PropertyType  PropertyType `json:"propertyType"`
	YearBuilt     int          `json:"yearBuilt"`
	LotSize       float64      `json:"lotSize"`
	ParkingSpaces int          `json:"parkingSpaces"`
	GarageSize    float64      `json:"garageSize"`
	Amenities     []string     `json:"amenities"`
	HoaFee        float64      `json:"hoaFee"`
}

// UpdatePropertyRequest is a partial property update.
type UpdatePropertyRequest struct {
	Address       *Address      `json:"address,omitempty"`
	PropertyType  *PropertyType `json:"propertyType,omitempty"`
	YearBuilt     *int          `json:"yearBuilt,omitempty"`
	LotSize       *float64      `json:"lotSize,omitempty"`
	ParkingSpaces *int          `json:"parkingSpaces,omitempty"`
	GarageSize    *float64      `json:"garageSize,omitempty"`
	Amenities     []string      `json:"amenities,omitempty"`
	HoaFee        *float64      `json:"hoaFee,omitempty"`
	IsActive      *bool         `json:"isActive,omitempty"`
}
