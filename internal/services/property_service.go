package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"proptech/portal/internal/models"
)

// IPropertyService manages the properties agents attach listings to.
type IPropertyService interface {
	Get(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error)
	Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error)
	Delete(ctx context.Context, id string) error
}

// AmenityOptions are the amenities the listing form offers.
var AmenityOptions = []string{
	"Swimming Pool", "Gym", "Parking", "Security", "Elevator", "Air Conditioning",
	"Balcony", "Garden", "Playground", "BBQ Area", "Tennis Court", "Basketball Court",
	"Clubhouse", "24/7 Security", "CCTV", "Smart Home", "Pet Friendly", "Furnished",
	"Storage", "Laundry",
}

const earliestYearBuilt = 1800

type propertyService struct {
	properties PropertyAPI
	now        func() time.Time
	log        *slog.Logger
}

func NewPropertyService(properties PropertyAPI, log *slog.Logger) IPropertyService {
	return &propertyService{properties: properties, now: time.Now, log: log}
}

func (s *propertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	return s.properties.Get(ctx, id)
}

// Create registers a property. An empty type becomes UNKNOWN_PROPERTY and
// amenities are trimmed and deduplicated.
func (s *propertyService) Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error) {
	if req.PropertyType == "" {
		req.PropertyType = models.PropertyTypeUnknown
	}
	req.Amenities = normalizeAmenities(req.Amenities)
	if err := s.validate(req.Address, req.PropertyType, req.YearBuilt, req.LotSize, req.ParkingSpaces, req.GarageSize, req.HoaFee); err != nil {
		return nil, err
	}
	created, err := s.properties.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	s.log.Info("property created", "property_id", created.PropertyID, "type", created.PropertyType)
	return created, nil
}

// Update validates the merged result before sending the partial update.
func (s *propertyService) Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	current, err := s.properties.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	if req.Address != nil {
		merged.Address = *req.Address
	}
	if req.PropertyType != nil {
		merged.PropertyType = *req.PropertyType
	}
	if req.YearBuilt != nil {
		merged.YearBuilt = *req.YearBuilt
	}
	if req.LotSize != nil {
		merged.LotSize = *req.LotSize
	}
	if req.ParkingSpaces != nil {
		merged.ParkingSpaces = *req.ParkingSpaces
	}
	if req.GarageSize != nil {
		merged.GarageSize = *req.GarageSize
	}
	if req.HoaFee != nil {
		merged.HoaFee = *req.HoaFee
	}
	if req.Amenities != nil {
		req.Amenities = normalizeAmenities(req.Amenities)
	}
	if err := s.validate(merged.Address, merged.PropertyType, merged.YearBuilt, merged.LotSize, merged.ParkingSpaces, merged.GarageSize, merged.HoaFee); err != nil {
		return nil, err
	}
	updated, err := s.properties.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update property %s: %w", id, err)
	}
	return updated, nil
}

func (s *propertyService) Delete(ctx context.Context, id string) error {
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("property deleted", "property_id", id)
	return nil
}

func (s *propertyService) validate(addr models.Address, pt models.PropertyType, yearBuilt int, lotSize float64, parking int, garage, hoa float64) error {
	var errs []error
	if strings.TrimSpace(addr.Province) == "" && strings.TrimSpace(addr.City) == "" {
		errs = append(errs, errors.New("address needs a city or province"))
	}
	if addr.Latitude < -90 || addr.Latitude > 90 || addr.Longitude < -180 || addr.Longitude > 180 {
		errs = append(errs, fmt.Errorf("coordinate (%v, %v) out of range", addr.Latitude, addr.Longitude))
	}
	if !pt.Valid() {
		errs = append(errs, fmt.Errorf("unknown property type %q", pt))
	}
	if yearBuilt != 0 && (yearBuilt < earliestYearBuilt || yearBuilt > s.now().Year()+1) {
		errs = append(errs, fmt.Errorf("year built %d out of range", yearBuilt))
	}
	if lotSize < 0 || garage < 0 || hoa < 0 || parking < 0 {
		errs = append(errs, errors.New("sizes, fees and parking spaces must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a != "" && !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
