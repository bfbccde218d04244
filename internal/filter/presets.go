package filter

import "fmt"

// PricePreset is one entry of the price dropdown.
type PricePreset struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Key is the "min-max" form value of the preset.
func (p PricePreset) Key() string {
	return fmt.Sprintf("%s-%s", formatPrice(p.Min), formatPrice(p.Max))
}

var PricePresets = []PricePreset{
	{Label: "All", Min: 0, Max: MaxPrice},
	{Label: "Under 1B", Min: 0, Max: 1_000_000_000},
	{Label: "1B - 3B", Min: 1_000_000_000, Max: 3_000_000_000},
	{Label: "3B - 5B", Min: 3_000_000_000, Max: 5_000_000_000},
	{Label: "Above 5B", Min: 5_000_000_000, Max: MaxPrice},
}

func FindPricePreset(key string) (PricePreset, bool) {
	for _, p := range PricePresets {
		if p.Key() == key {
			return p, true
		}
	}
	return PricePreset{}, false
}

// Option is a select entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	BedroomPresets = []Option{
		{Value: All, Label: "All"},
		{Value: "1", Label: "1+"},
		{Value: "2", Label: "2+"},
		{Value: "3", Label: "3+"},
		{Value: "4", Label: "4+"},
	}
	ListingTypeOptions = []Option{
		{Value: All, Label: "All"},
		{Value: "SALE", Label: "For Sale"},
		{Value: "RENT", Label: "For Rent"},
	}
	SoldOptions = []Option{
		{Value: SoldAll, Label: "All"},
		{Value: SoldOnly, Label: "Sold"},
		{Value: SoldNot, Label: "Not Sold"},
	}
)
