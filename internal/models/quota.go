package models

import "time"

// Package is a purchasable listing quota bundle.
type Package struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Quota       int     `json:"quota"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Free reports whether the package costs nothing.
func (p Package) Free() bool {
	return p.Price <= 0
}

var (
	PackageBasic = Package{ID: "basic", Name: "Basic Package", Quota: 10, Price: 0, Description: "Post 10 listings/month, free"}
	PackagePro   = Package{ID: "pro", Name: "Pro Package", Quota: 50, Price: 200000, Description: "Post 50 listings/month, special for agents"}
)

// Packages lists the catalogue in display order.
func Packages() []Package {
	return []Package{PackageBasic, PackagePro}
}

// FindPackage looks a package up by id.
func FindPackage(id string) (Package, bool) {
	for _, p := range Packages() {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// QuotaState is the stored per-user package selection and balance.
type QuotaState struct {
	Selected  string `json:"selected"`
	Remaining int    `json:"remaining"`
}

// QuotaEntry is one ledger row. Value is signed: grants are positive, spends negative.
type QuotaEntry struct {
	ID     string    `json:"id,omitempty"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
	Value  int       `json:"value"`
}
