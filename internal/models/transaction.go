package models

// TransactionStatus is shared by sale and rental transactions. Expired only
// applies to rentals.
type TransactionStatus string

const (
	TransactionPending     TransactionStatus = "PENDING"
	TransactionDepositPaid TransactionStatus = "DEPOSIT_PAID"
	TransactionCompleted   TransactionStatus = "COMPLETED"
	TransactionCancelled   TransactionStatus = "CANCELLED"
	TransactionExpired     TransactionStatus = "EXPIRED"
)

// SaleTransaction records a sale (or attempted sale) of a listed property.
type SaleTransaction struct {
	ID              string            `json:"id"`
	PropertyID      string            `json:"propertyId"`
	ListingID       string            `json:"listingId"`
	BuyerName       string            `json:"buyerName"`
	BuyerIdentity   string            `json:"buyerIdentity"`
	Price           float64           `json:"price"`
	TransactionDate Timestamp         `json:"transactionDate"`
	DepositDate     Timestamp         `json:"depositDate"`
	AgentID         string            `json:"agentId"`
	Status          TransactionStatus `json:"status"`
	IsActive        bool              `json:"isActive"`
	CreatedAt       Timestamp         `json:"createdAt"`
	UpdatedAt       Timestamp         `json:"updatedAt"`
}

// RentalTransaction records a lease of a listed property.
type RentalTransaction struct {
	ID             string            `json:"id"`
	PropertyID     string            `json:"propertyId"`
	ListingID      string            `json:"listingId"`
	TenantName     string            `json:"tenantName"`
	TenantIdentity string            `json:"tenantIdentity"`
	Price          float64           `json:"price"`
	StartDate      Timestamp         `json:"startDate"`
	EndDate        Timestamp         `json:"endDate"`
	DepositDate    Timestamp         `json:"depositDate"`
	AgentID        string            `json:"agentId"`
	Status         TransactionStatus `json:"status"`
	IsActive       bool              `json:"isActive"`
	CreatedAt      Timestamp         `json:"createdAt"`
	UpdatedAt      Timestamp         `json:"updatedAt"`
}

type AddSaleTransactionRequest struct {
	ListingID     string            `json:"listingId"`
	BuyerName     string            `json:"buyerName"`
	BuyerIdentity string            `json:"buyerIdentity"`
	Price         float64           `json:"price"`
	AgentID       string            `json:"agentId"`
	Status        TransactionStatus `json:"status,omitempty"`
}

type AddRentalTransactionRequest struct {
	ListingID      string            `json:"listingId"`
	TenantName     string            `json:"tenantName"`
	TenantIdentity string            `json:"tenantIdentity"`
	Price          float64           `json:"price"`
	AgentID        string            `json:"agentId"`
	StartDate      string            `json:"startDate,omitempty"`
	EndDate        string            `json:"endDate,omitempty"`
	Status         TransactionStatus `json:"status,omitempty"`
}
