package models

type WalletStatus string

const (
	WalletActive   WalletStatus = "ACTIVE"
	WalletInactive WalletStatus = "INACTIVE"
)

type Wallet struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Balance   float64      `json:"balance"`
	Status    WalletStatus `json:"status"`
	CreatedAt Timestamp    `json:"createdAt"`
	UpdatedAt Timestamp    `json:"updatedAt"`
}

type PaymentType string

const (
	PaymentTopUp          PaymentType = "TOPUP"
	PaymentServicePayment PaymentType = "SERVICE_PAYMENT"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentTransaction is a wallet movement.
type PaymentTransaction struct {
	ID          string        `json:"id"`
	WalletID    string        `json:"walletId"`
	Amount      float64       `json:"amount"`
	Type        PaymentType   `json:"type"`
	Status      PaymentStatus `json:"status"`
	Description string        `json:"description"`
	CreatedAt   Timestamp     `json:"createdAt"`
	UpdatedAt   Timestamp     `json:"updatedAt"`
}

// TransactionFilter narrows a payment transaction listing. Empty fields are not sent.
type TransactionFilter struct {
	WalletID  string
	Type      PaymentType
	Status    PaymentStatus
	StartDate string
	EndDate   string
	Page      int
	Size      int
}
