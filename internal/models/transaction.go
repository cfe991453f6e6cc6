package models

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusUnpaid  TransactionStatus = "UNPAID"
	TransactionStatusPaid    TransactionStatus = "PAID"
	TransactionStatusFailed  TransactionStatus = "FAILED"
	TransactionStatusExpired TransactionStatus = "EXPIRED"
)

// Transaction records a platform unlock-fee payment for a paid tier. ChooseTeam
// on a premium/pro offer requires a PAID transaction for (project, tier).
type Transaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	Tier TeamTier `gorm:"type:varchar(20)" json:"tier"`

	Reference         string `gorm:"type:varchar(50);uniqueIndex" json:"reference"`    // gateway reference
	MerchantRef       string `gorm:"type:varchar(50);uniqueIndex" json:"merchant_ref"` // INV-{code}
	PaymentMethod     string `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentMethodCode string `gorm:"type:varchar(50)" json:"payment_method_code"`

	Amount      int64  `json:"amount"`
	CheckoutURL string `gorm:"type:text" json:"checkout_url"`

	Status TransactionStatus `gorm:"type:varchar(20);default:'UNPAID'" json:"status"`
	PaidAt *time.Time        `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// GenerateInvoiceCode generates a random alphanumeric code for merchant refs.
func GenerateInvoiceCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
