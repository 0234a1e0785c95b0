package models

import "time"

// CompanyProfile holds the company's own registry data. The VAT number is
// what decides whether an imported invoice was issued or received: if the
// supplier VAT on the XML matches, the invoice is ours.
type CompanyProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"ragione_sociale"`
	VATNumber string    `gorm:"not null;uniqueIndex" json:"partita_iva"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CashAccount is a named cash/bank account installments are attributed to.
type CashAccount struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"nome"`
}
