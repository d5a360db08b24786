package procurement

import (
	"strings"

	"github.com/coldstore/backend/internal/domain/shared"
)

// Vendor is a raw-material supplier. Names are case-normalized so that
// spreadsheet imports with inconsistent casing resolve to one vendor row.
type Vendor struct {
	shared.BaseAggregateRoot
	Name           string `gorm:"type:varchar(255);not null"`
	NormalizedName string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string `gorm:"type:varchar(32)"`
	Address        string `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NormalizeName collapses whitespace and lowercases a vendor or product name
// for lookup purposes.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NewVendor creates a vendor with a normalized lookup name.
func NewVendor(name, phone, address string) (*Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot be empty")
	}
	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NormalizedName:    NormalizeName(name),
		Phone:             strings.TrimSpace(phone),
		Address:           strings.TrimSpace(address),
	}, nil
}
