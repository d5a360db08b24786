package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies what kind of product a stock record tracks.
type Category string

const (
	CategoryMaterial Category = "material" // raw material awaiting production
	CategoryPacked   Category = "packed"   // finished, packaged product
	CategoryOther    Category = "other"
)

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMaterial, CategoryPacked, CategoryOther:
		return true
	}
	return false
}

// Rating bounds for chamber stock quality grades.
const (
	MinRating = 1
	MaxRating = 5
)

// StockEntry records how many bags of the owning product sit in one chamber
// at one quality rating. Uniqueness key within a record is (ChamberID, Rating).
type StockEntry struct {
	shared.BaseEntity
	StockRecordID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_stock_entry_chamber_rating,priority:1"`
	ChamberID     string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_stock_entry_chamber_rating,priority:2"`
	Rating        int             `gorm:"not null;uniqueIndex:idx_stock_entry_chamber_rating,priority:3"`
	QuantityBags  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PacketsPerBag int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// PackageConfig records how much finished product exists per package size for
// a packed record, independent of which chamber holds it physically.
type PackageConfig struct {
	shared.BaseEntity
	StockRecordID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Size          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit          string          `gorm:"type:varchar(16);not null"`
	QuantityBags  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PacketsPerBag int             `gorm:"not null;default:0"` // 0 means unset; resolution falls back to the chamber entry
}

// TableName returns the table name for GORM
func (PackageConfig) TableName() string {
	return "package_configs"
}

// Matches reports whether the config describes the given package size and unit.
func (p *PackageConfig) Matches(size decimal.Decimal, unit string) bool {
	return p.Size.Equal(size) && strings.EqualFold(p.Unit, unit)
}

// StockRecord is the stock bookkeeping aggregate for one product within one
// category. It is the single writer of truth for chamber quantities: every
// deduction and merge goes through it, under a transaction-scoped row lock
// acquired by the repository.
type StockRecord struct {
	shared.BaseAggregateRoot
	ProductName string   `gorm:"type:varchar(255);not null;uniqueIndex:idx_stock_record_product_category,priority:1"`
	Category    Category `gorm:"type:varchar(16);not null;uniqueIndex:idx_stock_record_product_category,priority:2"`
	Unit        string   `gorm:"type:varchar(16);not null"`

	Entries  []StockEntry    `gorm:"foreignKey:StockRecordID;references:ID"`
	Packages []PackageConfig `gorm:"foreignKey:StockRecordID;references:ID"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a new stock record for a product within a category.
// Packed records must be created with at least one package config.
func NewStockRecord(productName string, category Category, unit string, packages []PackageConfig) (*StockRecord, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown stock category %q", category))
	}
	if category == CategoryPacked && len(packages) == 0 {
		return nil, shared.ErrMissingPackageConfig
	}

	record := &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductName:       productName,
		Category:          category,
		Unit:              unit,
		Entries:           make([]StockEntry, 0),
		Packages:          make([]PackageConfig, 0, len(packages)),
	}
	for _, pkg := range packages {
		pkg.BaseEntity = shared.NewBaseEntity()
		pkg.StockRecordID = record.ID
		record.Packages = append(record.Packages, pkg)
	}

	record.AddDomainEvent(NewStockRecordCreatedEvent(record))
	return record, nil
}

// EntryFor returns the entry holding stock for the given chamber and rating,
// or nil when no such entry exists.
func (r *StockRecord) EntryFor(chamberID string, rating int) *StockEntry {
	for i := range r.Entries {
		if r.Entries[i].ChamberID == chamberID && r.Entries[i].Rating == rating {
			return &r.Entries[i]
		}
	}
	return nil
}

// RatingFor returns the quality rating carried by a chamber's stock. A chamber
// holds bags at one rating at a time in this design, so the first entry wins.
// The second return value is false when the chamber has no entry.
func (r *StockRecord) RatingFor(chamberID string) (int, bool) {
	for i := range r.Entries {
		if r.Entries[i].ChamberID == chamberID {
			return r.Entries[i].Rating, true
		}
	}
	return 0, false
}

// TotalBags returns the total bag quantity across all chamber entries.
func (r *StockRecord) TotalBags() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Entries {
		total = total.Add(r.Entries[i].QuantityBags)
	}
	return total
}

// MergeEntry applies a quantity delta to the (chamberID, rating) entry using
// the SUM_QUANTITY policy: quantities accumulate, they are never replaced, so
// repeated partial imports add up correctly.
//
// A positive delta against a missing entry creates it. A negative delta must
// land on an existing entry with sufficient stock; underflow is a hard error,
// never a silent clamp. A packetsPerBag that conflicts with the stored value
// is a data-integrity error.
func (r *StockRecord) MergeEntry(chamberID string, rating int, delta decimal.Decimal, packetsPerBag int) error {
	if strings.TrimSpace(chamberID) == "" {
		return shared.NewDomainError("INVALID_CHAMBER", "Chamber ID cannot be empty")
	}
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	if packetsPerBag < 0 {
		return shared.NewDomainError("INVALID_PACKETS", "Packets per bag cannot be negative")
	}

	entry := r.EntryFor(chamberID, rating)
	if entry == nil {
		if delta.IsNegative() {
			return shared.ErrChamberNotFound
		}
		if delta.IsZero() {
			return nil
		}
		if packetsPerBag == 0 {
			packetsPerBag = 1
		}
		r.Entries = append(r.Entries, StockEntry{
			BaseEntity:    shared.NewBaseEntity(),
			StockRecordID: r.ID,
			ChamberID:     chamberID,
			Rating:        rating,
			QuantityBags:  delta,
			PacketsPerBag: packetsPerBag,
		})
		r.touch()
		r.AddDomainEvent(NewStockMergedEvent(r, chamberID, rating, delta))
		return nil
	}

	if packetsPerBag > 0 && entry.PacketsPerBag != packetsPerBag {
		return shared.ErrPacketSizeMismatch
	}

	next := entry.QuantityBags.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	entry.QuantityBags = next
	r.touch()
	r.AddDomainEvent(NewStockMergedEvent(r, chamberID, rating, delta))
	return nil
}

// Deduct removes bags from the (chamberID, rating) entry. The entry must exist
// and hold at least the requested quantity; the sufficiency check and the
// subtraction happen on the locked aggregate, so concurrent dispatches cannot
// both pass against stale data.
func (r *StockRecord) Deduct(chamberID string, rating int, bags decimal.Decimal) error {
	if bags.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	entry := r.EntryFor(chamberID, rating)
	if entry == nil {
		return shared.ErrChamberNotFound
	}
	if entry.QuantityBags.LessThan(bags) {
		return shared.ErrInsufficientStock
	}
	entry.QuantityBags = entry.QuantityBags.Sub(bags)
	r.touch()
	r.AddDomainEvent(NewStockDeductedEvent(r, chamberID, rating, bags))
	return nil
}

// ResolvePacketsPerBag resolves how many packets one bag yields for an ordered
// package: the product's matching PackageConfig wins, then the chamber entry's
// stored value, then 1.
func (r *StockRecord) ResolvePacketsPerBag(size decimal.Decimal, unit string, chamberID string, rating int) int {
	for i := range r.Packages {
		if r.Packages[i].Matches(size, unit) && r.Packages[i].PacketsPerBag > 0 {
			return r.Packages[i].PacketsPerBag
		}
	}
	if entry := r.EntryFor(chamberID, rating); entry != nil && entry.PacketsPerBag > 0 {
		return entry.PacketsPerBag
	}
	return 1
}

// PackageFor returns the package config matching the given size and unit.
func (r *StockRecord) PackageFor(size decimal.Decimal, unit string) *PackageConfig {
	for i := range r.Packages {
		if r.Packages[i].Matches(size, unit) {
			return &r.Packages[i]
		}
	}
	return nil
}

// MergePackage accumulates a quantity onto the (size, unit) package config,
// creating it when absent. Same SUM_QUANTITY semantics as chamber entries.
func (r *StockRecord) MergePackage(size decimal.Decimal, unit string, deltaBags decimal.Decimal, packetsPerBag int) error {
	if size.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PACKAGE", "Package size must be positive")
	}
	pkg := r.PackageFor(size, unit)
	if pkg == nil {
		if deltaBags.IsNegative() {
			return shared.ErrMissingPackageConfig
		}
		r.Packages = append(r.Packages, PackageConfig{
			BaseEntity:    shared.NewBaseEntity(),
			StockRecordID: r.ID,
			Size:          size,
			Unit:          unit,
			QuantityBags:  deltaBags,
			PacketsPerBag: packetsPerBag,
		})
		r.touch()
		return nil
	}
	if packetsPerBag > 0 && pkg.PacketsPerBag > 0 && pkg.PacketsPerBag != packetsPerBag {
		return shared.ErrPacketSizeMismatch
	}
	next := pkg.QuantityBags.Add(deltaBags)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	pkg.QuantityBags = next
	if pkg.PacketsPerBag == 0 && packetsPerBag > 0 {
		pkg.PacketsPerBag = packetsPerBag
	}
	r.touch()
	return nil
}

// CheckInvariants verifies aggregate-level invariants before the record is
// persisted. Violations abort the enclosing transaction.
func (r *StockRecord) CheckInvariants() error {
	if r.Category == CategoryPacked && len(r.Packages) == 0 {
		return shared.ErrMissingPackageConfig
	}
	for i := range r.Entries {
		if r.Entries[i].QuantityBags.IsNegative() {
			return shared.ErrInsufficientStock
		}
	}
	return nil
}

func (r *StockRecord) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
