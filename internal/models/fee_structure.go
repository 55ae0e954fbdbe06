package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
)

// FeeStructure is the set of billable items for one class and academic year
type FeeStructure struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	AcademicYear int        `gorm:"index" json:"academic_year"`
	ValidFrom    *time.Time `gorm:"type:date" json:"valid_from"`
	ValidUntil   *time.Time `gorm:"type:date" json:"valid_until"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Associations
	Items []FeeItem `gorm:"foreignKey:FeeStructureID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName specifies the table name for FeeStructure
func (FeeStructure) TableName() string {
	return "fee_structures"
}

// FeeItem is one billable component of a fee structure
type FeeItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	FeeStructureID uint            `gorm:"not null;index" json:"fee_structure_id"`
	Name           string          `gorm:"not null" json:"name"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsOptional     bool            `gorm:"default:false" json:"is_optional"`
	DueDate        *time.Time      `gorm:"type:date" json:"due_date"`
	Position       int             `gorm:"default:0" json:"position"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for FeeItem
func (FeeItem) TableName() string {
	return "fee_items"
}

// Version identifies the revision of the structure for cache keys
func (f *FeeStructure) Version() string {
	v := f.UpdatedAt.UnixNano()
	for _, item := range f.Items {
		if n := item.UpdatedAt.UnixNano(); n > v {
			v = n
		}
	}
	return strconv.FormatInt(v, 36) + "-" + strconv.Itoa(len(f.Items))
}

// ToEngine converts the persisted structure to the reconciliation input
func (f *FeeStructure) ToEngine() *reconciliation.FeeStructure {
	items := make([]reconciliation.FeeItem, 0, len(f.Items))
	for _, item := range f.Items {
		items = append(items, reconciliation.FeeItem{
			ID:         strconv.FormatUint(uint64(item.ID), 10),
			Name:       item.Name,
			Amount:     item.Amount,
			IsOptional: item.IsOptional,
			DueDate:    item.DueDate,
		})
	}
	return &reconciliation.FeeStructure{
		ID:           strconv.FormatUint(uint64(f.ID), 10),
		Name:         f.Name,
		AcademicYear: f.AcademicYear,
		Items:        items,
		ValidFrom:    f.ValidFrom,
		ValidUntil:   f.ValidUntil,
		Version:      f.Version(),
	}
}
