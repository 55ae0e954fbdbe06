package repository

import (
	"context"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"gorm.io/gorm"
)

// FeeStructureRepository defines the interface for fee structure data access
type FeeStructureRepository interface {
	FindByID(ctx context.Context, id uint) (*models.FeeStructure, error)
	List(ctx context.Context, academicYear int) ([]models.FeeStructure, error)
	Create(ctx context.Context, structure *models.FeeStructure) error
	Update(ctx context.Context, structure *models.FeeStructure) error
}

type feeStructureRepository struct {
	db *gorm.DB
}

// NewFeeStructureRepository creates a new fee structure repository
func NewFeeStructureRepository(db *gorm.DB) FeeStructureRepository {
	return &feeStructureRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("fee_items.position ASC, fee_items.id ASC")
}

func (r *feeStructureRepository) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	var structure models.FeeStructure
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&structure, id).Error
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

func (r *feeStructureRepository) List(ctx context.Context, academicYear int) ([]models.FeeStructure, error) {
	var structures []models.FeeStructure
	db := r.db.WithContext(ctx).Preload("Items", orderedItems)
	if academicYear > 0 {
		db = db.Where("academic_year = ?", academicYear)
	}
	err := db.Order("academic_year DESC, name ASC").Find(&structures).Error
	return structures, err
}

func (r *feeStructureRepository) Create(ctx context.Context, structure *models.FeeStructure) error {
	return r.db.WithContext(ctx).Create(structure).Error
}

// Update saves the structure and replaces its items
func (r *feeStructureRepository) Update(ctx context.Context, structure *models.FeeStructure) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(structure).Error; err != nil {
			return err
		}
		return tx.Model(structure).Association("Items").Unscoped().Replace(structure.Items)
	})
}
