package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"gorm.io/gorm"
)

// PaymentChange summarises a student's payment history for cache versioning
type PaymentChange struct {
	LastUpdated time.Time
	Count       int64
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByStudent(ctx context.Context, studentID uint) ([]models.Payment, error)
	List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	LatestChange(ctx context.Context, studentID uint) (*PaymentChange, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByStudent returns the full history, voided entries included
func (r *paymentRepository) FindByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

var paymentSortColumns = map[string]string{
	"payment_date": "payment_date",
	"amount":       "amount",
	"created_at":   "created_at",
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if v := query.Filters["student_id"]; v != "" {
		db = db.Where("student_id = ?", v)
	}
	if v := query.Filters["status"]; v != "" {
		db = db.Where("status = ?", v)
	}
	if v := query.Filters["period_tag"]; v != "" {
		db = db.Where("period_tag = ?", v)
	}
	if v := query.Filters["start_date"]; v != "" {
		db = db.Where("payment_date >= ?", v)
	}
	if v := query.Filters["end_date"]; v != "" {
		db = db.Where("payment_date <= ?", v)
	}
	if query.Search != "" {
		db = db.Where("reference ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.paginate(db, paymentSortColumns, "payment_date DESC, id DESC").Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if isDuplicateKeyError(err, "idx_payments_reference") {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// LatestChange returns the newest update time and row count of a student's
// payments. Any insert or update changes at least one of them.
func (r *paymentRepository) LatestChange(ctx context.Context, studentID uint) (*PaymentChange, error) {
	var row struct {
		LastUpdated *time.Time
		Count       int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("MAX(updated_at) AS last_updated, COUNT(*) AS count").
		Where("student_id = ?", studentID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	change := &PaymentChange{Count: row.Count}
	if row.LastUpdated != nil {
		change.LastUpdated = *row.LastUpdated
	}
	return change, nil
}
