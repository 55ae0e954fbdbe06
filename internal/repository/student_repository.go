package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-tuition/internal/models"
	"gorm.io/gorm"
)

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Student, error)
	List(ctx context.Context, query *ListQuery) ([]models.Student, int64, error)
	ListActive(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	MarkReminderSent(ctx context.Context, studentID uint, at time.Time) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

var studentSortColumns = map[string]string{
	"full_name":   "full_name",
	"class_name":  "class_name",
	"roll_number": "roll_number",
	"created_at":  "created_at",
}

func (r *studentRepository) List(ctx context.Context, query *ListQuery) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Student{})

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name ILIKE ? OR roll_number ILIKE ? OR guardian_name ILIKE ?", search, search, search)
	}

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["class_name"] != "" {
		db = db.Where("class_name = ?", query.Filters["class_name"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.paginate(db, studentSortColumns, "full_name ASC, id ASC").Find(&students).Error
	return students, total, err
}

func (r *studentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StudentStatusActive).
		Order("full_name ASC, id ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) MarkReminderSent(ctx context.Context, studentID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		UpdateColumn("dues_reminder_sent_at", at.UTC()).Error
}
