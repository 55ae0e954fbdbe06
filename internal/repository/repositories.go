package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateReference is returned when a payment reference is already recorded
var ErrDuplicateReference = errors.New("payment reference already recorded")

// Repositories holds all repository instances
type Repositories struct {
	Student      StudentRepository
	FeeStructure FeeStructureRepository
	Payment      PaymentRepository
	Audit        AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Student:      NewStudentRepository(db),
		FeeStructure: NewFeeStructureRepository(db),
		Payment:      NewPaymentRepository(db),
		Audit:        NewAuditRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// paginate applies sorting and pagination; allowed maps public sort keys to columns
func (q *ListQuery) paginate(db *gorm.DB, allowed map[string]string, defaultOrder string) *gorm.DB {
	if column, ok := allowed[q.SortBy]; ok {
		order := column
		if q.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order(defaultOrder)
	}

	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		db = db.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
	}
	return db
}

func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
	}
	return false
}
