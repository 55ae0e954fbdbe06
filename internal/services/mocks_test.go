package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Mock StudentRepository
type mockStudentRepository struct {
	repository.StudentRepository
	mu          sync.Mutex
	students    map[uint]*models.Student
	reminded    map[uint]time.Time
	mockListErr error
}

func newMockStudentRepository(students ...models.Student) *mockStudentRepository {
	m := &mockStudentRepository{students: map[uint]*models.Student{}, reminded: map[uint]time.Time{}}
	for i := range students {
		s := students[i]
		m.students[s.ID] = &s
	}
	return m
}

func (m *mockStudentRepository) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStudentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	if m.mockListErr != nil {
		return nil, m.mockListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, s := range m.students {
		if s.IsActive() {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStudentRepository) MarkReminderSent(ctx context.Context, studentID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminded[studentID] = at
	if s, ok := m.students[studentID]; ok {
		s.ReminderSentAt = &at
	}
	return nil
}

func (m *mockStudentRepository) remindedAt(studentID uint) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.reminded[studentID]
	return at, ok
}

// Mock FeeStructureRepository
type mockFeeStructureRepository struct {
	repository.FeeStructureRepository
	structures map[uint]*models.FeeStructure
}

func (m *mockFeeStructureRepository) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	s, ok := m.structures[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

// Mock PaymentRepository backed by a slice
type mockPaymentRepository struct {
	repository.PaymentRepository
	mu              sync.Mutex
	payments        []models.Payment
	nextID          uint
	findByStudent   int
	mockCreateError error
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].ID == id {
			cp := m.payments[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepository) FindByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByStudent++
	var out []models.Payment
	for _, p := range m.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if m.mockCreateError != nil {
		return m.mockCreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	payment.ID = 1000 + m.nextID
	if payment.Reference == "" {
		payment.Reference = models.NewReceiptReference()
	}
	payment.UpdatedAt = time.Unix(0, int64(m.nextID))
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	payment.UpdatedAt = time.Unix(0, int64(m.nextID))
	for i := range m.payments {
		if m.payments[i].ID == payment.ID {
			m.payments[i] = *payment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPaymentRepository) LatestChange(ctx context.Context, studentID uint) (*repository.PaymentChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	change := &repository.PaymentChange{}
	for _, p := range m.payments {
		if p.StudentID != studentID {
			continue
		}
		change.Count++
		if p.UpdatedAt.After(change.LastUpdated) {
			change.LastUpdated = p.UpdatedAt
		}
	}
	return change, nil
}

// Mock AuditRepository
type mockAuditRepository struct {
	repository.AuditRepository
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

// fixture wires the services over in-memory repositories. Student 1 owes
// 12000 a year from April 2025 (1000 a month); student 2 has no structure.
type fixture struct {
	students   *mockStudentRepository
	structures *mockFeeStructureRepository
	payments   *mockPaymentRepository
	audits     *mockAuditRepository
	recon      *ReconciliationService
	payment    *PaymentService
}

func newFixture(extra ...models.Student) *fixture {
	structureID := uint(10)
	from := day(2025, time.April, 1)
	until := day(2026, time.March, 31)
	structure := &models.FeeStructure{
		ID:           structureID,
		Name:         "Grade 5",
		AcademicYear: 2025,
		ValidFrom:    &from,
		ValidUntil:   &until,
		UpdatedAt:    day(2025, time.March, 1),
		Items: []models.FeeItem{
			{ID: 1, Name: "Tuition", Amount: decimal.NewFromInt(10800)},
			{ID: 2, Name: "Library", Amount: decimal.NewFromInt(1200)},
			{ID: 3, Name: "Transport", Amount: decimal.NewFromInt(2400), IsOptional: true},
		},
	}

	students := append([]models.Student{
		{ID: 1, FullName: "Asha Karki", ClassName: "5A", GuardianName: "Ram Karki",
			GuardianEmail: "ram@example.com", FeeStructureID: &structureID, Status: models.StudentStatusActive},
		{ID: 2, FullName: "Bikash Rai", ClassName: "5B", Status: models.StudentStatusActive},
	}, extra...)

	f := &fixture{
		students:   newMockStudentRepository(students...),
		structures: &mockFeeStructureRepository{structures: map[uint]*models.FeeStructure{structureID: structure}},
		payments:   &mockPaymentRepository{},
		audits:     &mockAuditRepository{},
	}
	engine, err := NewEngine(&config.Config{AcademicYearStartMonth: time.April, AmortizationPolicy: "equal"})
	if err != nil {
		panic(err)
	}
	f.recon = NewReconciliationService(f.students, f.structures, f.payments, engine, time.Minute)
	f.payment = NewPaymentService(f.payments, f.students, f.recon, NewAuditService(f.audits))
	return f
}

func (f *fixture) seedPayment(studentID uint, amount string, on time.Time, period, status string) models.Payment {
	p := &models.Payment{
		StudentID:   studentID,
		Amount:      decimal.RequireFromString(amount),
		PaymentDate: on,
		Status:      status,
	}
	if period != "" {
		p.PeriodTag = &period
	}
	_ = f.payments.Create(context.Background(), p)
	return *p
}
