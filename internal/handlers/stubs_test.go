package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/internal/services"
	"gorm.io/gorm"
)

type stubStudentRepository struct {
	repository.StudentRepository
	students []models.Student
}

func (r *stubStudentRepository) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	for i := range r.students {
		if r.students[i].ID == id {
			s := r.students[i]
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStudentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	return append([]models.Student(nil), r.students...), nil
}

type stubFeeStructureRepository struct {
	repository.FeeStructureRepository
	structure *models.FeeStructure
}

func (r *stubFeeStructureRepository) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	if r.structure == nil || r.structure.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.structure, nil
}

type stubPaymentRepository struct {
	repository.PaymentRepository
	mu       sync.Mutex
	payments []models.Payment
	lastList *repository.ListQuery
}

func (r *stubPaymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == id {
			p := r.payments[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPaymentRepository) FindByStudent(ctx context.Context, studentID uint) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = query
	return append([]models.Payment(nil), r.payments...), int64(len(r.payments)), nil
}

func (r *stubPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uint(len(r.payments) + 1)
	if payment.Reference == "" {
		payment.Reference = models.NewReceiptReference()
	}
	payment.UpdatedAt = time.Unix(int64(payment.ID), 0)
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *stubPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == payment.ID {
			payment.UpdatedAt = r.payments[i].UpdatedAt.Add(time.Second)
			r.payments[i] = *payment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPaymentRepository) LatestChange(ctx context.Context, studentID uint) (*repository.PaymentChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	change := &repository.PaymentChange{}
	for _, p := range r.payments {
		if p.StudentID == studentID {
			change.Count++
			if p.UpdatedAt.After(change.LastUpdated) {
				change.LastUpdated = p.UpdatedAt
			}
		}
	}
	return change, nil
}

type stubAuditRepository struct {
	repository.AuditRepository
	entries []models.AuditLog
}

func (r *stubAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testServer wires the handlers over stub repositories. Student 1 owes 1000
// a month from April 2025 and has paid Baisakh and Jestha.
type testServer struct {
	router   *gin.Engine
	payments *stubPaymentRepository
	audits   *stubAuditRepository
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	structureID := uint(10)
	from, until := date(2025, time.April, 1), date(2026, time.March, 31)
	structure := &models.FeeStructure{
		ID:         structureID,
		Name:       "Grade 5",
		ValidFrom:  &from,
		ValidUntil: &until,
		Items: []models.FeeItem{
			{ID: 1, Name: "Tuition", Amount: decimal.NewFromInt(12000)},
		},
	}
	students := &stubStudentRepository{students: []models.Student{
		{ID: 1, FullName: "Asha Karki", ClassName: "5A", FeeStructureID: &structureID, Status: models.StudentStatusActive},
		{ID: 2, FullName: "Bikash Rai", ClassName: "5B", Status: models.StudentStatusActive},
	}}
	payments := &stubPaymentRepository{}
	for _, tag := range []string{"Baisakh", "Jestha"} {
		period := tag
		_ = payments.Create(context.Background(), &models.Payment{
			StudentID: 1, Amount: decimal.NewFromInt(1000), PaymentDate: date(2025, time.May, 1),
			Status: models.PaymentStatusPaid, PeriodTag: &period,
		})
	}
	audits := &stubAuditRepository{}

	repos := &repository.Repositories{
		Student:      students,
		FeeStructure: &stubFeeStructureRepository{structure: structure},
		Payment:      payments,
		Audit:        audits,
	}
	cfg := &config.Config{
		AcademicYearStartMonth: time.April,
		AmortizationPolicy:     "equal",
		ReconciliationCacheTTL: time.Minute,
		ReminderInterval:       24 * time.Hour,
	}
	engine, err := services.NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	svcs := services.NewServices(repos, nil, engine, cfg)
	h := NewHandlers(svcs, "Fintera School")

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", uint(7))
		c.Set("userRole", models.RoleAccountant)
		c.Next()
	})
	router.GET("/students/:student_id/reconciliation", h.Reconciliation.Show)
	router.GET("/students/:student_id/payments", h.Payment.IndexByStudent)
	router.POST("/students/:student_id/payments", h.Payment.Create)
	router.GET("/payments", h.Payment.Index)
	router.POST("/payments/:payment_id/void", h.Payment.Void)
	router.GET("/reports/dues", h.Report.Dues)
	router.GET("/audits", h.Audit.Index)

	return &testServer{router: router, payments: payments, audits: audits}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
