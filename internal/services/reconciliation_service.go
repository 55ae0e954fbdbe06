package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
	"github.com/sjperalta/fintera-tuition/pkg/metrics"
	"gorm.io/gorm"
)

// NewEngine builds the reconciliation engine described by the configuration
func NewEngine(cfg *config.Config) (*reconciliation.Engine, error) {
	policy, err := reconciliation.PolicyByName(cfg.AmortizationPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCalendar, err)
	}
	engine, err := reconciliation.NewEngine(
		reconciliation.WithAcademicYear(cfg.AcademicYearStartMonth, cfg.PeriodNames),
		reconciliation.WithPolicy(policy),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCalendar, err)
	}
	return engine, nil
}

type reconciliationKey struct {
	studentID        uint
	structureVersion string
	paymentsVersion  string
	day              string
}

type reconciliationEntry struct {
	result    *reconciliation.Result
	expiresAt time.Time
}

// ReconciliationService loads a student's fee structure and payments and
// reconciles them. Results are cached until a payment or the structure
// changes, the TTL passes, or the day rolls over.
type ReconciliationService struct {
	studentRepo   repository.StudentRepository
	structureRepo repository.FeeStructureRepository
	paymentRepo   repository.PaymentRepository
	engine        *reconciliation.Engine
	ttl           time.Duration
	now           func() time.Time

	mu    sync.RWMutex
	cache map[reconciliationKey]reconciliationEntry
}

func NewReconciliationService(
	studentRepo repository.StudentRepository,
	structureRepo repository.FeeStructureRepository,
	paymentRepo repository.PaymentRepository,
	engine *reconciliation.Engine,
	ttl time.Duration,
) *ReconciliationService {
	return &ReconciliationService{
		studentRepo:   studentRepo,
		structureRepo: structureRepo,
		paymentRepo:   paymentRepo,
		engine:        engine,
		ttl:           ttl,
		now:           time.Now,
		cache:         make(map[reconciliationKey]reconciliationEntry),
	}
}

// ReconcileStudent reconciles one student as of the given date.
// The returned result is shared with the cache and must not be modified.
func (s *ReconciliationService) ReconcileStudent(ctx context.Context, studentID uint, asOf time.Time) (*reconciliation.Result, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Reconcile(ctx, student, asOf)
}

// Reconcile reconciles an already loaded student
func (s *ReconciliationService) Reconcile(ctx context.Context, student *models.Student, asOf time.Time) (*reconciliation.Result, error) {
	start := time.Now()
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())

	structure, err := s.structureFor(ctx, student)
	if err != nil {
		return nil, err
	}

	change, err := s.paymentRepo.LatestChange(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment history version: %w", err)
	}

	key := reconciliationKey{
		studentID:       student.ID,
		paymentsVersion: strconv.FormatInt(change.LastUpdated.UnixNano(), 36) + "-" + strconv.FormatInt(change.Count, 10),
		day:             day.Format("2006-01-02"),
	}
	if structure != nil {
		key.structureVersion = structure.Version()
	}

	if result, ok := s.lookup(key); ok {
		metrics.ObserveCache(metrics.CacheHit)
		return result, nil
	}
	metrics.ObserveCache(metrics.CacheMiss)

	payments, err := s.paymentRepo.FindByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	var input *reconciliation.FeeStructure
	if structure != nil {
		input = structure.ToEngine()
	}
	result := s.engine.Reconcile(input, models.PaymentsToEngine(payments), day)

	for _, w := range result.Warnings {
		logger.Warn("payment excluded from reconciliation",
			"student_id", student.ID, "payment_id", w.PaymentID, "code", w.Code, "message", w.Message)
	}
	metrics.ObserveReconciliation(string(result.Balance.Status), time.Since(start))

	s.store(key, result)
	return result, nil
}

// CalendarFor returns the academic calendar a student's payments dated at
// are reconciled against
func (s *ReconciliationService) CalendarFor(ctx context.Context, student *models.Student, at time.Time) (*reconciliation.Calendar, *models.FeeStructure, error) {
	structure, err := s.structureFor(ctx, student)
	if err != nil {
		return nil, nil, err
	}
	var input *reconciliation.FeeStructure
	if structure != nil {
		input = structure.ToEngine()
	}
	return s.engine.CalendarFor(input, at), structure, nil
}

// structureFor loads the student's fee structure; nil when none is assigned
func (s *ReconciliationService) structureFor(ctx context.Context, student *models.Student) (*models.FeeStructure, error) {
	if student.FeeStructureID == nil {
		return nil, nil
	}
	structure, err := s.structureRepo.FindByID(ctx, *student.FeeStructureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("student references a missing fee structure",
				"student_id", student.ID, "fee_structure_id", *student.FeeStructureID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load fee structure: %w", err)
	}
	return structure, nil
}

func (s *ReconciliationService) lookup(key reconciliationKey) (*reconciliation.Result, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (s *ReconciliationService) store(key reconciliationKey, result *reconciliation.Result) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// older versions of this student's result can no longer be hit
	for k := range s.cache {
		if k.studentID == key.studentID &&
			(k.structureVersion != key.structureVersion || k.paymentsVersion != key.paymentsVersion) {
			delete(s.cache, k)
		}
	}
	s.cache[key] = reconciliationEntry{result: result, expiresAt: s.now().Add(s.ttl)}
}

// Invalidate drops every cached result of the student
func (s *ReconciliationService) Invalidate(studentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.cache {
		if k.studentID == studentID {
			delete(s.cache, k)
		}
	}
}

// PurgeExpired removes expired entries and returns how many were dropped
func (s *ReconciliationService) PurgeExpired(ctx context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for k, entry := range s.cache {
		if !now.Before(entry.expiresAt) {
			delete(s.cache, k)
			purged++
		}
	}
	return purged
}

// CacheSize returns the number of cached results
func (s *ReconciliationService) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
