package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-tuition/internal/models"
	"github.com/sjperalta/fintera-tuition/internal/reconciliation"
	"github.com/sjperalta/fintera-tuition/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountant = models.AuditContext{UserID: 7, IPAddress: "10.0.0.5", UserAgent: "test"}

func TestPaymentService_Record(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asOf := day(2025, time.May, 20)

	before, err := f.recon.ReconcileStudent(ctx, 1, asOf)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.Unpaid, before.Periods[1].Classification)

	payment, err := f.payment.Record(ctx, RecordPaymentInput{
		StudentID:   1,
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: day(2025, time.May, 10),
		Period:      " Jestha ",
		Note:        "cash at counter",
	}, accountant)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PeriodTag)
	assert.Equal(t, "Jestha", *payment.PeriodTag)
	require.NotNil(t, payment.RecordedByUserID)
	assert.Equal(t, uint(7), *payment.RecordedByUserID)
	require.NotNil(t, payment.Note)
	assert.Equal(t, "cash at counter", *payment.Note)
	assert.NotEmpty(t, payment.Reference)

	require.Len(t, f.audits.entries, 1)
	entry := f.audits.entries[0]
	assert.Equal(t, models.AuditActionRecord, entry.Action)
	assert.Equal(t, "Payment", entry.Entity)
	assert.Equal(t, payment.ID, entry.EntityID)
	assert.Equal(t, uint(1), entry.StudentID)
	assert.Equal(t, uint(7), entry.UserID)
	assert.Equal(t, "10.0.0.5", entry.IPAddress)

	after, err := f.recon.ReconcileStudent(ctx, 1, asOf)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.FullyPaid, after.Periods[1].Classification)
	assert.Equal(t, 2, f.payments.findByStudent, "recording invalidates the cached result")
}

func TestPaymentService_RecordPartial(t *testing.T) {
	f := newFixture()

	payment, err := f.payment.Record(context.Background(), RecordPaymentInput{
		StudentID:   1,
		Amount:      decimal.NewFromInt(400),
		PaymentDate: day(2025, time.April, 20),
		Status:      models.PaymentStatusPartiallyPaid,
		Period:      "Baisakh",
	}, accountant)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, payment.Status)
}

func TestPaymentService_RecordValidation(t *testing.T) {
	valid := RecordPaymentInput{
		StudentID:   1,
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: day(2025, time.May, 10),
	}

	tests := []struct {
		name    string
		mutate  func(in *RecordPaymentInput)
		wantErr error
	}{
		{"zero amount", func(in *RecordPaymentInput) { in.Amount = decimal.Zero }, ErrInvalidInput},
		{"negative amount", func(in *RecordPaymentInput) { in.Amount = decimal.NewFromInt(-5) }, ErrInvalidInput},
		{"missing date", func(in *RecordPaymentInput) { in.PaymentDate = time.Time{} }, ErrInvalidInput},
		{"voided status", func(in *RecordPaymentInput) { in.Status = models.PaymentStatusVoided }, ErrInvalidInput},
		{"unpaid status", func(in *RecordPaymentInput) { in.Status = models.PaymentStatusUnpaid }, ErrInvalidInput},
		{"unknown period", func(in *RecordPaymentInput) { in.Period = "Term 1" }, ErrInvalidInput},
		{"before validity", func(in *RecordPaymentInput) { in.PaymentDate = day(2025, time.March, 15) }, ErrInvalidInput},
		{"after validity", func(in *RecordPaymentInput) { in.PaymentDate = day(2026, time.April, 2) }, ErrInvalidInput},
		{"unknown student", func(in *RecordPaymentInput) { in.StudentID = 404 }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := valid
			tt.mutate(&in)

			payment, err := f.payment.Record(context.Background(), in, accountant)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, payment)
			assert.Empty(t, f.payments.payments)
			assert.Empty(t, f.audits.entries)
		})
	}
}

func TestPaymentService_RecordWithoutStructure(t *testing.T) {
	f := newFixture()

	payment, err := f.payment.Record(context.Background(), RecordPaymentInput{
		StudentID:   2,
		Amount:      decimal.NewFromInt(750),
		PaymentDate: day(2024, time.December, 1),
	}, accountant)
	require.NoError(t, err)
	assert.Nil(t, payment.PeriodTag)
}

func TestPaymentService_RecordDuplicateReference(t *testing.T) {
	f := newFixture()
	f.payments.mockCreateError = repository.ErrDuplicateReference

	_, err := f.payment.Record(context.Background(), RecordPaymentInput{
		StudentID:   1,
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: day(2025, time.May, 10),
		Reference:   "RCPT-0001",
	}, accountant)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "RCPT-0001")
	assert.Empty(t, f.audits.entries)
}

func TestPaymentService_Void(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asOf := day(2025, time.May, 20)
	seeded := f.seedPayment(1, "1000", day(2025, time.April, 5), "Baisakh", models.PaymentStatusPaid)
	voidedAt := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	f.payment.now = func() time.Time { return voidedAt }

	before, err := f.recon.ReconcileStudent(ctx, 1, asOf)
	require.NoError(t, err)
	assert.True(t, before.Balance.TotalPaid.Equal(decimal.NewFromInt(1000)))

	payment, err := f.payment.Void(ctx, seeded.ID, "  cheque bounced ", accountant)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVoided, payment.Status)
	require.NotNil(t, payment.VoidedAt)
	assert.Equal(t, voidedAt, *payment.VoidedAt)
	require.NotNil(t, payment.VoidReason)
	assert.Equal(t, "cheque bounced", *payment.VoidReason)

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, models.AuditActionVoid, f.audits.entries[0].Action)
	assert.Contains(t, f.audits.entries[0].Details, "cheque bounced")

	after, err := f.recon.ReconcileStudent(ctx, 1, asOf)
	require.NoError(t, err)
	assert.True(t, after.Balance.TotalPaid.IsZero(), "voided payments no longer count")

	_, err = f.payment.Void(ctx, seeded.ID, "again", accountant)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPaymentService_VoidValidation(t *testing.T) {
	f := newFixture()
	seeded := f.seedPayment(1, "1000", day(2025, time.April, 5), "Baisakh", models.PaymentStatusPaid)

	_, err := f.payment.Void(context.Background(), seeded.ID, "   ", accountant)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payment.Void(context.Background(), 404, "typo", accountant)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.audits.entries)
}

func TestPaymentService_ListByStudent(t *testing.T) {
	f := newFixture()
	f.seedPayment(1, "1000", day(2025, time.April, 5), "Baisakh", models.PaymentStatusPaid)
	f.seedPayment(2, "300", day(2025, time.April, 6), "", models.PaymentStatusPaid)

	payments, err := f.payment.ListByStudent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, uint(1), payments[0].StudentID)

	_, err = f.payment.ListByStudent(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentService_RecordOutsideAcademicYear(t *testing.T) {
	f := openEndedStructures()
	ctx := context.Background()

	_, err := f.payment.Record(ctx, RecordPaymentInput{
		StudentID: 5, Amount: decimal.NewFromInt(1000), PaymentDate: day(2026, time.March, 31), Period: "Baisakh",
	}, accountant)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payment.Record(ctx, RecordPaymentInput{
		StudentID: 5, Amount: decimal.NewFromInt(1000), PaymentDate: day(2027, time.April, 1), Period: "Chaitra",
	}, accountant)
	assert.ErrorIs(t, err, ErrInvalidInput)

	payment, err := f.payment.Record(ctx, RecordPaymentInput{
		StudentID: 5, Amount: decimal.NewFromInt(1000), PaymentDate: day(2027, time.March, 31), Period: "Chaitra",
	}, accountant)
	require.NoError(t, err)
	assert.Equal(t, "Chaitra", *payment.PeriodTag)
	assert.Len(t, f.payments.payments, 1)
}
