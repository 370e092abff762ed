package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/clock"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	currencyrepo "github.com/clubworks/clubledger/internal/currency/repository"
	currencyservice "github.com/clubworks/clubledger/internal/currency/service"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	directoryrepo "github.com/clubworks/clubledger/internal/directory/repository"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	paymentrepo "github.com/clubworks/clubledger/internal/payment/repository"
	"github.com/clubworks/clubledger/pkg/db/pagination"
	"github.com/clubworks/clubledger/pkg/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     paymentdomain.Service
	node    *snowflake.Node
	clock   *clock.FakeClock
	student directorydomain.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&currencydomain.Currency{},
		&directorydomain.Organization{},
		&directorydomain.Club{},
		&directorydomain.Student{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	f := &fixture{db: db, node: node, clock: fake}

	org := directorydomain.Organization{ID: node.Generate(), Name: "Harborview College"}
	require.NoError(t, db.Create(&org).Error)
	f.student = directorydomain.Student{ID: node.Generate(), OrganizationID: org.ID, FullName: "Jonas Meyer"}
	require.NoError(t, db.Create(&f.student).Error)

	require.NoError(t, db.Create(&currencydomain.Currency{Code: "EUR", Name: "Euro", IsActive: true}).Error)

	currencies := currencyservice.NewService(currencyservice.Params{
		Log:  log,
		Repo: currencyrepo.Provide(db),
	})

	f.svc = NewService(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Repo:       paymentrepo.Provide(),
		Store:      repository.ProvideStore[paymentdomain.Payment](db),
		Currencies: currencies,
		Directory:  directoryrepo.Provide(db),
	})
	return f
}

func strptr(s string) *string { return &s }

func TestCreateAdHocPayment(t *testing.T) {
	f := newFixture(t)

	payment, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(45),
		CurrencyCode: "eur",
		Description:  "tournament entry",
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusUnpaid, payment.Status)
	require.Equal(t, "EUR", payment.CurrencyCode)
	require.NotEmpty(t, payment.Reference)
	require.Nil(t, payment.PaymentMonth)
	require.Nil(t, payment.PayAt)
}

func TestCreateMonthBoundChargeDefaultsDueDate(t *testing.T) {
	f := newFixture(t)

	payment, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "EUR",
		Method:       "bank_transfer",
		PaymentMonth: strptr("2024-02"),
	})
	require.NoError(t, err)
	require.NotNil(t, payment.PayAt)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *payment.PayAt)
	require.Equal(t, "bank_transfer", payment.Method)

	explicit, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "EUR",
		PaymentMonth: strptr("2024-03"),
		PayAt:        strptr("2024-03-15"),
	})
	require.NoError(t, err)
	require.NotNil(t, explicit.PayAt)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *explicit.PayAt)

	_, err = f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "EUR",
		PayAt:        strptr("not-a-date"),
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvalidPayAt)
}

func TestCreateSecondChargeForSameMonthRejected(t *testing.T) {
	f := newFixture(t)
	req := paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "EUR",
		PaymentMonth: strptr("2024-05"),
	}

	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, paymentdomain.ErrDuplicateForMonth)

	// Charges without a month never collide.
	open := paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(5),
		CurrencyCode: "EUR",
	}
	_, err = f.svc.Create(context.Background(), open)
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), open)
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(-1),
		CurrencyCode: "EUR",
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)

	_, err = f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "XXX",
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvalidCurrency)

	_, err = f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.node.Generate().String(),
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "EUR",
	})
	require.ErrorIs(t, err, paymentdomain.ErrStudentNotFound)
}

func TestUpdateStatusStampsPaidAt(t *testing.T) {
	f := newFixture(t)

	payment, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		StudentID:    f.student.ID.String(),
		Amount:       decimal.NewFromInt(70),
		CurrencyCode: "EUR",
	})
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	paid, err := f.svc.UpdateStatus(context.Background(), payment.ID.String(), "paid")
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, f.clock.Now(), paid.PaidAt.UTC())

	refunded, err := f.svc.UpdateStatus(context.Background(), payment.ID.String(), "refunded")
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusRefunded, refunded.Status)
	require.Nil(t, refunded.PaidAt)

	_, err = f.svc.UpdateStatus(context.Background(), payment.ID.String(), "lost")
	require.ErrorIs(t, err, paymentdomain.ErrInvalidStatus)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, paymentdomain.CreatePaymentRequest{
			StudentID:    f.student.ID.String(),
			Amount:       decimal.NewFromInt(int64(10 + i)),
			CurrencyCode: "EUR",
		})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	resp, err := f.svc.List(ctx, paymentdomain.ListPaymentRequest{
		StudentID:  f.student.ID.String(),
		Pagination: pagination.Pagination{PageSize: 3},
	})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 3)
	require.True(t, resp.PageInfo.HasMore)

	rest, err := f.svc.List(ctx, paymentdomain.ListPaymentRequest{
		StudentID: f.student.ID.String(),
		Pagination: pagination.Pagination{
			PageSize:  3,
			PageToken: resp.PageInfo.NextPageToken,
		},
	})
	require.NoError(t, err)
	require.Len(t, rest.Payments, 2)
	require.False(t, rest.PageInfo.HasMore)

	byStatus, err := f.svc.List(ctx, paymentdomain.ListPaymentRequest{
		Status:     "paid",
		Pagination: pagination.Pagination{PageSize: 10},
	})
	require.NoError(t, err)
	require.Empty(t, byStatus.Payments)
}
