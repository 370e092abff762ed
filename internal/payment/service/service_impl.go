package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/clubworks/clubledger/internal/clock"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	"github.com/clubworks/clubledger/pkg/db"
	"github.com/clubworks/clubledger/pkg/db/option"
	"github.com/clubworks/clubledger/pkg/db/pagination"
	"github.com/clubworks/clubledger/pkg/repository"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  paymentdomain.Repository
	Store repository.Repository[paymentdomain.Payment]

	Currencies currencydomain.Directory
	Directory  directorydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  paymentdomain.Repository
	store repository.Repository[paymentdomain.Payment]

	currencies currencydomain.Directory
	directory  directorydomain.Repository
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		store: p.Store,

		currencies: p.Currencies,
		directory:  p.Directory,
	}
}

func (s *Service) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (paymentdomain.Payment, error) {
	studentID, err := snowflake.ParseString(strings.TrimSpace(req.StudentID))
	if err != nil || studentID == 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidStudent
	}

	student, err := s.directory.FindStudent(ctx, studentID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if student == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrStudentNotFound
	}

	if req.Amount.IsNegative() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}

	currency, err := s.currencies.LookupActive(ctx, req.CurrencyCode)
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidCurrency
	}

	var month *billing.Month
	if req.PaymentMonth != nil && strings.TrimSpace(*req.PaymentMonth) != "" {
		m, err := billing.ParseMonth(*req.PaymentMonth)
		if err != nil {
			return paymentdomain.Payment{}, err
		}
		month = &m
	}

	// Explicit due date wins; a month-bound charge defaults to the last
	// calendar day of that month.
	var payAt *time.Time
	if req.PayAt != nil && strings.TrimSpace(*req.PayAt) != "" {
		due, err := time.Parse(time.DateOnly, strings.TrimSpace(*req.PayAt))
		if err != nil {
			return paymentdomain.Payment{}, paymentdomain.ErrInvalidPayAt
		}
		payAt = &due
	} else if month != nil {
		due := month.LastDay()
		payAt = &due
	}

	now := s.clock.Now()
	payment := paymentdomain.Payment{
		ID:           s.genID.Generate(),
		Reference:    ulid.Make().String(),
		StudentID:    studentID,
		Amount:       req.Amount,
		CurrencyCode: currency.Code,
		Status:       paymentdomain.StatusUnpaid,
		Method:       strings.TrimSpace(req.Method),
		PaymentMonth: month,
		PayAt:        payAt,
		Description:  strings.TrimSpace(req.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return paymentdomain.Payment{}, paymentdomain.ErrDuplicateForMonth
		}
		return paymentdomain.Payment{}, err
	}

	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (paymentdomain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || paymentID == 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPayment
	}

	payment, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) List(ctx context.Context, req paymentdomain.ListPaymentRequest) (paymentdomain.ListPaymentResponse, error) {
	query := &paymentdomain.Payment{}
	if strings.TrimSpace(req.StudentID) != "" {
		studentID, err := snowflake.ParseString(strings.TrimSpace(req.StudentID))
		if err != nil || studentID == 0 {
			return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidStudent
		}
		query.StudentID = studentID
	}
	if strings.TrimSpace(req.Month) != "" {
		month, err := billing.ParseMonth(req.Month)
		if err != nil {
			return paymentdomain.ListPaymentResponse{}, err
		}
		query.PaymentMonth = &month
	}
	if strings.TrimSpace(req.Status) != "" {
		status := paymentdomain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			return paymentdomain.ListPaymentResponse{}, paymentdomain.ErrInvalidStatus
		}
		query.Status = status
	}

	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	rows, err := s.store.Find(ctx, query,
		option.WithSortBy("id", "desc", map[string]bool{"id": true}),
		option.ApplyPagination(req.Pagination),
	)
	if err != nil {
		return paymentdomain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, size, func(p *paymentdomain.Payment) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID.String(),
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})
	if len(rows) > size {
		rows = rows[:size]
	}

	return paymentdomain.ListPaymentResponse{Payments: rows, PageInfo: pageInfo}, nil
}

// UpdateStatus moves the payment through its lifecycle. Entering paid
// stamps paid_at; leaving it clears the stamp again.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (paymentdomain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || paymentID == 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPayment
	}

	next := paymentdomain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidStatus
	}

	payment, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrNotFound
	}
	if payment.Status == next {
		return *payment, nil
	}

	now := s.clock.Now()
	payment.Status = next
	payment.UpdatedAt = now
	if next == paymentdomain.StatusPaid {
		payment.PaidAt = &now
	} else {
		payment.PaidAt = nil
	}

	if err := s.repo.UpdateStatus(ctx, s.db, payment); err != nil {
		return paymentdomain.Payment{}, err
	}
	return *payment, nil
}
