package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/clubworks/clubledger/internal/cache"
	"github.com/clubworks/clubledger/internal/clock"
	"github.com/clubworks/clubledger/internal/config"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	"github.com/clubworks/clubledger/internal/notify"
	"github.com/clubworks/clubledger/internal/observability/metrics"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config *config.GenerationConfigHolder

	Directory directorydomain.Repository
	FeePlans  feeplandomain.Repository
	Plans     plandomain.Repository
	Payments  paymentdomain.Repository

	Currencies currencydomain.Directory
	Metrics    *metrics.GenerationMetrics
	Events     notify.Dispatcher
	Locker     *cache.Locker `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	config *config.GenerationConfigHolder

	directory directorydomain.Repository
	feePlans  feeplandomain.Repository
	plans     plandomain.Repository
	payments  paymentdomain.Repository

	currencies currencydomain.Directory
	metrics    *metrics.GenerationMetrics
	events     notify.Dispatcher
	locker     *cache.Locker
}

func NewService(p Params) generationdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("generation.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		config: p.Config,

		directory: p.Directory,
		feePlans:  p.FeePlans,
		plans:     p.Plans,
		payments:  p.Payments,

		currencies: p.Currencies,
		metrics:    p.Metrics,
		events:     p.Events,
		locker:     p.Locker,
	}
}

func (s *Service) Preview(ctx context.Context, req generationdomain.GenerateRequest) (generationdomain.Result, error) {
	return s.run(ctx, req, false)
}

func (s *Service) Commit(ctx context.Context, req generationdomain.GenerateRequest) (generationdomain.Result, error) {
	month, err := billing.ParseMonth(req.Month)
	if err != nil {
		return generationdomain.Result{}, err
	}

	if s.locker != nil {
		cfg := s.config.Current()
		key := "generation:" + month.String()
		ttl := time.Duration(cfg.LockTTLSeconds) * time.Second
		token, ok, err := s.locker.TryLock(ctx, key, ttl)
		if err != nil {
			// The unique payment index keeps a lockless run safe.
			s.log.Warn("generation lock unavailable", zap.Error(err))
		} else if !ok {
			return generationdomain.Result{}, generationdomain.ErrGenerationLocked
		} else {
			defer func() {
				if rerr := s.locker.Release(context.WithoutCancel(ctx), key, token); rerr != nil {
					s.log.Warn("generation lock release failed", zap.Error(rerr))
				}
			}()
		}
	}

	return s.run(ctx, req, true)
}

func (s *Service) run(ctx context.Context, req generationdomain.GenerateRequest, commit bool) (generationdomain.Result, error) {
	month, err := billing.ParseMonth(req.Month)
	if err != nil {
		return generationdomain.Result{}, err
	}

	students, err := s.selectCohort(ctx, req)
	if err != nil {
		return generationdomain.Result{}, err
	}

	result := generationdomain.Result{
		Month:            month.String(),
		Preview:          !commit,
		Payments:         []paymentdomain.Payment{},
		Skipped:          []generationdomain.SkippedStudent{},
		TotalsByCurrency: map[string]decimal.Decimal{},
	}

	batchSize := s.config.Current().BatchSize
	planCache := map[snowflake.ID]*plandomain.Plan{}
	currencyCache := map[string]bool{}

	for start := 0; start < len(students); start += batchSize {
		end := start + batchSize
		if end > len(students) {
			end = len(students)
		}
		batch := students[start:end]

		ids := make([]snowflake.ID, 0, len(batch))
		for _, st := range batch {
			ids = append(ids, st.ID)
		}
		// A failure from here on returns the partial result: payments
		// already inserted are committed and the operator needs the
		// exact created/skipped lists to reconcile.
		subs, err := s.feePlans.ListByStudentIDs(ctx, s.db, ids)
		if err != nil {
			return result, err
		}
		subByStudent := make(map[snowflake.ID]*feeplandomain.StudentFeePlan, len(subs))
		for i := range subs {
			subByStudent[subs[i].StudentID] = &subs[i]
		}

		for _, st := range batch {
			payment, reason, err := s.evaluate(ctx, st, subByStudent[st.ID], month, planCache, currencyCache)
			if err != nil {
				return result, err
			}
			if reason != "" {
				s.skip(&result, st.ID, reason)
				continue
			}

			if commit {
				inserted, err := s.payments.InsertIgnoreDuplicate(ctx, s.db, payment)
				if err != nil {
					return result, err
				}
				if !inserted {
					s.skip(&result, st.ID, generationdomain.SkipAlreadyHasPayment)
					continue
				}
			} else {
				existing, err := s.payments.FindByStudentAndMonth(ctx, s.db, st.ID, month)
				if err != nil {
					return result, err
				}
				if existing != nil {
					s.skip(&result, st.ID, generationdomain.SkipAlreadyHasPayment)
					continue
				}
			}

			result.Payments = append(result.Payments, *payment)
			result.CreatedCount++
			total, ok := result.TotalsByCurrency[payment.CurrencyCode]
			if !ok {
				total = decimal.Zero
			}
			result.TotalsByCurrency[payment.CurrencyCode] = total.Add(payment.Amount)
			if commit {
				s.metrics.RecordCreated(payment.CurrencyCode)
			}
		}
	}

	if commit {
		s.metrics.RecordRun()
		s.log.Info("payment generation run finished",
			zap.String("month", month.String()),
			zap.Int("created", result.CreatedCount),
			zap.Int("skipped", result.SkippedCount),
		)
		if result.CreatedCount > 0 {
			s.events.Dispatch(ctx, notify.Event{
				Type:       notify.EventPaymentsCreated,
				OccurredAt: s.clock.Now(),
				Payload: map[string]any{
					"month":   month.String(),
					"created": result.CreatedCount,
					"skipped": result.SkippedCount,
				},
			})
		}
	}

	return result, nil
}

// evaluate decides the charge for one student, or the reason there is
// none. It never touches the payments table; duplicate detection belongs
// to the insert itself.
func (s *Service) evaluate(
	ctx context.Context,
	student directorydomain.Student,
	sub *feeplandomain.StudentFeePlan,
	month billing.Month,
	planCache map[snowflake.ID]*plandomain.Plan,
	currencyCache map[string]bool,
) (*paymentdomain.Payment, generationdomain.SkipReason, error) {
	if sub == nil || !sub.IsActive {
		return nil, generationdomain.SkipNoActiveSubscription, nil
	}

	var count int32 = 1
	if sub.IntervalCount != nil {
		count = *sub.IntervalCount
	} else if sub.Interval == billing.IntervalCustom {
		return nil, generationdomain.SkipInvalidIntervalCount, nil
	}
	if _, err := billing.IntervalMonths(sub.Interval, count); err != nil {
		return nil, generationdomain.SkipInvalidIntervalCount, nil
	}

	// A subscription whose plan is gone or retired falls back to its own
	// custom amount.
	var plan *plandomain.Plan
	if sub.PlanID != nil {
		cached, err := s.lookupPlan(ctx, *sub.PlanID, planCache)
		if err != nil {
			return nil, "", err
		}
		if cached != nil && cached.IsActive {
			plan = cached
		}
	}

	var base decimal.Decimal
	switch {
	case plan != nil:
		base = plan.BaseAmount
	case sub.CustomAmount != nil && !sub.CustomAmount.IsNegative():
		base = *sub.CustomAmount
	default:
		return nil, generationdomain.SkipMisconfiguredAmount, nil
	}

	currencyCode := ""
	if sub.CurrencyCode != nil {
		currencyCode = *sub.CurrencyCode
	} else if plan != nil {
		currencyCode = plan.CurrencyCode
	}
	if strings.TrimSpace(currencyCode) == "" {
		return nil, generationdomain.SkipMisconfiguredCurrency, nil
	}
	active, err := s.currencyActive(ctx, currencyCode, currencyCache)
	if err != nil {
		return nil, "", err
	}
	if !active {
		return nil, generationdomain.SkipMisconfiguredCurrency, nil
	}

	from := sub.EffectiveFrom
	if from == nil && sub.Interval != billing.IntervalMonthly {
		anchor := billing.MonthOf(sub.CreatedAt)
		from = &anchor
	}
	due, err := billing.IsDue(sub.Interval, count, from, month)
	if err != nil {
		return nil, generationdomain.SkipInvalidIntervalCount, nil
	}
	if !due {
		return nil, generationdomain.SkipNotDueThisCycle, nil
	}

	amount := billing.EffectiveAmount(base, sub.Discount())

	now := s.clock.Now()
	paymentMonth := month
	dueDate := month.LastDay()
	payment := &paymentdomain.Payment{
		ID:           s.genID.Generate(),
		Reference:    ulid.Make().String(),
		StudentID:    student.ID,
		Amount:       amount,
		CurrencyCode: strings.ToUpper(currencyCode),
		Status:       paymentdomain.StatusUnpaid,
		PaymentMonth: &paymentMonth,
		PayAt:        &dueDate,
		Description:  "generated charge for " + month.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if plan != nil {
		planID := plan.ID
		payment.PlanID = &planID
	}
	return payment, "", nil
}

func (s *Service) selectCohort(ctx context.Context, req generationdomain.GenerateRequest) ([]directorydomain.Student, error) {
	selectors := 0
	if req.ClubID != nil {
		selectors++
	}
	if req.OrganizationID != nil {
		selectors++
	}
	if len(req.StudentIDs) > 0 {
		selectors++
	}
	if selectors != 1 {
		return nil, generationdomain.ErrInvalidCohort
	}

	switch {
	case req.ClubID != nil:
		clubID, err := snowflake.ParseString(strings.TrimSpace(*req.ClubID))
		if err != nil || clubID == 0 {
			return nil, generationdomain.ErrInvalidCohort
		}
		club, err := s.directory.FindClub(ctx, clubID)
		if err != nil {
			return nil, err
		}
		if club == nil {
			return nil, generationdomain.ErrCohortNotFound
		}
		return s.directory.ListStudentsByClub(ctx, clubID)

	case req.OrganizationID != nil:
		orgID, err := snowflake.ParseString(strings.TrimSpace(*req.OrganizationID))
		if err != nil || orgID == 0 {
			return nil, generationdomain.ErrInvalidCohort
		}
		org, err := s.directory.FindOrganization(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, generationdomain.ErrCohortNotFound
		}
		return s.directory.ListStudentsByOrganization(ctx, orgID)

	default:
		ids := make([]snowflake.ID, 0, len(req.StudentIDs))
		for _, raw := range req.StudentIDs {
			id, err := snowflake.ParseString(strings.TrimSpace(raw))
			if err != nil || id == 0 {
				return nil, generationdomain.ErrInvalidCohort
			}
			ids = append(ids, id)
		}
		return s.directory.ListStudentsByIDs(ctx, ids)
	}
}

func (s *Service) lookupPlan(ctx context.Context, id snowflake.ID, cache map[snowflake.ID]*plandomain.Plan) (*plandomain.Plan, error) {
	if plan, ok := cache[id]; ok {
		return plan, nil
	}
	plan, err := s.plans.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	cache[id] = plan
	return plan, nil
}

func (s *Service) currencyActive(ctx context.Context, code string, cache map[string]bool) (bool, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if active, ok := cache[key]; ok {
		return active, nil
	}
	_, err := s.currencies.LookupActive(ctx, key)
	switch {
	case err == nil:
		cache[key] = true
		return true, nil
	case errors.Is(err, currencydomain.ErrNotFound) || errors.Is(err, currencydomain.ErrInactive):
		cache[key] = false
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) skip(result *generationdomain.Result, studentID snowflake.ID, reason generationdomain.SkipReason) {
	result.Skipped = append(result.Skipped, generationdomain.SkippedStudent{
		StudentID: studentID.String(),
		Reason:    reason,
	})
	result.SkippedCount++
	if !result.Preview {
		s.metrics.RecordSkipped(string(reason))
	}
}
