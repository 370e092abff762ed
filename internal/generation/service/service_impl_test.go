package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/clubworks/clubledger/internal/clock"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	currencyrepo "github.com/clubworks/clubledger/internal/currency/repository"
	currencyservice "github.com/clubworks/clubledger/internal/currency/service"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	directoryrepo "github.com/clubworks/clubledger/internal/directory/repository"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	feeplanrepo "github.com/clubworks/clubledger/internal/feeplan/repository"
	generationdomain "github.com/clubworks/clubledger/internal/generation/domain"
	"github.com/clubworks/clubledger/internal/notify"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	paymentrepo "github.com/clubworks/clubledger/internal/payment/repository"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	planrepo "github.com/clubworks/clubledger/internal/plan/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    generationdomain.Service
	params Params
	node   *snowflake.Node
	clock  *clock.FakeClock
	org    directorydomain.Organization
	club   directorydomain.Club
	plan   plandomain.Plan
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
		&plandomain.Plan{},
		&feeplandomain.StudentFeePlan{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	f := &fixture{db: db, node: node, clock: fake}

	f.org = directorydomain.Organization{ID: node.Generate(), Name: "Lakeside Sports Association"}
	require.NoError(t, db.Create(&f.org).Error)
	f.club = directorydomain.Club{ID: node.Generate(), OrganizationID: f.org.ID, Name: "Rowing Club"}
	require.NoError(t, db.Create(&f.club).Error)

	require.NoError(t, db.Create(&currencydomain.Currency{Code: "MYR", Name: "Malaysian Ringgit", IsActive: true}).Error)
	require.NoError(t, db.Create(&currencydomain.Currency{Code: "ZWL", Name: "Zimbabwean Dollar", IsActive: false}).Error)

	f.plan = plandomain.Plan{
		ID:           node.Generate(),
		OwnerType:    plandomain.OwnerTypeClub,
		OwnerID:      f.club.ID,
		Name:         "Standard Membership",
		BaseAmount:   decimal.NewFromInt(100),
		CurrencyCode: "MYR",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.plan).Error)

	currencies := currencyservice.NewService(currencyservice.Params{
		Log:  log,
		Repo: currencyrepo.Provide(db),
	})

	f.params = Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Config:     nil,
		Directory:  directoryrepo.Provide(db),
		FeePlans:   feeplanrepo.Provide(),
		Plans:      planrepo.Provide(),
		Payments:   paymentrepo.Provide(),
		Currencies: currencies,
		Metrics:    nil,
		Events:     notify.NewDispatcher(log, nil, "clubledger.events"),
	}
	f.svc = NewService(f.params)
	return f
}

func (f *fixture) addStudent(t *testing.T, name string) directorydomain.Student {
	t.Helper()
	clubID := f.club.ID
	student := directorydomain.Student{
		ID:             f.node.Generate(),
		OrganizationID: f.org.ID,
		ClubID:         &clubID,
		FullName:       name,
	}
	require.NoError(t, f.db.Create(&student).Error)
	return student
}

func (f *fixture) subscribe(t *testing.T, sub feeplandomain.StudentFeePlan) {
	t.Helper()
	if sub.ID == 0 {
		sub.ID = f.node.Generate()
	}
	if sub.Interval == "" {
		sub.Interval = billing.IntervalMonthly
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = f.clock.Now()
		sub.UpdatedAt = f.clock.Now()
	}
	require.NoError(t, f.db.Create(&sub).Error)
}

func (f *fixture) clubCohort(month string) generationdomain.GenerateRequest {
	clubID := f.club.ID.String()
	return generationdomain.GenerateRequest{Month: month, ClubID: &clubID}
}

func (f *fixture) paymentCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	return count
}

func percentDiscount(v int64) (*billing.DiscountType, decimal.Decimal) {
	d := billing.DiscountPercent
	return &d, decimal.NewFromInt(v)
}

func TestCommitCreatesDiscountedCharges(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Mei Ling Tan")
	planID := f.plan.ID
	dt, dv := percentDiscount(10)
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:     student.ID,
		PlanID:        &planID,
		DiscountType:  dt,
		DiscountValue: dv,
		IsActive:      true,
	})

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
	require.Empty(t, result.Skipped)
	require.Len(t, result.Payments, 1)

	payment := result.Payments[0]
	require.Equal(t, student.ID, payment.StudentID)
	require.True(t, payment.Amount.Equal(decimal.NewFromInt(90)))
	require.Equal(t, "MYR", payment.CurrencyCode)
	require.Equal(t, paymentdomain.StatusUnpaid, payment.Status)
	require.NotNil(t, payment.PaymentMonth)
	require.Equal(t, "2024-03", payment.PaymentMonth.String())
	require.NotNil(t, payment.PayAt)
	require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *payment.PayAt)
	require.True(t, result.TotalsByCurrency["MYR"].Equal(decimal.NewFromInt(90)))
	require.EqualValues(t, 1, f.paymentCount(t))
}

func TestCommitIsIdempotentPerMonth(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Adam Chong")
	planID := f.plan.ID
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: student.ID,
		PlanID:    &planID,
		IsActive:  true,
	})

	first, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 1, first.CreatedCount)

	second, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 0, second.CreatedCount)
	require.Len(t, second.Skipped, 1)
	require.Equal(t, generationdomain.SkipAlreadyHasPayment, second.Skipped[0].Reason)
	require.EqualValues(t, 1, f.paymentCount(t))

	// The next month is a fresh slot.
	third, err := f.svc.Commit(context.Background(), f.clubCohort("2024-04"))
	require.NoError(t, err)
	require.Equal(t, 1, third.CreatedCount)
	require.EqualValues(t, 2, f.paymentCount(t))
}

// brokenAfterPaymentRepo forwards to the real repository until a set
// number of inserts, then fails every write.
type brokenAfterPaymentRepo struct {
	paymentdomain.Repository
	healthy int
	inserts int
}

func (r *brokenAfterPaymentRepo) InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) (bool, error) {
	if r.inserts >= r.healthy {
		return false, errors.New("write: connection reset by peer")
	}
	r.inserts++
	return r.Repository.InsertIgnoreDuplicate(ctx, db, p)
}

func TestCommitReportsPartialResultOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	planID := f.plan.ID
	for _, name := range []string{"Hana Lim", "Jun Wei Ng"} {
		student := f.addStudent(t, name)
		f.subscribe(t, feeplandomain.StudentFeePlan{
			StudentID: student.ID,
			PlanID:    &planID,
			IsActive:  true,
		})
	}

	f.params.Payments = &brokenAfterPaymentRepo{Repository: paymentrepo.Provide(), healthy: 1}
	f.svc = NewService(f.params)

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.Error(t, err)

	// The first charge landed before the failure; the result must still
	// name it so the run can be reconciled.
	require.Equal(t, 1, result.CreatedCount)
	require.Len(t, result.Payments, 1)
	require.EqualValues(t, 1, f.paymentCount(t))

	var stored paymentdomain.Payment
	require.NoError(t, f.db.First(&stored).Error)
	require.Equal(t, result.Payments[0].StudentID, stored.StudentID)
}

func TestPreviewWritesNothing(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Nurul Huda")
	planID := f.plan.ID
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: student.ID,
		PlanID:    &planID,
		IsActive:  true,
	})

	preview, err := f.svc.Preview(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.True(t, preview.Preview)
	require.Equal(t, 1, preview.CreatedCount)
	require.EqualValues(t, 0, f.paymentCount(t))

	_, err = f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)

	// A preview after the commit reports the existing charge as a skip.
	after, err := f.svc.Preview(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 0, after.CreatedCount)
	require.Len(t, after.Skipped, 1)
	require.Equal(t, generationdomain.SkipAlreadyHasPayment, after.Skipped[0].Reason)
}

func TestSkipReasons(t *testing.T) {
	f := newFixture(t)
	planID := f.plan.ID

	noSub := f.addStudent(t, "Lena Ortiz")

	inactive := f.addStudent(t, "Petr Novak")
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: inactive.ID,
		PlanID:    &planID,
		IsActive:  false,
	})

	badCount := f.addStudent(t, "Sara Lindgren")
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: badCount.ID,
		PlanID:    &planID,
		Interval:  billing.IntervalCustom,
		IsActive:  true,
	})

	badCurrency := f.addStudent(t, "Omar Haddad")
	amount := decimal.NewFromInt(40)
	zwl := "ZWL"
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:    badCurrency.ID,
		CustomAmount: &amount,
		CurrencyCode: &zwl,
		IsActive:     true,
	})

	noAmount := f.addStudent(t, "Ida Berg")
	ghostPlan := f.node.Generate()
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: noAmount.ID,
		PlanID:    &ghostPlan,
		IsActive:  true,
	})

	offCycle := f.addStudent(t, "Tomas Ruiz")
	anchor := billing.Month{Year: 2024, Month: time.January}
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:     offCycle.ID,
		PlanID:        &planID,
		Interval:      billing.IntervalQuarterly,
		EffectiveFrom: &anchor,
		IsActive:      true,
	})

	notStarted := f.addStudent(t, "Amira Yusof")
	future := billing.Month{Year: 2024, Month: time.June}
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:     notStarted.ID,
		PlanID:        &planID,
		EffectiveFrom: &future,
		IsActive:      true,
	})

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 0, result.CreatedCount)
	require.EqualValues(t, 0, f.paymentCount(t))

	// Every cohort member is accounted for exactly once.
	require.Equal(t, 7, result.SkippedCount)
	reasons := map[string]generationdomain.SkipReason{}
	for _, s := range result.Skipped {
		reasons[s.StudentID] = s.Reason
	}
	require.Equal(t, generationdomain.SkipNoActiveSubscription, reasons[noSub.ID.String()])
	require.Equal(t, generationdomain.SkipNoActiveSubscription, reasons[inactive.ID.String()])
	require.Equal(t, generationdomain.SkipInvalidIntervalCount, reasons[badCount.ID.String()])
	require.Equal(t, generationdomain.SkipMisconfiguredCurrency, reasons[badCurrency.ID.String()])
	require.Equal(t, generationdomain.SkipMisconfiguredAmount, reasons[noAmount.ID.String()])
	require.Equal(t, generationdomain.SkipNotDueThisCycle, reasons[offCycle.ID.String()])
	require.Equal(t, generationdomain.SkipNotDueThisCycle, reasons[notStarted.ID.String()])
}

func TestQuarterlyDueMonthCreatesCharge(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Hana Sato")
	planID := f.plan.ID
	anchor := billing.Month{Year: 2024, Month: time.January}
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:     student.ID,
		PlanID:        &planID,
		Interval:      billing.IntervalQuarterly,
		EffectiveFrom: &anchor,
		IsActive:      true,
	})

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-04"))
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
}

func TestDeletedPlanFallsBackToCustomAmount(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Diego Fuentes")
	ghostPlan := f.node.Generate()
	amount := decimal.NewFromInt(65)
	myr := "MYR"
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:    student.ID,
		PlanID:       &ghostPlan,
		CustomAmount: &amount,
		CurrencyCode: &myr,
		IsActive:     true,
	})

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
	require.True(t, result.Payments[0].Amount.Equal(decimal.NewFromInt(65)))
	require.Nil(t, result.Payments[0].PlanID)
}

func TestOversizedDiscountFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Felix Weber")
	planID := f.plan.ID
	fixed := billing.DiscountFixed
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID:     student.ID,
		PlanID:        &planID,
		DiscountType:  &fixed,
		DiscountValue: decimal.NewFromInt(150),
		IsActive:      true,
	})

	result, err := f.svc.Commit(context.Background(), f.clubCohort("2024-03"))
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedCount)
	require.True(t, result.Payments[0].Amount.IsZero())
}

func TestCohortSelection(t *testing.T) {
	f := newFixture(t)
	student := f.addStudent(t, "Ines Almeida")
	planID := f.plan.ID
	f.subscribe(t, feeplandomain.StudentFeePlan{
		StudentID: student.ID,
		PlanID:    &planID,
		IsActive:  true,
	})

	_, err := f.svc.Commit(context.Background(), generationdomain.GenerateRequest{Month: "2024-03"})
	require.ErrorIs(t, err, generationdomain.ErrInvalidCohort)

	clubID := f.club.ID.String()
	orgID := f.org.ID.String()
	_, err = f.svc.Commit(context.Background(), generationdomain.GenerateRequest{
		Month:          "2024-03",
		ClubID:         &clubID,
		OrganizationID: &orgID,
	})
	require.ErrorIs(t, err, generationdomain.ErrInvalidCohort)

	ghost := f.node.Generate().String()
	_, err = f.svc.Commit(context.Background(), generationdomain.GenerateRequest{Month: "2024-03", ClubID: &ghost})
	require.ErrorIs(t, err, generationdomain.ErrCohortNotFound)

	_, err = f.svc.Commit(context.Background(), generationdomain.GenerateRequest{Month: "2024-13", ClubID: &clubID})
	require.ErrorIs(t, err, billing.ErrInvalidMonth)

	byOrg, err := f.svc.Commit(context.Background(), generationdomain.GenerateRequest{Month: "2024-03", OrganizationID: &orgID})
	require.NoError(t, err)
	require.Equal(t, 1, byOrg.CreatedCount)

	byIDs, err := f.svc.Commit(context.Background(), generationdomain.GenerateRequest{
		Month:      "2024-04",
		StudentIDs: []string{student.ID.String()},
	})
	require.NoError(t, err)
	require.Equal(t, 1, byIDs.CreatedCount)
}
