package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hubln/internal/database"
	"hubln/internal/domain"
	"hubln/internal/models"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sentNotification struct {
	UserID uint
	Type   string
	Data   map[string]interface{}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Type: notifType, Data: data})
	return nil
}

func (r *recordingNotifier) count(notifType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Type == notifType {
			n++
		}
	}
	return n
}

type fixture struct {
	db    *gorm.DB
	clock time.Time

	users       *repository.UserRepository
	referrals   *repository.ReferralRepository
	products    *repository.ProductRepository
	prices      *repository.PriceRepository
	coupons     *repository.CouponRepository
	submissions *repository.SubmissionRepository
	commissions *repository.CommissionRepository
	withdrawals *repository.WithdrawalRepository
	payments    *repository.PaymentRepository
	settings    *repository.SettingRepository

	notifier      *recordingNotifier
	pricing       *PricingService
	status        *StatusService
	couponSvc     *CouponService
	submissionSvc *SubmissionService
	commissionSvc *CommissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLiteMemory(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	f := &fixture{
		db:          db,
		clock:       time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		users:       repository.NewUserRepository(db),
		referrals:   repository.NewReferralRepository(db),
		products:    repository.NewProductRepository(db),
		prices:      repository.NewPriceRepository(db),
		coupons:     repository.NewCouponRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		commissions: repository.NewCommissionRepository(db),
		withdrawals: repository.NewWithdrawalRepository(db),
		payments:    repository.NewPaymentRepository(db),
		settings:    repository.NewSettingRepository(db),
		notifier:    &recordingNotifier{},
	}
	f.pricing = NewPricingService(f.users, f.products, f.prices)
	f.status = NewStatusService(f.submissions)
	f.couponSvc = NewCouponService(f.coupons, f.products, f.pricing)
	f.submissionSvc = NewSubmissionService(db, f.submissions, f.products, f.coupons, f.pricing, f.status, f.notifier)
	f.commissionSvc = NewCommissionService(db, f.commissions, f.withdrawals, f.users, f.products, f.prices, f.submissions, f.notifier)
	f.commissionSvc.now = f.now
	f.couponSvc.now = f.now
	return f
}

func (f *fixture) now() time.Time { return f.clock }

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

// user creates an active user, optionally referred by another user.
func (f *fixture) user(t *testing.T, name string, referrer *models.User) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@hubln.test",
		Role:     domain.RoleUser,
		Document: "52998224725",
		PixKey:   name + "-pix",
		IsActive: true,
	}
	if referrer != nil {
		code := referrer.ReferralCode
		u.ReferredBy = &code
	}
	if err := f.referrals.CreateWithCode(u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) product(t *testing.T, base string) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Limpa Nome", BasePrice: decimal.RequireFromString(base), IsActive: true}
	if err := f.products.Create(p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (f *fixture) customPrice(t *testing.T, userID, productID uint, price string) {
	t.Helper()
	if _, err := f.pricing.SetCustomPrice(userID, productID, decimal.RequireFromString(price)); err != nil {
		t.Fatalf("set custom price: %v", err)
	}
}

func clientsN(n int) []ClientData {
	out := make([]ClientData, n)
	for i := range out {
		out[i] = ClientData{Name: fmt.Sprintf("Cliente %d", i+1), Document: fmt.Sprintf("%011d", 10000000000+i)}
	}
	return out
}

func (f *fixture) submission(t *testing.T, buyer *models.User, product *models.Product, n int) *models.Submission {
	t.Helper()
	sub, err := f.submissionSvc.CreateSubmission(buyer.ID, CreateSubmissionInput{
		Title:     "Lote",
		ProductID: product.ID,
		Clients:   clientsN(n),
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func (f *fixture) markPaid(t *testing.T, submissionID uint) {
	t.Helper()
	if _, err := f.submissions.MarkPaid(submissionID, "RECEIVED", f.clock); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got.StringFixed(2), want)
	}
}
