package service

import (
	"context"
	"testing"
	"time"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProfit struct {
	profit decimal.Decimal
}

func (f fixedProfit) MonthlyProfit(_ context.Context, year, month int) (MonthlyProfit, error) {
	return MonthlyProfit{Year: year, Month: month, TotalIncome: f.profit, Profit: f.profit}, nil
}

type fakeUserReader struct {
	founders []domain.User
}

func (f fakeUserReader) ActiveByRole(_ context.Context, _ domain.UserRole) ([]domain.User, error) {
	return f.founders, nil
}

type fakeSalaryStore struct {
	existing   map[string]domain.SalaryRecord
	inserted   []repository.CreateSalaryInput
	history    []domain.SalaryRecord
	historyArg *string
}

func (f *fakeSalaryStore) Insert(_ context.Context, in repository.CreateSalaryInput) (*domain.SalaryRecord, bool, error) {
	key := in.UserID + in.Month.Format("2006-01")
	if rec, ok := f.existing[key]; ok {
		return &rec, false, nil
	}
	f.inserted = append(f.inserted, in)
	rec := domain.SalaryRecord{
		ID:             "sal-" + in.UserID,
		UserID:         in.UserID,
		Month:          in.Month,
		Amount:         in.Amount,
		ProfitSharePct: in.ProfitSharePct,
		TotalProfit:    in.TotalProfit,
		Status:         domain.SalaryPending,
	}
	if f.existing == nil {
		f.existing = make(map[string]domain.SalaryRecord)
	}
	f.existing[key] = rec
	return &rec, true, nil
}

func (f *fakeSalaryStore) MarkPaid(_ context.Context, id string, paidDate time.Time) (*domain.SalaryRecord, error) {
	return &domain.SalaryRecord{ID: id, Status: domain.SalaryPaid, PaidDate: &paidDate}, nil
}

func (f *fakeSalaryStore) History(_ context.Context, userID *string) ([]domain.SalaryRecord, error) {
	f.historyArg = userID
	return f.history, nil
}

func founderActor(id string) approval.Actor {
	return approval.Actor{ID: id, Role: domain.RoleCoFounder}
}

func TestCalculateDistributesSixteenPercent(t *testing.T) {
	store := &fakeSalaryStore{}
	activity := &fakeActivity{}
	svc := SalaryService{
		Finance:  fixedProfit{profit: dec("1000")},
		Users:    fakeUserReader{founders: []domain.User{{ID: "alice"}, {ID: "bob"}}},
		Salaries: store,
		Activity: activity,
		Logger:   discardLogger(),
	}

	records, err := svc.Calculate(context.Background(), founderActor("alice"), 2025, 3)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.Amount.Equal(dec("160")), "got %s", rec.Amount)
		assert.True(t, rec.ProfitSharePct.Equal(dec("16")))
		assert.True(t, rec.TotalProfit.Equal(dec("1000")))
		assert.Equal(t, domain.SalaryPending, rec.Status)
	}
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "calculate_salaries", activity.entries[0].Action)
}

func TestCalculateIsIdempotentPerMonth(t *testing.T) {
	store := &fakeSalaryStore{}
	activity := &fakeActivity{}
	svc := SalaryService{
		Finance:  fixedProfit{profit: dec("1000")},
		Users:    fakeUserReader{founders: []domain.User{{ID: "alice"}}},
		Salaries: store,
		Activity: activity,
		Logger:   discardLogger(),
	}

	first, err := svc.Calculate(context.Background(), founderActor("alice"), 2025, 3)
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), founderActor("alice"), 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.inserted, 1, "recalculation must not insert again")
	assert.Len(t, activity.entries, 1, "recalculation must not audit again")
}

func TestCalculateRequiresProfit(t *testing.T) {
	for _, profit := range []string{"0", "-500"} {
		svc := SalaryService{
			Finance:  fixedProfit{profit: dec(profit)},
			Users:    fakeUserReader{},
			Salaries: &fakeSalaryStore{},
			Activity: &fakeActivity{},
			Logger:   discardLogger(),
		}
		_, err := svc.Calculate(context.Background(), founderActor("alice"), 2025, 3)
		assert.ErrorIs(t, err, domain.ErrNoProfit, "profit %s", profit)
	}
}

func TestCalculateRequiresFounder(t *testing.T) {
	svc := SalaryService{
		Finance:  fixedProfit{profit: dec("1000")},
		Salaries: &fakeSalaryStore{},
		Activity: &fakeActivity{},
		Logger:   discardLogger(),
	}
	_, err := svc.Calculate(context.Background(),
		approval.Actor{ID: "bob", Role: domain.RolePermanentPartner}, 2025, 3)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMarkPaidRequiresFounder(t *testing.T) {
	svc := SalaryService{
		Salaries: &fakeSalaryStore{},
		Activity: &fakeActivity{},
		Logger:   discardLogger(),
	}
	_, err := svc.MarkPaid(context.Background(),
		approval.Actor{ID: "bob", Role: domain.RoleTemporaryWorker}, "sal-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHistoryScopesNonFoundersToSelf(t *testing.T) {
	store := &fakeSalaryStore{}
	svc := SalaryService{Salaries: store, Logger: discardLogger()}

	other := "someone-else"
	_, err := svc.History(context.Background(),
		approval.Actor{ID: "bob", Role: domain.RolePermanentPartner}, &other)
	require.NoError(t, err)
	require.NotNil(t, store.historyArg)
	assert.Equal(t, "bob", *store.historyArg)

	_, err = svc.History(context.Background(), founderActor("alice"), nil)
	require.NoError(t, err)
	assert.Nil(t, store.historyArg, "founders may browse everyone")
}
