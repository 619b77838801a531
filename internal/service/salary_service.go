package service

import (
	"context"
	"log/slog"
	"time"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// Each active co-founder receives 16% of monthly profit.
var founderShare = decimal.New(16, -2)

type ProfitSource interface {
	MonthlyProfit(ctx context.Context, year, month int) (MonthlyProfit, error)
}

type UserReader interface {
	ActiveByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type SalaryStore interface {
	Insert(ctx context.Context, in repository.CreateSalaryInput) (*domain.SalaryRecord, bool, error)
	MarkPaid(ctx context.Context, id string, paidDate time.Time) (*domain.SalaryRecord, error)
	History(ctx context.Context, userID *string) ([]domain.SalaryRecord, error)
}

// SalaryService distributes monthly profit among active co-founders.
type SalaryService struct {
	Finance  ProfitSource
	Users    UserReader
	Salaries SalaryStore
	Activity ActivityStore
	Logger   *slog.Logger
}

// Calculate creates one pending salary record per active co-founder for the
// month. Recalculating an already-calculated month returns the existing
// records unchanged.
func (s SalaryService) Calculate(ctx context.Context, actor approval.Actor, year, month int) ([]domain.SalaryRecord, error) {
	if actor.Role != domain.RoleCoFounder {
		return nil, domain.ErrForbidden
	}

	profit, err := s.Finance.MonthlyProfit(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if !profit.Profit.IsPositive() {
		return nil, domain.ErrNoProfit
	}

	founders, err := s.Users.ActiveByRole(ctx, domain.RoleCoFounder)
	if err != nil {
		return nil, err
	}

	monthStart, _ := MonthBounds(year, month)
	perFounder := profit.Profit.Mul(founderShare)

	var records []domain.SalaryRecord
	created := 0
	for _, founder := range founders {
		rec, inserted, err := s.Salaries.Insert(ctx, repository.CreateSalaryInput{
			UserID:         founder.ID,
			Month:          monthStart,
			Amount:         perFounder,
			ProfitSharePct: founderShare.Mul(decimal.New(100, 0)),
			TotalProfit:    profit.Profit,
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			created++
		}
		records = append(records, *rec)
	}

	if created > 0 {
		if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
			UserID:     &actor.ID,
			Action:     "calculate_salaries",
			EntityType: "monthly_salary_history",
			Details:    monthStart.Format("2006-01"),
		}); err != nil {
			s.Logger.Warn("failed to write audit entry", "action", "calculate_salaries", "err", err)
		}
	}
	return records, nil
}

// MarkPaid settles a salary record.
func (s SalaryService) MarkPaid(ctx context.Context, actor approval.Actor, salaryID string) (*domain.SalaryRecord, error) {
	if actor.Role != domain.RoleCoFounder {
		return nil, domain.ErrForbidden
	}
	rec, err := s.Salaries.MarkPaid(ctx, salaryID, time.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "mark_salary_paid",
		EntityType: "monthly_salary_history",
		EntityID:   &rec.ID,
	}); err != nil {
		s.Logger.Warn("failed to write audit entry", "action", "mark_salary_paid", "err", err)
	}
	return rec, nil
}

// History lists salary records. Non-founders only see their own.
func (s SalaryService) History(ctx context.Context, actor approval.Actor, userID *string) ([]domain.SalaryRecord, error) {
	if actor.Role != domain.RoleCoFounder {
		userID = &actor.ID
	}
	return s.Salaries.History(ctx, userID)
}
