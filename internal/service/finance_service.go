package service

import (
	"context"
	"log/slog"
	"time"

	"alphagrid-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type IncomeReader interface {
	ApprovedInRange(ctx context.Context, from, to time.Time) ([]domain.IncomeRecord, error)
	ApprovedByCreator(ctx context.Context, userID string, from, to time.Time) ([]domain.IncomeRecord, error)
}

type ExpenseReader interface {
	ApprovedInRange(ctx context.Context, from, to time.Time) ([]domain.ExpenseRecord, error)
	ApprovedByCreator(ctx context.Context, userID string, from, to time.Time) ([]domain.ExpenseRecord, error)
}

type PaymentReader interface {
	ApprovedByWorker(ctx context.Context, workerID string, from, to time.Time) ([]domain.WorkerPayment, error)
}

// FinanceService derives profit and income figures from approved records
// only. Pending and rejected records never count.
type FinanceService struct {
	Income   IncomeReader
	Expenses ExpenseReader
	Payments PaymentReader
	Logger   *slog.Logger
}

type MonthlyProfit struct {
	Year          int
	Month         int
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Profit        decimal.Decimal
}

type SourceBreakdown struct {
	Name          string
	Gross         decimal.Decimal
	Fees          decimal.Decimal
	Net           decimal.Decimal
	FeePercentage decimal.Decimal
}

type MonthReport struct {
	MonthlyProfit
	Breakdown []SourceBreakdown
}

type AnnualReport struct {
	Year          int
	Months        []MonthReport
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalProfit   decimal.Decimal
}

type UserStats struct {
	Payments      []domain.WorkerPayment
	Expenses      []domain.ExpenseRecord
	Income        []domain.IncomeRecord
	TotalPayments decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// MonthlyProfit sums approved income (net of source fees, where a net amount
// exists) against approved expenses for the month. Profit may be negative.
func (s FinanceService) MonthlyProfit(ctx context.Context, year, month int) (MonthlyProfit, error) {
	from, to := MonthBounds(year, month)
	result := MonthlyProfit{Year: year, Month: month}

	income, err := s.Income.ApprovedInRange(ctx, from, to)
	if err != nil {
		return result, err
	}
	expenses, err := s.Expenses.ApprovedInRange(ctx, from, to)
	if err != nil {
		return result, err
	}

	for _, rec := range income {
		result.TotalIncome = result.TotalIncome.Add(effectiveIncome(rec))
	}
	for _, rec := range expenses {
		result.TotalExpenses = result.TotalExpenses.Add(rec.Amount)
	}
	result.Profit = result.TotalIncome.Sub(result.TotalExpenses)
	return result, nil
}

// IncomeBreakdownBySource groups the month's approved income by source name,
// reporting gross, net and the fee delta per source.
func (s FinanceService) IncomeBreakdownBySource(ctx context.Context, year, month int) ([]SourceBreakdown, error) {
	from, to := MonthBounds(year, month)
	income, err := s.Income.ApprovedInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*SourceBreakdown)
	var order []string
	for _, rec := range income {
		gross := rec.Amount
		net := effectiveIncome(rec)
		entry, ok := byName[rec.SourceName]
		if !ok {
			entry = &SourceBreakdown{Name: rec.SourceName, FeePercentage: rec.FeePercentage}
			byName[rec.SourceName] = entry
			order = append(order, rec.SourceName)
		}
		entry.Gross = entry.Gross.Add(gross)
		entry.Net = entry.Net.Add(net)
		entry.Fees = entry.Fees.Add(gross.Sub(net))
	}

	out := make([]SourceBreakdown, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

// AnnualReport aggregates all twelve months. A month that fails to load
// contributes zeroes rather than aborting the report.
func (s FinanceService) AnnualReport(ctx context.Context, year int) (AnnualReport, error) {
	report := AnnualReport{Year: year}
	for month := 1; month <= 12; month++ {
		profit, err := s.MonthlyProfit(ctx, year, month)
		if err != nil {
			s.Logger.Warn("monthly profit unavailable, counting as zero", "year", year, "month", month, "err", err)
			profit = MonthlyProfit{Year: year, Month: month}
		}
		breakdown, err := s.IncomeBreakdownBySource(ctx, year, month)
		if err != nil {
			s.Logger.Warn("income breakdown unavailable", "year", year, "month", month, "err", err)
			breakdown = nil
		}
		report.Months = append(report.Months, MonthReport{MonthlyProfit: profit, Breakdown: breakdown})
		report.TotalIncome = report.TotalIncome.Add(profit.TotalIncome)
		report.TotalExpenses = report.TotalExpenses.Add(profit.TotalExpenses)
	}
	report.TotalProfit = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// UserStats collects a user's approved payments, expenses and income for a
// month.
func (s FinanceService) UserStats(ctx context.Context, userID string, year, month int) (UserStats, error) {
	from, to := MonthBounds(year, month)
	var stats UserStats

	payments, err := s.Payments.ApprovedByWorker(ctx, userID, from, to)
	if err != nil {
		return stats, err
	}
	expenses, err := s.Expenses.ApprovedByCreator(ctx, userID, from, to)
	if err != nil {
		return stats, err
	}
	income, err := s.Income.ApprovedByCreator(ctx, userID, from, to)
	if err != nil {
		return stats, err
	}

	stats.Payments = payments
	stats.Expenses = expenses
	stats.Income = income
	for _, p := range payments {
		stats.TotalPayments = stats.TotalPayments.Add(p.Amount)
	}
	for _, e := range expenses {
		stats.TotalExpenses = stats.TotalExpenses.Add(e.Amount)
	}
	for _, i := range income {
		stats.TotalIncome = stats.TotalIncome.Add(effectiveIncome(i))
	}
	return stats, nil
}

// effectiveIncome prefers the net amount when the source charged a fee.
func effectiveIncome(rec domain.IncomeRecord) decimal.Decimal {
	if rec.NetAmount != nil {
		return *rec.NetAmount
	}
	return rec.Amount
}
