package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

type ReportHandler struct {
	Finance service.FinanceService
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/monthly", h.monthly)
	r.Get("/reports/annual", h.annual)
}

func (h ReportHandler) monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profit, err := h.Finance.MonthlyProfit(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	breakdown, err := h.Finance.IncomeBreakdownBySource(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":          profit.Year,
		"month":         profit.Month,
		"totalIncome":   profit.TotalIncome,
		"totalExpenses": profit.TotalExpenses,
		"profit":        profit.Profit,
		"breakdown":     breakdownResponse(breakdown),
	})
}

func (h ReportHandler) annual(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.Finance.AnnualReport(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	months := make([]map[string]any, 0, len(report.Months))
	for _, m := range report.Months {
		months = append(months, map[string]any{
			"month":         m.Month,
			"totalIncome":   m.TotalIncome,
			"totalExpenses": m.TotalExpenses,
			"profit":        m.Profit,
			"breakdown":     breakdownResponse(m.Breakdown),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":          report.Year,
		"months":        months,
		"totalIncome":   report.TotalIncome,
		"totalExpenses": report.TotalExpenses,
		"totalProfit":   report.TotalProfit,
	})
}

// ExportAnnual is registered outside RegisterRoutes; the download is a
// co-founder route.
func (h ReportHandler) ExportAnnual(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.Finance.AnnualReport(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := exportAnnualXLSX(report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"annual_report_%d.xlsx\"", report.Year))
	_, _ = w.Write(data)
}

// UserStats is registered outside RegisterRoutes so every signed-in account,
// temporary workers included, can read its own figures.
func (h ReportHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.Finance.UserStats(r.Context(), actor.ID, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payments := make([]map[string]any, 0, len(stats.Payments))
	for _, p := range stats.Payments {
		payments = append(payments, workerPaymentResponse(p))
	}
	expenses := make([]map[string]any, 0, len(stats.Expenses))
	for _, e := range stats.Expenses {
		expenses = append(expenses, expenseResponse(e))
	}
	income := make([]map[string]any, 0, len(stats.Income))
	for _, rec := range stats.Income {
		income = append(income, incomeResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payments":      payments,
		"expenses":      expenses,
		"income":        income,
		"totalPayments": stats.TotalPayments,
		"totalExpenses": stats.TotalExpenses,
		"totalIncome":   stats.TotalIncome,
	})
}

func parseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		return 0, errInvalidYear
	}
	return year, nil
}

func breakdownResponse(items []service.SourceBreakdown) []map[string]any {
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, map[string]any{
			"name":          b.Name,
			"gross":         b.Gross,
			"fees":          b.Fees,
			"net":           b.Net,
			"feePercentage": b.FeePercentage,
		})
	}
	return resp
}

func exportAnnualXLSX(report service.AnnualReport) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Annual Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Month", "Total Income", "Total Expenses", "Profit"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, m := range report.Months {
		row := i + 2
		values := []any{
			time.Month(m.Month).String(),
			m.TotalIncome.InexactFloat64(),
			m.TotalExpenses.InexactFloat64(),
			m.Profit.InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	totalRow := len(report.Months) + 2
	totals := []any{
		"Total",
		report.TotalIncome.InexactFloat64(),
		report.TotalExpenses.InexactFloat64(),
		report.TotalProfit.InexactFloat64(),
	}
	for c, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(c+1, totalRow)
		_ = f.SetCellValue(sheet, cell, v)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "D", 18)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "D1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
