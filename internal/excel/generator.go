package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/money"
	"github.com/nurpe/contract-tracker/internal/portfolio"
)

const (
	summarySheet     = "Summary"
	healthSheet      = "Contract Health"
	utilizationSheet = "Resources"
	projectionSheet  = "Projections"
	alertsSheet      = "Alerts"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the portfolio dashboard as a workbook, one sheet per
// dashboard section.
func (g *Generator) Generate(dashboard portfolio.Dashboard) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, dashboard.Metrics)

	for _, sheet := range []string{healthSheet, utilizationSheet, projectionSheet, alertsSheet} {
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	g.writeHealth(file, dashboard.HealthCards)
	g.writeUtilization(file, dashboard.Utilization)
	g.writeProjections(file, dashboard.Projections)
	g.writeAlerts(file, dashboard.Alerts)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setter(file *excelize.File, sheet string) func(cell string, value interface{}) {
	return func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}
}

func writeHeader(file *excelize.File, sheet string, row int, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func (g *Generator) writeSummary(file *excelize.File, m portfolio.DashboardMetrics) {
	set := setter(file, summarySheet)

	rows := []struct {
		label string
		value interface{}
	}{
		{"Calculated at", formatDateTime(m.CalculatedAt)},
		{"Overall health", string(m.OverallHealth)},
		{"Total contract value", formatMoney(m.TotalContractValue)},
		{"Total funded value", formatMoney(m.TotalFundedValue)},
		{"Total burned", formatMoney(m.TotalBurnedAmount)},
		{"Monthly burn rate", formatMoney(m.MonthlyBurnRate)},
		{"Quarterly burn rate", formatMoney(m.QuarterlyBurnRate)},
		{"Projected monthly revenue", formatMoney(m.ProjectedMonthlyRevenue)},
		{"Projected monthly profit", formatMoney(m.ProjectedMonthlyProfit)},
		{"Active contracts", m.ActiveContracts},
		{"Draft contracts", m.DraftContracts},
		{"Closed contracts", m.ClosedContracts},
		{"Critical contracts", m.CriticalContracts},
		{"Warning contracts", m.WarningContracts},
	}
	for i, r := range rows {
		set(fmt.Sprintf("A%d", i+1), r.label)
		set(fmt.Sprintf("B%d", i+1), r.value)
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 32)
	_ = file.SetColWidth(summarySheet, "B", "B", 24)
}

func (g *Generator) writeHealth(file *excelize.File, cards []portfolio.ContractHealth) {
	set := setter(file, healthSheet)
	writeHeader(file, healthSheet, 1, []string{
		"Contract",
		"Name",
		"Customer",
		"Status",
		"Funded",
		"Monthly burn",
		"Remaining",
		"Months left",
		"Warning",
		"Resources",
		"Margin %",
		"Trend",
		"Alerts",
	})

	for i, card := range cards {
		row := i + 2
		set(fmt.Sprintf("A%d", row), card.ContractNumber)
		set(fmt.Sprintf("B%d", row), card.Name)
		set(fmt.Sprintf("C%d", row), card.CustomerName)
		set(fmt.Sprintf("D%d", row), string(card.Status))
		set(fmt.Sprintf("E%d", row), formatMoney(card.FundedValue))
		set(fmt.Sprintf("F%d", row), formatMoney(card.Analysis.MonthlyBurn))
		set(fmt.Sprintf("G%d", row), formatMoney(card.Analysis.RemainingFunds))
		set(fmt.Sprintf("H%d", row), formatMonths(card.Analysis.MonthsUntilDepleted))
		set(fmt.Sprintf("I%d", row), string(card.Analysis.WarningLevel))
		set(fmt.Sprintf("J%d", row), card.ResourceCount)
		set(fmt.Sprintf("K%d", row), money.Format(card.ProfitMargin, 1))
		set(fmt.Sprintf("L%d", row), string(card.Trend))
		set(fmt.Sprintf("M%d", row), strings.Join(card.Alerts, "; "))
	}

	_ = file.SetColWidth(healthSheet, "A", "A", 18)
	_ = file.SetColWidth(healthSheet, "B", "C", 32)
	_ = file.SetColWidth(healthSheet, "D", "L", 14)
	_ = file.SetColWidth(healthSheet, "M", "M", 60)
}

func (g *Generator) writeUtilization(file *excelize.File, u portfolio.ResourceUtilization) {
	set := setter(file, utilizationSheet)

	set("A1", "Active resources")
	set("B1", u.ActiveResources)
	set("A2", "Bench resources")
	set("B2", u.BenchResources)
	set("A3", "Average utilization %")
	set("B3", money.Format(u.AverageUtilization, 1))
	set("A4", "Monthly cost")
	set("B4", formatMoney(u.TotalMonthlyCost))
	set("A5", "Monthly revenue")
	set("B5", formatMoney(u.TotalMonthlyRevenue))
	set("A6", "Underwater resources")
	set("B6", u.UnderwaterResources)

	row := 8
	writeHeader(file, utilizationSheet, row, []string{"Category", "Count", "Avg cost", "Avg revenue", "Avg margin %", "Utilization %"})
	categories := make([]model.ResourceCategory, 0, len(u.ByCategory))
	for category := range u.ByCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, category := range categories {
		row++
		cm := u.ByCategory[category]
		set(fmt.Sprintf("A%d", row), string(cm.Category))
		set(fmt.Sprintf("B%d", row), cm.Count)
		set(fmt.Sprintf("C%d", row), formatMoney(cm.AverageCost))
		set(fmt.Sprintf("D%d", row), formatMoney(cm.AverageRevenue))
		set(fmt.Sprintf("E%d", row), money.Format(cm.AverageMargin, 1))
		set(fmt.Sprintf("F%d", row), money.Format(cm.UtilizationPercentage, 1))
	}

	row += 2
	row = writeAllocations(file, row, "Top utilized", u.TopUtilized)
	row += 2
	writeAllocations(file, row, "Underutilized", u.Underutilized)

	_ = file.SetColWidth(utilizationSheet, "A", "A", 28)
	_ = file.SetColWidth(utilizationSheet, "B", "G", 16)
}

func writeAllocations(file *excelize.File, row int, title string, list []portfolio.ResourceAllocation) int {
	set := setter(file, utilizationSheet)
	set(fmt.Sprintf("A%d", row), title)
	row++
	writeHeader(file, utilizationSheet, row, []string{"Resource", "LCAT", "Allocation %", "Contracts", "Monthly cost", "Monthly revenue", "Underwater"})
	for _, ra := range list {
		row++
		set(fmt.Sprintf("A%d", row), ra.ResourceName)
		set(fmt.Sprintf("B%d", row), ra.LCATName)
		set(fmt.Sprintf("C%d", row), money.Format(ra.TotalAllocation, 1))
		set(fmt.Sprintf("D%d", row), ra.ContractCount)
		set(fmt.Sprintf("E%d", row), formatMoney(ra.MonthlyCost))
		set(fmt.Sprintf("F%d", row), formatMoney(ra.MonthlyRevenue))
		set(fmt.Sprintf("G%d", row), yesNo(ra.IsUnderwater))
	}
	return row
}

func (g *Generator) writeProjections(file *excelize.File, p portfolio.FinancialProjection) {
	set := setter(file, projectionSheet)
	writeHeader(file, projectionSheet, 1, []string{
		"Month",
		"Revenue",
		"Cost",
		"Profit",
		"Cumulative revenue",
		"Cumulative cost",
		"Active contracts",
		"Expiring",
		"Depleting",
	})

	row := 1
	for _, m := range p.Months {
		row++
		set(fmt.Sprintf("A%d", row), m.Month.Format("2006-01"))
		set(fmt.Sprintf("B%d", row), formatMoney(m.ProjectedRevenue))
		set(fmt.Sprintf("C%d", row), formatMoney(m.ProjectedCost))
		set(fmt.Sprintf("D%d", row), formatMoney(m.ProjectedProfit))
		set(fmt.Sprintf("E%d", row), formatMoney(m.CumulativeRevenue))
		set(fmt.Sprintf("F%d", row), formatMoney(m.CumulativeCost))
		set(fmt.Sprintf("G%d", row), m.ActiveContractCount)
		set(fmt.Sprintf("H%d", row), strings.Join(m.ExpiringContracts, ", "))
		set(fmt.Sprintf("I%d", row), strings.Join(m.DepletingContracts, ", "))
	}
	row++
	set(fmt.Sprintf("A%d", row), "Total")
	set(fmt.Sprintf("B%d", row), formatMoney(p.TotalProjectedRevenue))
	set(fmt.Sprintf("C%d", row), formatMoney(p.TotalProjectedCost))
	set(fmt.Sprintf("D%d", row), formatMoney(p.TotalProjectedProfit))

	row += 2
	set(fmt.Sprintf("A%d", row), "Depletion schedule")
	row++
	writeHeader(file, projectionSheet, row, []string{"Contract", "Depletion date", "Remaining", "Days", "Impact"})
	for _, d := range p.DepletionSchedule {
		row++
		set(fmt.Sprintf("A%d", row), d.ContractNumber)
		set(fmt.Sprintf("B%d", row), formatDate(d.EstimatedDepletionDate))
		set(fmt.Sprintf("C%d", row), formatMoney(d.RemainingFunds))
		set(fmt.Sprintf("D%d", row), d.DaysUntilDepletion)
		set(fmt.Sprintf("E%d", row), string(d.ImpactSeverity))
	}

	_ = file.SetColWidth(projectionSheet, "A", "G", 18)
	_ = file.SetColWidth(projectionSheet, "H", "I", 40)
}

func (g *Generator) writeAlerts(file *excelize.File, alerts []portfolio.Alert) {
	set := setter(file, alertsSheet)
	writeHeader(file, alertsSheet, 1, []string{"Severity", "Type", "Title", "Message", "Entity", "Created"})
	for i, a := range alerts {
		row := i + 2
		set(fmt.Sprintf("A%d", row), string(a.Severity))
		set(fmt.Sprintf("B%d", row), string(a.Type))
		set(fmt.Sprintf("C%d", row), a.Title)
		set(fmt.Sprintf("D%d", row), a.Message)
		set(fmt.Sprintf("E%d", row), a.EntityType)
		set(fmt.Sprintf("F%d", row), formatDateTime(a.CreatedAt))
	}
	_ = file.SetColWidth(alertsSheet, "A", "B", 20)
	_ = file.SetColWidth(alertsSheet, "C", "D", 48)
	_ = file.SetColWidth(alertsSheet, "E", "F", 20)
}

func formatMoney(v float64) string {
	return money.Format(v, 2)
}

func formatMonths(months *int) string {
	if months == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *months)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
