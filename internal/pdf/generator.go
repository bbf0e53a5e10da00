package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/money"
)

// Generator renders burn-rate reports with the built-in Helvetica font, so
// text is limited to Latin-1.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report burn.Report) ([]byte, error) {
	if report.Contract == nil {
		return nil, fmt.Errorf("burn report has no contract")
	}
	c := report.Contract
	an := report.Analysis

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Burn rate %s", c.Number()), false)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Contract Burn Rate Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s", c.Number(), safeValue(c.Name())), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period %s to %s, as of %s", formatDate(c.StartDate()), formatDate(c.EndDate()), formatDate(an.AsOf)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.section(pdf, "Contract")
	lines := []string{
		fmt.Sprintf("Customer: %s", safeValue(c.CustomerName())),
		fmt.Sprintf("Prime contractor: %s%s", safeValue(c.PrimeContractor()), primeSuffix(c.IsPrime())),
		fmt.Sprintf("Type: %s   Status: %s", c.Type(), c.Status()),
		fmt.Sprintf("Total value: %s   Funded value: %s", formatAmount(c.TotalValue()), formatAmount(c.FundedValue())),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)

	g.section(pdf, "Burn analysis")
	summary := [][2]string{
		{"Monthly burn", formatAmount(an.MonthlyBurn)},
		{"Quarterly burn", formatAmount(an.QuarterlyBurn)},
		{"Annual burn", formatAmount(an.AnnualBurn)},
		{"Total burned", formatAmount(an.TotalBurned)},
		{"Remaining funds", formatAmount(an.RemainingFunds)},
		{"Months until end", fmt.Sprintf("%d", an.MonthsUntilEnd)},
		{"Months until depleted", formatMonths(an.MonthsUntilDepleted)},
		{"Projected depletion", formatDatePtr(an.ProjectedDepletionDate)},
		{"Warning level", string(an.WarningLevel)},
	}
	for _, row := range summary {
		drawTableRow(pdf, g.fontName, []string{row[0], row[1]}, []float64{70, 60}, false)
	}

	if an.WillExceedFunding {
		pdf.Ln(2)
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, fmt.Sprintf("Warning: funding runs out before the contract ends. Projected shortfall %s.", formatAmount(an.Shortfall)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	g.section(pdf, "Allocations")
	headers := []string{"Resource", "LCAT", "Alloc %", "Annual hrs", "Hourly cost", "Bill rate", "Monthly cost"}
	colWidths := []float64{70, 30, 25, 30, 35, 35, 40}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	if len(report.Lines) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 8, "No active allocations", "1", 1, "C", false, 0, "")
	}
	for _, l := range report.Lines {
		monthly := formatAmount(l.MonthlyCost)
		if l.FixedMonthly {
			monthly += " (fixed)"
		}
		drawTableRow(pdf, g.fontName, []string{
			l.ResourceName,
			safeValue(l.LCAT),
			money.Format(l.Percentage, 1),
			money.Format(l.AnnualHours, 0),
			formatAmount(l.HourlyCost),
			formatAmount(l.BillRate),
			monthly,
		}, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 1 || (len(cols) == 2 && i == 1) {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func primeSuffix(isPrime bool) string {
	if isPrime {
		return " (prime)"
	}
	return " (sub)"
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64) string {
	return "$" + money.Format(value, 2)
}

func formatMonths(months *int) string {
	if months == nil {
		return "unbounded"
	}
	return fmt.Sprintf("%d", *months)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
