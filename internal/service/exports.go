package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/portfolio"
)

//go:generate mockgen -source=exports.go -destination=mocks/exports_mock.go -package=mocks

type ExcelGenerator interface {
	Generate(dashboard portfolio.Dashboard) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report burn.Report) ([]byte, error)
}

type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func burnReportFileName(number string, asOf time.Time) string {
	target := sanitizeFileName(number)
	if target == "" {
		target = "contract"
	}
	return fmt.Sprintf("burn-rate-%s-%s.pdf", target, asOf.Format("20060102"))
}

func dashboardFileName(asOf time.Time) string {
	return fmt.Sprintf("portfolio-dashboard-%s.xlsx", asOf.Format("20060102"))
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
