package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"sleep-tracker/internal/compliance"
	"sleep-tracker/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

var ErrExportGenerateFail = errors.New("failed to generate Excel file")

const (
	rankingSheet = "Ranking"
	kpiSheet     = "KPI"
)

var rankingHeader = []string{
	"Worker", "Key", "Country", "Schedule", "Exclude holidays",
	"Days with record", "Days required", "Compliance %",
	"Avg sleep", "Max sleep", "Min sleep", "Total submissions",
}

type ExportService struct {
	reports *ReportService
	logger  *logrus.Logger
}

func NewExportService(reports *ReportService) *ExportService {
	return &ExportService{reports: reports, logger: logging.New()}
}

// ExportRanking выгружает месячный рейтинг в Excel; возвращает содержимое и имя файла
func (s *ExportService) ExportRanking(ctx context.Context, month string) (*bytes.Buffer, string, error) {
	ranking, err := s.reports.MonthlyRanking(ctx, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rankingSheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// Удаляем стандартный Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Заголовок
	f.SetCellValue(rankingSheet, "A1", fmt.Sprintf("Sleep compliance %s (min %s)",
		ranking.Month, compliance.FormatDuration(ranking.MinSleepMinutes)))
	f.MergeCell(rankingSheet, "A1", cell(colName(len(rankingHeader)-1), 1))

	for i, title := range rankingHeader {
		f.SetCellValue(rankingSheet, cell(colName(i), 2), title)
	}
	f.SetCellStyle(rankingSheet, "A2", cell(colName(len(rankingHeader)-1), 2), headerStyle)

	f.SetColWidth(rankingSheet, "A", "A", 24)
	f.SetColWidth(rankingSheet, "B", "B", 20)
	f.SetColWidth(rankingSheet, "C", colName(len(rankingHeader)-1), 14)

	row := 3
	for _, rep := range ranking.Workers {
		values := []any{
			rep.WorkerName,
			rep.WorkerKey,
			rep.CountryCode,
			rep.RequiredSchedule,
			yesNo(rep.ExcludeHolidays),
			rep.DaysWithRecord,
			rep.DaysRequired,
			floatOrDash(rep.CompliancePct),
			stringOrDash(rep.AvgSleep),
			stringOrDash(rep.MaxSleep),
			stringOrDash(rep.MinSleep),
			rep.TotalSubmissions,
		}
		for i, v := range values {
			f.SetCellValue(rankingSheet, cell(colName(i), row), v)
		}
		row++
	}

	if err := s.writeKPI(f, ranking.Cohort, headerStyle); err != nil {
		s.logger.WithError(err).Error("Failed to write KPI sheet")
		return nil, "", ErrExportGenerateFail
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.WithError(err).Error("Failed to write Excel file")
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("sleep_ranking_%s.xlsx", ranking.Month)
	return buf, filename, nil
}

func (s *ExportService) writeKPI(f *excelize.File, kpi compliance.Cohort, headerStyle int) error {
	if _, err := f.NewSheet(kpiSheet); err != nil {
		return err
	}

	f.SetCellValue(kpiSheet, "A1", "Average compliance %")
	f.SetCellValue(kpiSheet, "B1", floatOrDash(kpi.AvgCompliancePct))
	f.SetCellValue(kpiSheet, "A2", "Average sleep")
	f.SetCellValue(kpiSheet, "B2", stringOrDash(kpi.AvgSleep))
	f.SetColWidth(kpiSheet, "A", "A", 24)
	f.SetColWidth(kpiSheet, "B", "D", 18)

	f.SetCellValue(kpiSheet, "A4", "Top 3")
	f.SetCellValue(kpiSheet, "C4", "Bottom 3")
	f.SetCellStyle(kpiSheet, "A4", "D4", headerStyle)

	for i, e := range kpi.Top3 {
		f.SetCellValue(kpiSheet, cell("A", 5+i), e.WorkerName)
		f.SetCellValue(kpiSheet, cell("B", 5+i), floatOrDash(e.CompliancePct))
	}
	for i, e := range kpi.Bottom3 {
		f.SetCellValue(kpiSheet, cell("C", 5+i), e.WorkerName)
		f.SetCellValue(kpiSheet, cell("D", 5+i), floatOrDash(e.CompliancePct))
	}
	return nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func floatOrDash(v *float64) any {
	if v == nil {
		return "-"
	}
	return *v
}

func stringOrDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
