package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sleep-tracker/internal/service"
)

func TestExportService_ExportRanking(t *testing.T) {
	env := newEnv(t)
	env.submit(t, "Ana", "2024-01-02", 7, 0)
	_, err := env.workers.EnsureWorker(ctx, "Bruno", "")
	require.NoError(t, err)

	buf, filename, err := service.NewExportService(env.reports).ExportRanking(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "sleep_ranking_2024-01.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking", "KPI"}, f.GetSheetList())

	title, err := f.GetCellValue("Ranking", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sleep compliance 2024-01 (min 5 h 45 min)", title)

	rows, err := f.GetRows("Ranking")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Worker", rows[1][0])
	assert.Equal(t, "Ana", rows[2][0])
	assert.Equal(t, "7 h 0 min", rows[2][8])
	assert.Equal(t, "Bruno", rows[3][0])
	assert.Equal(t, "-", rows[3][8])

	avg, err := f.GetCellValue("KPI", "B2")
	require.NoError(t, err)
	assert.Equal(t, "7 h 0 min", avg)
}

func TestExportService_InvalidMonth(t *testing.T) {
	env := newEnv(t)
	_, _, err := service.NewExportService(env.reports).ExportRanking(ctx, "2024/01")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
