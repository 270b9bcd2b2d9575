package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sleep-tracker/internal/database"
	"sleep-tracker/internal/repository"
	"sleep-tracker/internal/service"
)

var ctx = context.Background()

type testEnv struct {
	workerRepo *repository.GormWorkerRepository
	entryRepo  *repository.GormSleepEntryRepository
	holiRepo   *repository.GormHolidayRepository

	workers  *service.WorkerService
	entries  *service.SleepEntryService
	holidays *service.HolidayService
	reports  *service.ReportService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	env := &testEnv{}
	env.workerRepo, err = repository.NewGormWorkerRepository(db)
	require.NoError(t, err)
	env.entryRepo, err = repository.NewGormSleepEntryRepository(db)
	require.NoError(t, err)
	env.holiRepo, err = repository.NewGormHolidayRepository(db)
	require.NoError(t, err)

	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	env.workers = service.NewWorkerService(env.workerRepo, service.WorkerDefaults{
		Country:         "PE",
		Timezone:        "America/Lima",
		Schedule:        "MON_FRI",
		ExcludeHolidays: true,
	})
	env.entries = service.NewSleepEntryService(env.entryRepo, env.workers)
	env.holidays = service.NewHolidayService(env.holiRepo)
	env.reports = service.NewReportService(env.workerRepo, env.entryRepo, env.holidays, 345, lima)
	return env
}

func intp(v int) *int {
	return &v
}

func (e *testEnv) submit(t *testing.T, name, date string, h, m int) {
	t.Helper()
	_, err := e.entries.Submit(ctx, service.SubmitInput{
		WorkerName: name,
		Date:       date,
		SleepH:     intp(h),
		SleepM:     intp(m),
	})
	require.NoError(t, err)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
