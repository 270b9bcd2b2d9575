package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-tracker/internal/service"
)

type fakeNotifier struct {
	sent map[int64]string
	fail map[int64]bool
}

func (f *fakeNotifier) Notify(chatID int64, text string) error {
	if f.fail[chatID] {
		return errors.New("blocked by user")
	}
	if f.sent == nil {
		f.sent = map[int64]string{}
	}
	f.sent[chatID] = text
	return nil
}

func TestCronSpec(t *testing.T) {
	spec, err := service.CronSpec("08:30")
	require.NoError(t, err)
	assert.Equal(t, "30 8 * * *", spec)

	spec, err = service.CronSpec("0:05")
	require.NoError(t, err)
	assert.Equal(t, "5 0 * * *", spec)

	for _, bad := range []string{"", "8", "24:00", "07:60", "aa:bb"} {
		_, err := service.CronSpec(bad)
		assert.ErrorIs(t, err, service.ErrInvalidInput, bad)
	}
}

func TestReminderService_SendPending(t *testing.T) {
	env := newEnv(t)
	env.reports.SetClock(func() time.Time {
		return time.Date(2024, time.January, 2, 15, 0, 0, 0, time.UTC)
	})

	_, err := env.workers.LinkChat(ctx, "Ana", 1)
	require.NoError(t, err)
	_, err = env.workers.LinkChat(ctx, "Bruno", 2)
	require.NoError(t, err)
	_, err = env.workers.LinkChat(ctx, "Carla", 3)
	require.NoError(t, err)
	_, err = env.workers.EnsureWorker(ctx, "Dario", "")
	require.NoError(t, err)

	env.submit(t, "Ana", "2024-01-02", 7, 0)

	notifier := &fakeNotifier{fail: map[int64]bool{3: true}}
	reminders := service.NewReminderService(env.reports, env.workers, notifier, time.UTC)

	sent, err := reminders.SendPending(ctx)
	require.NoError(t, err)

	// Ana уже отчиталась, чат Carla падает, у Dario нет чата.
	assert.Equal(t, 1, sent)
	require.Contains(t, notifier.sent, int64(2))
	assert.Contains(t, notifier.sent[2], "Bruno")
	assert.Contains(t, notifier.sent[2], "2024-01-02")
}

func TestReminderService_StartRejectsBadTime(t *testing.T) {
	env := newEnv(t)
	reminders := service.NewReminderService(env.reports, env.workers, &fakeNotifier{}, nil)

	assert.Error(t, reminders.Start("late"))
	reminders.Stop()
}
