package compliance_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-tracker/internal/compliance"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func minutes(v int) *int {
	return &v
}

func sub(id, key, name, day string, dur *int, created string) compliance.Submission {
	s := compliance.Submission{
		ID:          id,
		WorkerKey:   key,
		WorkerName:  name,
		Date:        date(day),
		DurationMin: dur,
		CreatedAt:   ts(created),
	}
	if dur != nil {
		s.SleepText = compliance.FormatDuration(*dur)
	}
	return s
}

func ids(records []compliance.Submission) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestConsolidate_EqualDurationLaterTimestampWins(t *testing.T) {
	subs := []compliance.Submission{
		sub("late", "ana", "Ana", "2024-01-01", minutes(420), "2024-01-01T11:00:00Z"),
		sub("early", "ana", "Ana", "2024-01-01", minutes(420), "2024-01-01T10:00:00Z"),
	}

	got := compliance.Consolidate(subs)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "late", got.Records[0].ID)

	// Тот же результат при обратном порядке входа.
	got = compliance.Consolidate([]compliance.Submission{subs[1], subs[0]})
	assert.Equal(t, "late", got.Records[0].ID)
}

func TestConsolidate_DurationBeatsRecency(t *testing.T) {
	subs := []compliance.Submission{
		sub("long", "ana", "Ana", "2024-01-01", minutes(450), "2024-01-01T08:00:00Z"),
		sub("short", "ana", "Ana", "2024-01-01", minutes(300), "2024-01-01T12:00:00Z"),
	}

	got := compliance.Consolidate(subs)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "long", got.Records[0].ID)
}

func TestConsolidate_FullTieKeepsFirstSeen(t *testing.T) {
	subs := []compliance.Submission{
		sub("first", "ana", "Ana", "2024-01-01", minutes(400), "2024-01-01T08:00:00Z"),
		sub("second", "ana", "Ana", "2024-01-01", minutes(400), "2024-01-01T08:00:00Z"),
	}

	got := compliance.Consolidate(subs)
	assert.Equal(t, []string{"first"}, ids(got.Records))
}

func TestConsolidate_UnknownDurationRanksLowest(t *testing.T) {
	subs := []compliance.Submission{
		sub("zero", "ana", "Ana", "2024-01-01", minutes(0), "2024-01-01T08:00:00Z"),
		sub("unknown", "ana", "Ana", "2024-01-01", nil, "2024-01-01T09:00:00Z"),
	}

	got := compliance.Consolidate(subs)
	assert.Equal(t, []string{"zero"}, ids(got.Records))
}

func TestConsolidate_CanonicalOrderAndRawCounts(t *testing.T) {
	subs := []compliance.Submission{
		sub("b2", "bruno", "Bruno", "2024-01-02", minutes(400), "2024-01-02T07:00:00Z"),
		sub("a2", "ana", "Ana", "2024-01-02", minutes(380), "2024-01-02T09:00:00Z"),
		sub("b1", "bruno", "Bruno", "2024-01-01", minutes(410), "2024-01-01T07:00:00Z"),
		sub("b1-dup", "bruno", "Bruno", "2024-01-01", minutes(200), "2024-01-01T08:00:00Z"),
		sub("e1", "elena", "élena", "2024-01-01", minutes(390), "2024-01-01T06:00:00Z"),
		sub("a1", "ana", "Ana", "2024-01-01", minutes(360), "2024-01-01T09:00:00Z"),
	}

	got := compliance.Consolidate(subs)

	// "élena" collates between "Bruno" and any later letter, not after "z".
	assert.Equal(t, []string{"a1", "b1", "e1", "a2", "b2"}, ids(got.Records))
	assert.Equal(t, map[string]int{"ana": 2, "bruno": 3, "elena": 1}, got.RawCountByWorker)
}

func TestConsolidate_Empty(t *testing.T) {
	got := compliance.Consolidate(nil)
	assert.Empty(t, got.Records)
	assert.Empty(t, got.RawCountByWorker)
}

func TestConsolidate_DeterministicUnderPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	workers := []struct{ key, name string }{
		{"ana", "Ana"}, {"bruno", "Bruno"}, {"carla", "Carla"}, {"jose", "José"},
	}
	base := ts("2024-03-01T06:00:00Z")

	var subs []compliance.Submission
	for i := 0; i < 60; i++ {
		w := workers[rng.Intn(len(workers))]
		day := fmt.Sprintf("2024-03-%02d", 1+rng.Intn(5))
		var dur *int
		if rng.Intn(6) > 0 {
			// Мало разных значений, чтобы длительности часто совпадали.
			dur = minutes(360 + 30*rng.Intn(3))
		}
		s := sub(fmt.Sprintf("s%02d", i), w.key, w.name, day, dur, "2024-03-01T06:00:00Z")
		// Разное время создания исключает правило первого вхождения.
		s.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		subs = append(subs, s)
	}

	want := compliance.Consolidate(subs)

	for round := 0; round < 25; round++ {
		shuffled := make([]compliance.Submission, len(subs))
		copy(shuffled, subs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := compliance.Consolidate(shuffled)
		require.Equal(t, ids(want.Records), ids(got.Records), "round %d", round)
		require.Equal(t, want.RawCountByWorker, got.RawCountByWorker, "round %d", round)
	}
}
