package compliance

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Consolidation - записи без дублей
type Consolidation struct {
	// Одна запись на (работник, дата): по дате, имени (collate), времени создания
	Records []Submission
	// Количество всех исходных записей по ключу работника
	RawCountByWorker map[string]int
}

type entryKey struct {
	worker string
	date   string
}

// Consolidate оставляет лучшую запись работника за день.
//
// Побеждает большая длительность, затем более поздняя запись, затем первая во входе.
// Неизвестная длительность ниже любой известной, включая ноль.
func Consolidate(subs []Submission) Consolidation {
	best := make(map[entryKey]Submission, len(subs))
	rawCount := make(map[string]int)

	for _, s := range subs {
		rawCount[s.WorkerKey]++

		k := entryKey{worker: s.WorkerKey, date: DateKey(s.Date)}
		cur, ok := best[k]
		if !ok || supersedes(s, cur) {
			best[k] = s
		}
	}

	records := make([]Submission, 0, len(best))
	for _, s := range best {
		records = append(records, s)
	}
	sortRecords(records)

	return Consolidation{Records: records, RawCountByWorker: rawCount}
}

// supersedes - должен ли candidate заменить current
func supersedes(candidate, current Submission) bool {
	switch compareDuration(candidate.DurationMin, current.DurationMin) {
	case 1:
		return true
	case -1:
		return false
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

func compareDuration(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a > *b:
		return 1
	case *a < *b:
		return -1
	}
	return 0
}

// sortRecords задает канонический порядок; ключ работника - последний критерий
func sortRecords(records []Submission) {
	// Collator не потокобезопасен, создаем на каждый вызов
	col := collate.New(language.Und)

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if da, db := Day(a.Date), Day(b.Date); !da.Equal(db) {
			return da.Before(db)
		}
		if a.WorkerName != b.WorkerName {
			if c := col.CompareString(a.WorkerName, b.WorkerName); c != 0 {
				return c < 0
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.WorkerName != b.WorkerName {
			return a.WorkerName < b.WorkerName
		}
		return a.WorkerKey < b.WorkerKey
	})
}

// ByWorker группирует записи по ключу работника
func (c Consolidation) ByWorker() map[string][]Submission {
	out := make(map[string][]Submission)
	for _, r := range c.Records {
		out[r.WorkerKey] = append(out[r.WorkerKey], r)
	}
	return out
}
