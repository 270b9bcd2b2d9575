package compliance

import (
	"math"
	"sort"
)

// ComplianceReport - показатели одного работника за интервал
type ComplianceReport struct {
	WorkerName       string `json:"worker_name"`
	WorkerKey        string `json:"worker_key"`
	CountryCode      string `json:"country_code"`
	RequiredSchedule string `json:"required_schedule"`
	ExcludeHolidays  bool   `json:"exclude_holidays"`

	DaysWithRecord int      `json:"days_with_record"`
	DaysRequired   int      `json:"days_required"`
	CompliancePct  *float64 `json:"compliance_pct"`

	AvgMin   *int    `json:"avg_min"`
	MaxMin   *int    `json:"max_min"`
	MinMin   *int    `json:"min_min"`
	AvgSleep *string `json:"avg_sleep"`
	MaxSleep *string `json:"max_sleep"`
	MinSleep *string `json:"min_sleep"`

	TotalSubmissions int `json:"total_submissions"`
}

// RankEntry - строка списков лучших и худших
type RankEntry struct {
	WorkerName    string   `json:"worker_name"`
	WorkerKey     string   `json:"worker_key"`
	CompliancePct *float64 `json:"compliance_pct"`
}

// Cohort - KPI по всем работникам отчета
type Cohort struct {
	AvgCompliancePct *float64    `json:"avg_compliance_pct"`
	AvgSleep         *string     `json:"avg_sleep"`
	AvgSleepMin      *int        `json:"avg_sleep_min"`
	Top3             []RankEntry `json:"top3"`
	Bottom3          []RankEntry `json:"bottom3"`
}

// Ranking - результат агрегации
type Ranking struct {
	Workers []ComplianceReport `json:"ranking"`
	Cohort  Cohort             `json:"kpi"`
}

// Aggregate строит отчеты активных работников и KPI за интервал r.
// Записи уже должны быть отфильтрованы по r.
//
// days_with_record считает все консолидированные записи, в том числе за дни,
// когда отчет не требовался. В days_required они не входят, поэтому
// выполнение может превышать 100%.
func Aggregate(workers []Worker, subs []Submission, cal Calendar, r DateRange) Ranking {
	cons := Consolidate(subs)
	byWorker := cons.ByWorker()

	reports := make([]ComplianceReport, 0, len(workers))
	for _, w := range workers {
		if !w.IsActive {
			continue
		}

		required := CountRequired(w, r, cal)
		reports = append(reports, buildReport(w, byWorker[w.Key], required, cons.RawCountByWorker[w.Key]))
	}

	return Ranking{Workers: reports, Cohort: cohortOf(reports)}
}

func buildReport(w Worker, records []Submission, required, raw int) ComplianceReport {
	rep := ComplianceReport{
		WorkerName:       w.Name,
		WorkerKey:        w.Key,
		CountryCode:      w.CountryCode,
		RequiredSchedule: w.RequiredSchedule,
		ExcludeHolidays:  w.ExcludeHolidays,
		DaysWithRecord:   len(records),
		DaysRequired:     required,
		CompliancePct:    CompliancePct(len(records), required),
		TotalSubmissions: raw,
	}

	var sum, n int
	for _, rec := range records {
		if rec.DurationMin == nil {
			continue
		}
		d := *rec.DurationMin
		sum += d
		n++
		if rep.MaxMin == nil || d > *rep.MaxMin {
			rep.MaxMin = intPtr(d)
		}
		if rep.MinMin == nil || d < *rep.MinMin {
			rep.MinMin = intPtr(d)
		}
	}
	if n > 0 {
		rep.AvgMin = intPtr(int(roundHalfUp(float64(sum) / float64(n))))
	}

	rep.AvgSleep = formatPtr(rep.AvgMin)
	rep.MaxSleep = formatPtr(rep.MaxMin)
	rep.MinSleep = formatPtr(rep.MinMin)
	return rep
}

// CompliancePct - процент withRecord/required с одним знаком; nil, если ничего не требовалось
func CompliancePct(withRecord, required int) *float64 {
	if required <= 0 {
		return nil
	}
	pct := roundHalfUp(float64(withRecord)/float64(required)*1000) / 10
	return &pct
}

func cohortOf(reports []ComplianceReport) Cohort {
	var c Cohort

	var pctSum float64
	var pctN int
	for _, r := range reports {
		if r.CompliancePct != nil {
			pctSum += *r.CompliancePct
			pctN++
		}
	}
	if pctN > 0 {
		avg := roundHalfUp(pctSum/float64(pctN)*10) / 10
		c.AvgCompliancePct = &avg
	}

	// Средние считаются через текст "h h m min" и обратно, как в таблице работников
	var sleepSum, sleepN int
	for _, r := range reports {
		if r.AvgSleep == nil {
			continue
		}
		if m, ok := ParseDuration(*r.AvgSleep); ok {
			sleepSum += m
			sleepN++
		}
	}
	if sleepN > 0 {
		c.AvgSleepMin = intPtr(int(roundHalfUp(float64(sleepSum) / float64(sleepN))))
		c.AvgSleep = formatPtr(c.AvgSleepMin)
	}

	c.Top3, c.Bottom3 = TopBottom(reports, 3)
	return c
}

// TopBottom сортирует по убыванию выполнения (nil ниже любого числа, при равенстве
// сохраняется входной порядок) и возвращает первые n и последние n в обратном порядке
func TopBottom(reports []ComplianceReport, n int) (top, bottom []RankEntry) {
	sorted := make([]ComplianceReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankValue(sorted[i]) > rankValue(sorted[j])
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	top = make([]RankEntry, 0, n)
	for _, r := range sorted[:n] {
		top = append(top, rankEntry(r))
	}
	bottom = make([]RankEntry, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		bottom = append(bottom, rankEntry(sorted[i]))
	}
	return top, bottom
}

func rankValue(r ComplianceReport) float64 {
	if r.CompliancePct == nil {
		return -1
	}
	return *r.CompliancePct
}

func rankEntry(r ComplianceReport) RankEntry {
	return RankEntry{WorkerName: r.WorkerName, WorkerKey: r.WorkerKey, CompliancePct: r.CompliancePct}
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func intPtr(v int) *int {
	return &v
}
