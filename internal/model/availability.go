package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DateLayout — формат хранения даты записи (без часового пояса).
const DateLayout = "2006-01-02"

// TimeRange — окно приёма внутри дня, границы "HH:MM", интервал [StartTime, EndTime).
type TimeRange struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Active    bool   `json:"isActive"`
}

// DaySchedule — окна одного дня недели (0 = воскресенье).
type DaySchedule struct {
	DayOfWeek int         `json:"dayOfWeek"`
	Slots     []TimeRange `json:"slots"`
}

// AvailabilityModel — недельное расписание провайдера.
// Чистое значение без I/O: можно создавать и выбрасывать сколько угодно.
type AvailabilityModel struct {
	SessionDurationMinutes int           `json:"sessionDuration"`
	WeeklySchedule         []DaySchedule `json:"schedule"`
}

// Day возвращает расписание указанного дня недели, если оно задано.
func (m AvailabilityModel) Day(dayOfWeek int) (DaySchedule, bool) {
	for _, d := range m.WeeklySchedule {
		if d.DayOfWeek == dayOfWeek {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// Validate проверяет расписание и возвращает *InvalidScheduleError на первой ошибке.
// Пересекающиеся активные окна внутри одного дня запрещены.
func (m AvailabilityModel) Validate() error {
	if m.SessionDurationMinutes <= 0 {
		return &InvalidScheduleError{Field: "sessionDuration", Reason: "must be positive"}
	}

	seen := make(map[int]struct{}, len(m.WeeklySchedule))
	for _, day := range m.WeeklySchedule {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return &InvalidScheduleError{
				Field:  "dayOfWeek",
				Reason: fmt.Sprintf("%d is outside 0-6", day.DayOfWeek),
			}
		}
		if _, dup := seen[day.DayOfWeek]; dup {
			return &InvalidScheduleError{
				Field:  "dayOfWeek",
				Reason: fmt.Sprintf("duplicate entry for day %d", day.DayOfWeek),
			}
		}
		seen[day.DayOfWeek] = struct{}{}

		type window struct{ start, end int }
		var active []window
		for i, tr := range day.Slots {
			start, err := ParseClock(tr.StartTime)
			if err != nil {
				return &InvalidScheduleError{Field: fieldName(day.DayOfWeek, i, "startTime"), Reason: err.Error()}
			}
			end, err := ParseClock(tr.EndTime)
			if err != nil {
				return &InvalidScheduleError{Field: fieldName(day.DayOfWeek, i, "endTime"), Reason: err.Error()}
			}
			if !tr.Active {
				continue
			}
			if start >= end {
				return &InvalidScheduleError{
					Field:  fieldName(day.DayOfWeek, i, "startTime"),
					Reason: fmt.Sprintf("start %s is not before end %s", tr.StartTime, tr.EndTime),
				}
			}
			active = append(active, window{start: start, end: end})
		}

		sort.Slice(active, func(i, j int) bool { return active[i].start < active[j].start })
		for i := 1; i < len(active); i++ {
			if active[i].start < active[i-1].end {
				return &InvalidScheduleError{
					Field:  fmt.Sprintf("schedule[day=%d]", day.DayOfWeek),
					Reason: "overlapping ranges",
				}
			}
		}
	}
	return nil
}

func fieldName(day, idx int, field string) string {
	return fmt.Sprintf("schedule[day=%d].slots[%d].%s", day, idx, field)
}

// ParseClock переводит "HH:MM" в минуты от полуночи.
// "24:00" допускается как конец дня.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock — обратное к ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
