package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NormalizeTimeRange нормализует интервал:
//   - меняет местами границы, если они перепутаны;
//   - переводит в заданный часовой пояс loc;
//   - при превышении maxDuration обрезает интервал до start+maxDuration.
//
// Если maxDuration <= 0, ограничение по длительности не применяется.
func NormalizeTimeRange(
	start, end time.Time,
	loc *time.Location,
	maxDuration time.Duration,
) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}

	if end.Before(start) {
		start, end = end, start
	}

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	if maxDuration > 0 && end.Sub(start) > maxDuration {
		end = start.Add(maxDuration)
	}

	// Для диапазона дат допускаем start == end (один день).
	if end.Before(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}

	return TimeRange{Start: start, End: end}, nil
}

// SplitToTimeSlots разбивает интервал на слоты фиксированной длительности.
// "Хвост" меньшей длительности, чем slotDuration, отбрасывается.
//
// Шаг идёт по местным часам от полуночи дня Start, а не по абсолютному времени:
// в день перевода часов слоты не схлопываются в нулевые. Слоты, начало или конец
// которых в этот день на часах не существует, пропускаются.
func SplitToTimeSlots(tr TimeRange, slotDuration time.Duration) ([]TimeRange, error) {
	step := int(slotDuration / time.Minute)
	if step <= 0 {
		return nil, ErrSlotDuration
	}
	if !tr.End.After(tr.Start) {
		return []TimeRange{}, nil
	}

	loc := tr.Start.Location()
	year, month, day := tr.Start.Date()
	first := clockMinutes(tr.Start)
	last := civilDaysBetween(tr.Start, tr.End.In(loc))*24*60 + clockMinutes(tr.End.In(loc))

	var slots []TimeRange
	for cur := first; cur+step <= last; cur += step {
		start := time.Date(year, month, day, 0, cur, 0, 0, loc)
		end := time.Date(year, month, day, 0, cur+step, 0, 0, loc)
		if clockMinutes(start) != cur%(24*60) || clockMinutes(end) != (cur+step)%(24*60) || !end.After(start) {
			continue
		}
		slots = append(slots, TimeRange{Start: start, End: end})
	}
	return slots, nil
}

// clockMinutes — минуты от полуночи по местным часам t.
func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func civilDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	d := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC).Sub(time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC))
	return int(d / (24 * time.Hour))
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// FormatSlotForUser форматирует интервал в человекочитаемую строку,
// например "Monday, 01/06/2025, 09:00–10:00".
// Если loc != nil, время переводится в указанный часовой пояс.
func FormatSlotForUser(tr TimeRange, loc *time.Location) string {
	start := tr.Start
	end := tr.End

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	return fmt.Sprintf("%s, %s, %s–%s",
		start.Weekday(),
		start.Format("01/02/2006"),
		start.Format("15:04"),
		end.Format("15:04"),
	)
}
