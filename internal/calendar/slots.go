package calendar

import (
	"iter"
	"time"

	"github.com/Leganyst/therapy-booking/internal/model"
)

// Slot — конкретный слот для записи: дата + время начала/конца.
type Slot struct {
	Date      string // model.DateLayout
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	StartsAt  time.Time
	EndsAt    time.Time
}

// SlotKey — ключ уникальности слота у одного провайдера.
type SlotKey struct {
	Date      string
	StartTime string
}

// Reserved — множество занятых (pending/confirmed) слотов.
type Reserved map[SlotKey]struct{}

func (r Reserved) Has(date, start string) bool {
	_, ok := r[SlotKey{Date: date, StartTime: start}]
	return ok
}

func (r Reserved) Add(date, start string) {
	r[SlotKey{Date: date, StartTime: start}] = struct{}{}
}

// Generator разворачивает недельное расписание в конкретные слоты.
// Состояния между вызовами не хранит.
type Generator struct {
	// Рабочий часовой пояс, в нём сравниваем с "сейчас".
	Location *time.Location
}

func NewGenerator(loc *time.Location) Generator {
	if loc == nil {
		loc = time.UTC
	}
	return Generator{Location: loc}
}

// Slots возвращает ленивую последовательность свободных слотов на даты [from, to] включительно.
// Берутся только календарные даты from/to, время суток игнорируется.
//
// Отбрасываются: слоты, занятые в reserved; слоты, начало которых не позже now;
// неполные "хвосты" окон. Одинаковые (дата, время) из пересекающихся окон отдаются один раз.
func (g Generator) Slots(
	m model.AvailabilityModel,
	from, to time.Time,
	reserved Reserved,
	now time.Time,
) iter.Seq[Slot] {
	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	duration := time.Duration(m.SessionDurationMinutes) * time.Minute
	first := dateOnly(from, loc)
	last := dateOnly(to, loc)

	return func(yield func(Slot) bool) {
		if duration <= 0 {
			return
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			schedule, ok := m.Day(int(day.Weekday()))
			if !ok {
				continue
			}
			date := day.Format(model.DateLayout)
			seen := make(map[string]struct{})

			for _, window := range schedule.Slots {
				if !window.Active {
					continue
				}
				tr, ok := windowOnDay(day, window)
				if !ok {
					continue
				}
				chunks, err := SplitToTimeSlots(tr, duration)
				if err != nil {
					return
				}
				for _, c := range chunks {
					start := c.Start.Format("15:04")
					if _, dup := seen[start]; dup {
						continue
					}
					seen[start] = struct{}{}

					if reserved.Has(date, start) || !c.Start.After(now) {
						continue
					}
					// Конец — по местным часам: полночь следующего дня пишется как "24:00".
					slot := Slot{
						Date:      date,
						StartTime: start,
						EndTime:   model.FormatClock(clockMinutes(c.Start) + m.SessionDurationMinutes),
						StartsAt:  c.Start,
						EndsAt:    c.End,
					}
					if !yield(slot) {
						return
					}
				}
			}
		}
	}
}

// Offers сообщает, выдаёт ли расписание слот (date, start) без учёта занятости и "сейчас".
// Используется при бронировании для проверки шага сетки.
func (g Generator) Offers(m model.AvailabilityModel, date, start string) (Slot, bool) {
	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(model.DateLayout, date, loc)
	if err != nil {
		return Slot{}, false
	}
	for s := range g.Slots(m, day, day, nil, time.Time{}) {
		if s.StartTime == start {
			return s, true
		}
	}
	return Slot{}, false
}

func windowOnDay(day time.Time, w model.TimeRange) (TimeRange, bool) {
	start, err := model.ParseClock(w.StartTime)
	if err != nil {
		return TimeRange{}, false
	}
	end, err := model.ParseClock(w.EndTime)
	if err != nil || start >= end {
		return TimeRange{}, false
	}
	return TimeRange{
		Start: time.Date(day.Year(), day.Month(), day.Day(), 0, start, 0, 0, day.Location()),
		End:   time.Date(day.Year(), day.Month(), day.Day(), 0, end, 0, 0, day.Location()),
	}, true
}
