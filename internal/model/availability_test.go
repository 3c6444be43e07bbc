package model

import (
	"errors"
	"testing"
	"time"
)

func weekdaySchedule(ranges ...TimeRange) AvailabilityModel {
	return AvailabilityModel{
		SessionDurationMinutes: 60,
		WeeklySchedule: []DaySchedule{
			{DayOfWeek: 1, Slots: ranges},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	m := weekdaySchedule(
		TimeRange{StartTime: "09:00", EndTime: "12:00", Active: true},
		TimeRange{StartTime: "13:00", EndTime: "17:00", Active: true},
	)
	if err := m.Validate(); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		model AvailabilityModel
		field string
	}{
		{
			name:  "zero duration",
			model: AvailabilityModel{SessionDurationMinutes: 0},
			field: "sessionDuration",
		},
		{
			name: "day out of range",
			model: AvailabilityModel{
				SessionDurationMinutes: 50,
				WeeklySchedule:         []DaySchedule{{DayOfWeek: 7}},
			},
			field: "dayOfWeek",
		},
		{
			name: "duplicate day",
			model: AvailabilityModel{
				SessionDurationMinutes: 50,
				WeeklySchedule:         []DaySchedule{{DayOfWeek: 2}, {DayOfWeek: 2}},
			},
			field: "dayOfWeek",
		},
		{
			name:  "start equals end",
			model: weekdaySchedule(TimeRange{StartTime: "10:00", EndTime: "10:00", Active: true}),
			field: "schedule[day=1].slots[0].startTime",
		},
		{
			name:  "bad clock",
			model: weekdaySchedule(TimeRange{StartTime: "9am", EndTime: "10:00", Active: true}),
			field: "schedule[day=1].slots[0].startTime",
		},
		{
			name: "overlap",
			model: weekdaySchedule(
				TimeRange{StartTime: "09:00", EndTime: "12:00", Active: true},
				TimeRange{StartTime: "11:00", EndTime: "14:00", Active: true},
			),
			field: "schedule[day=1]",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.model.Validate()
			var se *InvalidScheduleError
			if !errors.As(err, &se) {
				t.Fatalf("expected InvalidScheduleError, got %v", err)
			}
			if se.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%s)", tc.field, se.Field, se.Reason)
			}
		})
	}
}

func TestValidate_InactiveRangeIgnored(t *testing.T) {
	m := weekdaySchedule(
		TimeRange{StartTime: "09:00", EndTime: "12:00", Active: true},
		// Неактивное окно может быть «перевёрнутым» и пересекаться — не важно.
		TimeRange{StartTime: "11:00", EndTime: "10:00", Active: false},
	)
	if err := m.Validate(); err != nil {
		t.Fatalf("expected inactive range to be ignored, got %v", err)
	}
}

func TestParseClock(t *testing.T) {
	ok := map[string]int{"00:00": 0, "09:30": 570, "9:05": 545, "24:00": 1440}
	for in, want := range ok {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %d, want %d", in, got, want)
		}
		if in != "9:05" && FormatClock(got) != in {
			t.Fatalf("FormatClock(%d) = %q, want %q", got, FormatClock(got), in)
		}
	}
	for _, bad := range []string{"", "12", "12:5", "25:00", "24:30", "10:60", "ab:cd"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q): expected error", bad)
		}
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	if !BookingStatusPending.CanTransitionTo(BookingStatusConfirmed) {
		t.Fatalf("pending -> confirmed must be allowed")
	}
	if BookingStatusPending.CanTransitionTo(BookingStatusCompleted) {
		t.Fatalf("pending -> completed must be rejected")
	}
	if !BookingStatusConfirmed.CanTransitionTo(BookingStatusCompleted) {
		t.Fatalf("confirmed -> completed must be allowed")
	}
	for _, s := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s)
		}
		if s.CanTransitionTo(BookingStatusCancelled) {
			t.Fatalf("%s must not transition", s)
		}
	}
}

func TestBookingEndsAt(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	b := &Booking{AppointmentDate: "2025-01-06", StartTime: "09:00", EndTime: "10:00"}
	end, err := b.EndsAt(loc)
	if err != nil {
		t.Fatalf("EndsAt: %v", err)
	}
	want := time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("EndsAt = %v, want %v", end.UTC(), want)
	}
}

func TestBookingEndsAt_Midnight(t *testing.T) {
	want := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	for _, endTime := range []string{"24:00", "00:00"} {
		b := &Booking{AppointmentDate: "2025-01-06", StartTime: "23:00", EndTime: endTime}
		end, err := b.EndsAt(time.UTC)
		if err != nil {
			t.Fatalf("EndsAt(%s): %v", endTime, err)
		}
		if !end.Equal(want) {
			t.Fatalf("EndsAt(%s) = %v, want %v", endTime, end, want)
		}
	}
}
