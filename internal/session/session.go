// Package session models the exchange trading calendar: open time, session
// length, and trading weekdays. All parameters come from configuration; the
// engine never hardcodes market hours.
package session

import (
	"fmt"
	"time"
)

// Session describes one exchange's daily trading window.
type Session struct {
	loc        *time.Location
	openHour   int
	openMinute int
	minutes    int
	weekdays   map[time.Weekday]bool
}

// New builds a Session. openTime is "HH:MM" local to tz, minutes is the total
// session length, weekdays lists the trading days (e.g. Sunday through
// Thursday for exchanges with a Friday/Saturday weekend).
func New(tz, openTime string, minutes int, weekdays []time.Weekday) (*Session, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	var h, m int
	if _, err := fmt.Sscanf(openTime, "%d:%d", &h, &m); err != nil {
		return nil, fmt.Errorf("parse open time %q: %w", openTime, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return nil, fmt.Errorf("open time %q out of range", openTime)
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("session minutes must be positive")
	}
	days := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		days[d] = true
	}
	return &Session{loc: loc, openHour: h, openMinute: m, minutes: minutes, weekdays: days}, nil
}

// Minutes returns the total session length.
func (s *Session) Minutes() int { return s.minutes }

// Location returns the exchange timezone.
func (s *Session) Location() *time.Location { return s.loc }

// IsTradingDay reports whether t falls on a trading weekday.
func (s *Session) IsTradingDay(t time.Time) bool {
	return s.weekdays[t.In(s.loc).Weekday()]
}

// OpenAt returns the session open instant on t's calendar day.
func (s *Session) OpenAt(t time.Time) time.Time {
	lt := t.In(s.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), s.openHour, s.openMinute, 0, 0, s.loc)
}

// CloseAt returns the session close instant on t's calendar day.
func (s *Session) CloseAt(t time.Time) time.Time {
	return s.OpenAt(t).Add(time.Duration(s.minutes) * time.Minute)
}

// InSession reports whether t falls inside the trading window on a trading day.
func (s *Session) InSession(t time.Time) bool {
	if !s.IsTradingDay(t) {
		return false
	}
	lt := t.In(s.loc)
	return !lt.Before(s.OpenAt(t)) && lt.Before(s.CloseAt(t))
}

// MinutesElapsed returns whole minutes from the session open to t, clamped to
// [0, session length]. Returns 0 outside a trading day or before the open,
// which callers treat as "no intraday projection".
func (s *Session) MinutesElapsed(t time.Time) int {
	if !s.IsTradingDay(t) {
		return 0
	}
	lt := t.In(s.loc)
	open := s.OpenAt(t)
	if lt.Before(open) {
		return 0
	}
	elapsed := int(lt.Sub(open).Minutes())
	if elapsed > s.minutes {
		return s.minutes
	}
	if elapsed < 1 {
		// Clamp so an instant right at the open still projects.
		return 1
	}
	return elapsed
}
