package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (rosters are planned by the day)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) Week() Week {
	y, w := tp.normalize().ISOWeek()
	return Week{Year: y, Number: w}
}

func (tp TimePoint) String() string { return tp.Time.Format(dateLayout) }

// =============================================================================
// DAY - Working day of a roster (Monday to Friday)
// =============================================================================

// Day is a roster day. Only Monday..Friday are valid; the zero value is invalid.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// WorkDays lists the roster days in week order.
var WorkDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = map[Day]string{
	Monday:    "lundi",
	Tuesday:   "mardi",
	Wednesday: "mercredi",
	Thursday:  "jeudi",
	Friday:    "vendredi",
}

func (d Day) Valid() bool { return d >= Monday && d <= Friday }

// Offset is the number of days between the Monday of the week and d.
func (d Day) Offset() int { return int(d - Monday) }

func (d Day) Weekday() time.Weekday { return time.Weekday(d) }

func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("day(%d)", int(d))
}

// ParseDay accepts the French day names used by the plannings ("lundi")
// as well as English names and ISO numbers ("1" = Monday).
func ParseDay(s string) (Day, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for d, name := range dayNames {
		if v == name || v == strings.ToLower(d.Weekday().String()) || v == fmt.Sprint(int(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// =============================================================================
// WEEK - ISO 8601 week (Monday first)
// =============================================================================

type Week struct {
	Year   int
	Number int
}

// NewWeek validates an ISO (year, week) pair. Week 53 only exists in long years.
func NewWeek(year, number int) (Week, error) {
	w := Week{Year: year, Number: number}
	if err := w.Validate(); err != nil {
		return Week{}, err
	}
	return w, nil
}

func (w Week) Validate() error {
	if w.Number < 1 || w.Number > 53 || w.Year < 1 {
		return fmt.Errorf("%w: %s", ErrInvalidWeek, w)
	}
	if got := w.monday().Week(); got != w {
		return fmt.Errorf("%w: %s does not exist", ErrInvalidWeek, w)
	}
	return nil
}

// Monday returns the first day of the week.
func (w Week) Monday() (TimePoint, error) {
	if err := w.Validate(); err != nil {
		return TimePoint{}, err
	}
	return w.monday(), nil
}

func (w Week) monday() TimePoint {
	// January 4th always falls in week 1.
	jan4 := NewTimePoint(w.Year, time.January, 4)
	back := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDays(-back + 7*(w.Number-1))
}

// DateOf returns the concrete date of a roster day in this week.
func (w Week) DateOf(d Day) (TimePoint, error) {
	if !d.Valid() {
		return TimePoint{}, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	monday, err := w.Monday()
	if err != nil {
		return TimePoint{}, err
	}
	return monday.AddDays(d.Offset()), nil
}

// Period covers Monday through Friday of the week.
func (w Week) Period() (Period, error) {
	monday, err := w.Monday()
	if err != nil {
		return Period{}, err
	}
	return Period{Start: monday, End: monday.AddDays(Friday.Offset())}, nil
}

func (w Week) Next() Week {
	return w.monday().AddDays(7).Week()
}

func (w Week) String() string { return fmt.Sprintf("%d-W%02d", w.Year, w.Number) }

// CurrentWeek returns the ISO week containing today.
func CurrentWeek() Week { return Today().Week() }
