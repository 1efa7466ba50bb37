// Package period computes the date windows the collection pipeline
// fetches over: fiscal quarter blocks, monthly and bimonthly billing
// windows, and the clamped multi-year lookback for long plans.
package period

import (
	"fmt"
	"time"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// Window is a half-open-in-spirit inclusive [Start, End] interval in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Contains reports whether t falls inside the window, inclusive on
// both ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// quarterEnds are the month/day pairs closing each fiscal block:
// Jan-Apr, May-Aug, Sep-Dec.
var quarterEnds = [3]struct {
	month time.Month
	day   int
}{
	{time.April, 30},
	{time.August, 31},
	{time.December, 31},
}

// blockEndAfter returns the first fiscal block boundary at or after t.
func blockEndAfter(t time.Time) time.Time {
	for _, q := range quarterEnds {
		end := time.Date(t.Year(), q.month, q.day, 23, 59, 59, 0, time.UTC)
		if !end.Before(t) {
			return end
		}
	}
	// Past Dec 31 cannot happen for a valid date, but keep the walk total.
	return time.Date(t.Year()+1, time.April, 30, 23, 59, 59, 0, time.UTC)
}

// SplitQuarterBlocks partitions [start, end] into consecutive windows
// each closing at the next fiscal block boundary (Apr 30, Aug 31 or
// Dec 31), with the final window clamped to end. An inverted range
// yields no windows.
func SplitQuarterBlocks(start, end time.Time) []Window {
	start = start.UTC()
	end = end.UTC()
	if end.Before(start) {
		return nil
	}

	var windows []Window
	cursor := start
	for !cursor.After(end) {
		blockEnd := blockEndAfter(cursor)
		if blockEnd.After(end) {
			blockEnd = end
		}
		windows = append(windows, Window{Start: cursor, End: blockEnd})
		cursor = blockEnd.Add(time.Second)
	}
	return windows
}

// LastMomentOfMonth returns 23:59:59 on the last day of the given month.
func LastMomentOfMonth(year int, month time.Month) time.Time {
	firstNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstNext.Add(-time.Second)
}

// FirstDayNextMonth returns midnight on the first day of the month
// after the given one.
func FirstDayNextMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// MonthWindow is the full calendar month.
func MonthWindow(year int, month time.Month) Window {
	return Window{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		End:   LastMomentOfMonth(year, month),
	}
}

// BimesterOf returns the 1-based bimester index of a month (Jan-Feb is
// 1, Mar-Apr is 2, and so on).
func BimesterOf(month time.Month) int {
	return (int(month) + 1) / 2
}

// BimesterWindow spans the two months of the 1-based bimester index.
func BimesterWindow(year, bimester int) (Window, error) {
	if bimester < 1 || bimester > 6 {
		return Window{}, ierr.NewError("invalid bimester").
			WithHintf("Bimester must be between 1 and 6, got %d", bimester).
			Mark(ierr.ErrValidation)
	}
	first := time.Month(bimester*2 - 1)
	return Window{
		Start: time.Date(year, first, 1, 0, 0, 0, 0, time.UTC),
		End:   LastMomentOfMonth(year, first+1),
	}, nil
}

// SubscriptionPeriod resolves the billing window a subscription charge
// in (year, month) belongs to, plus its 1-based index within the year:
// the month itself for monthly plans, the enclosing bimester for
// bimonthly plans.
func SubscriptionPeriod(year int, month time.Month, p types.Periodicity) (Window, int, error) {
	if month < time.January || month > time.December {
		return Window{}, 0, ierr.NewError("invalid month").
			WithHintf("Month must be between 1 and 12, got %d", int(month)).
			Mark(ierr.ErrValidation)
	}
	if p == types.PeriodicityMonthly {
		return MonthWindow(year, month), int(month), nil
	}
	b := BimesterOf(month)
	w, err := BimesterWindow(year, b)
	if err != nil {
		return Window{}, 0, err
	}
	return w, b, nil
}

// MultiYearWindow builds the lookback window for multi-year plans:
// anchored at the first day of the month after end, back the given
// number of years, with the start clamped to floor so collection
// never reaches before the platform's historical cutover.
func MultiYearWindow(end time.Time, years int, floor time.Time) Window {
	end = end.UTC()
	base := FirstDayNextMonth(end.Year(), end.Month())
	start := time.Date(base.Year()-years, base.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.Before(floor.UTC()) {
		start = floor.UTC()
	}
	return Window{Start: start, End: end}
}
