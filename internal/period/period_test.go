package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitQuarterBlocks_SingleBlock(t *testing.T) {
	windows := SplitQuarterBlocks(date(2025, time.February, 1), date(2025, time.March, 15))
	require.Len(t, windows, 1)
	assert.Equal(t, date(2025, time.February, 1), windows[0].Start)
	assert.Equal(t, date(2025, time.March, 15), windows[0].End)
}

func TestSplitQuarterBlocks_CrossesBoundaries(t *testing.T) {
	windows := SplitQuarterBlocks(date(2025, time.March, 10), date(2025, time.September, 5))
	require.Len(t, windows, 3)

	assert.Equal(t, date(2025, time.March, 10), windows[0].Start)
	assert.Equal(t, time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC), windows[0].End)

	assert.Equal(t, date(2025, time.May, 1), windows[1].Start)
	assert.Equal(t, time.Date(2025, time.August, 31, 23, 59, 59, 0, time.UTC), windows[1].End)

	assert.Equal(t, date(2025, time.September, 1), windows[2].Start)
	assert.Equal(t, date(2025, time.September, 5), windows[2].End)
}

func TestSplitQuarterBlocks_CrossesYear(t *testing.T) {
	windows := SplitQuarterBlocks(date(2024, time.November, 1), date(2025, time.February, 1))
	require.Len(t, windows, 2)
	assert.Equal(t, time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), windows[0].End)
	assert.Equal(t, date(2025, time.January, 1), windows[1].Start)
}

func TestSplitQuarterBlocks_InvertedRange(t *testing.T) {
	assert.Empty(t, SplitQuarterBlocks(date(2025, time.May, 1), date(2025, time.April, 1)))
}

func TestSplitQuarterBlocks_Contiguous(t *testing.T) {
	windows := SplitQuarterBlocks(date(2024, time.October, 1), date(2025, time.December, 31))
	require.NotEmpty(t, windows)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End.Add(time.Second), windows[i].Start,
			"windows must cover the range without gaps or overlaps")
	}
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2025, time.February)
	assert.Equal(t, date(2025, time.February, 1), w.Start)
	assert.Equal(t, time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC), w.End)
}

func TestMonthWindow_LeapYear(t *testing.T) {
	w := MonthWindow(2024, time.February)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), w.End)
}

func TestBimesterOf(t *testing.T) {
	cases := map[time.Month]int{
		time.January:  1,
		time.February: 1,
		time.March:    2,
		time.June:     3,
		time.July:     4,
		time.December: 6,
	}
	for month, want := range cases {
		assert.Equal(t, want, BimesterOf(month), "month %s", month)
	}
}

func TestBimesterWindow(t *testing.T) {
	w, err := BimesterWindow(2025, 3)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.May, 1), w.Start)
	assert.Equal(t, time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC), w.End)
}

func TestBimesterWindow_Invalid(t *testing.T) {
	_, err := BimesterWindow(2025, 0)
	assert.Error(t, err)
	_, err = BimesterWindow(2025, 7)
	assert.Error(t, err)
}

func TestSubscriptionPeriod_Monthly(t *testing.T) {
	w, idx, err := SubscriptionPeriod(2025, time.March, types.PeriodicityMonthly)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
	assert.Equal(t, date(2025, time.March, 1), w.Start)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC), w.End)
}

func TestSubscriptionPeriod_Bimonthly(t *testing.T) {
	w, idx, err := SubscriptionPeriod(2025, time.April, types.PeriodicityBimonthly)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, date(2025, time.March, 1), w.Start)
	assert.Equal(t, time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC), w.End)
}

func TestSubscriptionPeriod_InvalidMonth(t *testing.T) {
	_, _, err := SubscriptionPeriod(2025, time.Month(13), types.PeriodicityMonthly)
	assert.Error(t, err)
}

func TestMultiYearWindow(t *testing.T) {
	end := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	floor := date(2020, time.January, 1)

	w := MultiYearWindow(end, 1, floor)
	assert.Equal(t, date(2024, time.July, 1), w.Start)
	assert.Equal(t, end, w.End)
}

func TestMultiYearWindow_ClampedToFloor(t *testing.T) {
	end := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	floor := date(2024, time.October, 1)

	w := MultiYearWindow(end, 3, floor)
	assert.Equal(t, floor, w.Start)
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: date(2025, time.March, 1), End: time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC)}
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(date(2025, time.April, 15)))
	assert.False(t, w.Contains(date(2025, time.May, 1)))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}
