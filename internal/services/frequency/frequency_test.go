package frequency

import (
	"testing"
	"time"

	errs "donare/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label     string
		code      Code
		interval  int
		unit      string
		unitCount int64
		ceiling   int
	}{
		{"single", None, 0, "", 0, 0},
		{"month", Monthly, 1, "month", 1, 60},
		{"monthly", Monthly, 1, "month", 1, 60},
		{"year", Yearly, 12, "year", 1, 5},
		{"yearly", Yearly, 12, "year", 1, 5},
		{"day", Daily, 1, "day", 1, 1825},
		{"daily", Daily, 1, "day", 1, 1825},
		{"week", Weekly, 7, "week", 1, 260},
		{"weekly", Weekly, 7, "week", 1, 260},
		{"quarter", Quarterly, 3, "month", 3, 20},
		{"quarterly", Quarterly, 3, "month", 3, 20},
		// labels arrive in whatever case the widget sends
		{"Monthly", Monthly, 1, "month", 1, 60},
		{"YEARLY", Yearly, 12, "year", 1, 5},
		{"Single", None, 0, "", 0, 0},
		{" weekly ", Weekly, 7, "week", 1, 260},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			class, err := Classify(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.code, class.Code)
			assert.Equal(t, tt.interval, class.Interval)
			assert.Equal(t, tt.unit, class.Unit)
			assert.Equal(t, tt.unitCount, class.UnitCount)
			assert.Equal(t, tt.ceiling, class.Ceiling)
		})
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, label := range []string{"fortnightly", "biweekly", "once", ""} {
		t.Run(label, func(t *testing.T) {
			_, err := Classify(label)
			assert.ErrorIs(t, err, errs.ErrUnsupportedFrequency)
		})
	}
}

func TestNextDate(t *testing.T) {
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		label string
		want  time.Time
	}{
		{"single", from},
		{"daily", time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)},
		{"weekly", time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)},
		{"monthly", time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"quarterly", time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"yearly", time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			class, err := Classify(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, class.NextDate(from))
		})
	}
}

func TestClassFor(t *testing.T) {
	for _, code := range []Code{None, Monthly, Yearly, Daily, Weekly, Quarterly} {
		assert.Equal(t, code, ClassFor(code).Code)
	}
	assert.False(t, ClassFor(None).Recurring())
	assert.True(t, ClassFor(Monthly).Recurring())
}
