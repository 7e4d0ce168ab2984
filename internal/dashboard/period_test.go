package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		from, to string
		want     Mode
		wantErr  bool
	}{
		{name: "empty is all", want: ModeAll},
		{name: "today", mode: "Today", want: ModeToday},
		{name: "month", mode: " month ", want: ModeMonth},
		{name: "bounds imply range", from: "2026-09-01", to: "2026-09-30", want: ModeRange},
		{name: "open range", mode: "range", from: "2026-09-01", want: ModeRange},
		{name: "unknown mode", mode: "week", wantErr: true},
		{name: "bad date", from: "01/09/2026", wantErr: true},
		{name: "inverted range", from: "2026-09-30", to: "2026-09-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePeriod(tt.mode, tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Mode)
		})
	}
}

func TestPeriod_BoundsAndLabel(t *testing.T) {
	today := date(2026, 10, 19)

	from, to := Period{Mode: ModeMonth}.bounds(today)
	assert.Equal(t, date(2026, 10, 1), from)
	assert.Equal(t, today, to)

	from, to = Period{Mode: ModeAll}.bounds(today)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	assert.Equal(t, "Today 2026-10-19", Period{Mode: ModeToday}.Label(today))
	assert.Equal(t, "2026-09-01 .. …", Period{Mode: ModeRange, From: date(2026, 9, 1)}.Label(today))
	assert.Equal(t, "All time", Period{Mode: ModeAll}.Label(today))
}
