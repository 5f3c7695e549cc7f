package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testObserved = time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestParseProfile(t *testing.T) {
	t.Run("two data rows", func(t *testing.T) {
		raw := buildBlock(
			formatRow("1000.0", "50", "-5.0", "-6.0", "93", "3.00", "150", "10", "268.1", "276.3", "268.6"),
			formatRow("990.0", "130", "-3.5", "-5.0", "89", "3.10", "155", "12", "270.2", "278.6", "270.7"),
		)

		p, err := ParseProfile(raw, testObserved)
		require.NoError(t, err)
		require.Len(t, p.Levels, 2)
		assert.Equal(t, testObserved, p.Observed)

		lvl := p.Levels[0]
		require.NotNil(t, lvl.Pressure)
		assert.Equal(t, 1000.0, *lvl.Pressure)
		require.NotNil(t, lvl.Height)
		assert.Equal(t, 50.0, *lvl.Height)
		require.NotNil(t, lvl.Temperature)
		assert.Equal(t, -5.0, *lvl.Temperature)
		require.NotNil(t, lvl.Theta)
		assert.Equal(t, 268.1, *lvl.Theta)
	})

	t.Run("wind speed converted to m/s", func(t *testing.T) {
		raw := buildBlock(
			levelRow("1000.0", "50", "-5.0", "10"),
			levelRow("990.0", "130", "-4.0", "25"),
		)

		p, err := ParseProfile(raw, testObserved)
		require.NoError(t, err)
		require.NotNil(t, p.Levels[0].WindSpeed)
		assert.Equal(t, 5.14, *p.Levels[0].WindSpeed)
		assert.Equal(t, 12.86, *p.Levels[1].WindSpeed)
	})

	t.Run("blank cells are missing", func(t *testing.T) {
		raw := buildBlock(
			levelRow("1000.0", "50", "-5.0", ""),
			levelRow("990.0", "", "", ""),
		)

		p, err := ParseProfile(raw, testObserved)
		require.NoError(t, err)
		assert.Nil(t, p.Levels[0].WindSpeed)
		assert.Nil(t, p.Levels[1].Height)
		assert.Nil(t, p.Levels[1].Temperature)
		require.NotNil(t, p.Levels[1].Pressure)
		assert.Equal(t, 990.0, *p.Levels[1].Pressure)
	})

	t.Run("non-numeric cell fails the profile", func(t *testing.T) {
		raw := buildBlock(
			levelRow("1000.0", "50", "-5.0", "10"),
			levelRow("990.0", "130", "n/a", "12"),
		)

		p, err := ParseProfile(raw, testObserved)
		require.ErrorIs(t, err, ErrNumericCoercion)
		assert.Nil(t, p)
	})

	t.Run("fewer than two data rows", func(t *testing.T) {
		raw := buildBlock(levelRow("1000.0", "50", "-5.0", "10"))

		p, err := ParseProfile(raw, testObserved)
		require.ErrorIs(t, err, ErrInsufficientLevels)
		assert.Nil(t, p)
	})

	t.Run("empty block", func(t *testing.T) {
		_, err := ParseProfile("", testObserved)
		require.ErrorIs(t, err, ErrInsufficientLevels)
	})

	t.Run("unexpected column set", func(t *testing.T) {
		raw := "\n" + soundingRule + "\n" +
			formatRow("PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE") + "\n" +
			unitsRow() + "\n" +
			levelRow("1000.0", "50", "-5.0", "10") + "\n" +
			levelRow("990.0", "130", "-4.0", "12") + "\n"

		_, err := ParseProfile(raw, testObserved)
		require.ErrorIs(t, err, ErrUnexpectedColumns)
	})

	t.Run("reordered columns rejected", func(t *testing.T) {
		raw := "\n" + soundingRule + "\n" +
			formatRow("HGHT", "PRES", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE", "THTV") + "\n" +
			unitsRow() + "\n" +
			levelRow("50", "1000.0", "-5.0", "10") + "\n" +
			levelRow("130", "990.0", "-4.0", "12") + "\n"

		_, err := ParseProfile(raw, testObserved)
		require.ErrorIs(t, err, ErrUnexpectedColumns)
	})
}

// Converting knots to m/s and back must recover the original value to within
// the 2-decimal rounding applied at parse time.
func TestWindSpeedRoundTrip(t *testing.T) {
	for _, knots := range []float64{1, 5, 10, 17, 25, 48, 63, 99} {
		ms := math.Round(knots*KnotsToMS*100) / 100
		back := ms / KnotsToMS
		assert.InDelta(t, knots, back, 0.01, "knots=%v ms=%v", knots, ms)
	}
}
