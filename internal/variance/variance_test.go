package variance

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataops/backsim/internal/testutil"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(testutil.FixedSeed))
}

// pinned is a profile with zero standard deviation and wide clamp bounds,
// so only the deterministic shaping stages act on the draw.
func pinned(mean float64) Profile {
	return Profile{
		MeanModifier: mean,
		StdDeviation: 0,
		MinModifier:  0,
		MaxModifier:  2,
		Distribution: DistributionNormal,
	}
}

func TestDistribution_Valid(t *testing.T) {
	assert.True(t, DistributionNormal.Valid())
	assert.True(t, DistributionUniform.Valid())
	assert.False(t, Distribution("poisson").Valid())
	assert.False(t, Distribution("").Valid())
}

func TestScenario_Valid(t *testing.T) {
	for _, s := range []Scenario{
		ScenarioConsistent, ScenarioVolatile, ScenarioDeclining,
		ScenarioImproving, ScenarioCyclical, ScenarioShock,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Scenario("chaotic").Valid())
}

func TestPresetProfile(t *testing.T) {
	tests := []struct {
		scenario Scenario
		check    func(t *testing.T, p Profile)
	}{
		{ScenarioConsistent, func(t *testing.T, p Profile) {
			assert.Equal(t, 0.05, p.StdDeviation)
			assert.Equal(t, 0.7, p.Autocorrelation)
		}},
		{ScenarioVolatile, func(t *testing.T, p Profile) {
			assert.Equal(t, 0.25, p.StdDeviation)
			assert.Equal(t, 0.60, p.MinModifier)
			assert.Equal(t, 1.40, p.MaxModifier)
		}},
		{ScenarioImproving, func(t *testing.T, p Profile) {
			assert.Equal(t, 0.9, p.MeanModifier)
			assert.True(t, p.LearningCurveEnabled)
			assert.Equal(t, 0.005, p.LearningRate)
		}},
		{ScenarioCyclical, func(t *testing.T, p Profile) {
			require.NotNil(t, p.DayOfWeekImpact)
			assert.Equal(t, 0.80, p.DayOfWeekImpact[6])
		}},
		{ScenarioShock, func(t *testing.T, p Profile) {
			assert.Equal(t, 0.50, p.MinModifier)
			assert.Equal(t, 0.5, p.Autocorrelation)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.scenario), func(t *testing.T) {
			tt.check(t, PresetProfile(tt.scenario))
		})
	}

	assert.Equal(t, DefaultProfile(), PresetProfile(Scenario("unknown")))
}

func TestNewGenerator_NilRNGPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewGenerator(DefaultProfile(), ScenarioConsistent, nil)
	})
}

func TestModifiers_CoversWindowInclusive(t *testing.T) {
	start := testutil.Date(2025, time.March, 1)
	end := start.AddDays(6)

	mods := NewGenerator(DefaultProfile(), "", newRNG()).Modifiers(start, end)
	require.Len(t, mods, 7)
	for i, m := range mods {
		assert.Equal(t, start.AddDays(i), m.Date)
	}
}

func TestModifiers_EmptyWindow(t *testing.T) {
	start := testutil.Date(2025, time.March, 5)
	assert.Nil(t, NewGenerator(DefaultProfile(), "", newRNG()).Modifiers(start, start.AddDays(-1)))
}

func TestModifiers_ClampBounds(t *testing.T) {
	p := DefaultProfile()
	p.StdDeviation = 5.0 // wild draws, clamp must hold

	mods := NewGenerator(p, ScenarioVolatile, newRNG()).Modifiers(
		testutil.Date(2025, time.March, 1), testutil.Date(2025, time.April, 30))
	for _, m := range mods {
		assert.GreaterOrEqual(t, m.Modifier, p.MinModifier)
		assert.LessOrEqual(t, m.Modifier, p.MaxModifier)
	}
}

func TestModifiers_SameSeedSameSeries(t *testing.T) {
	start := testutil.Date(2025, time.March, 1)
	end := start.AddDays(29)

	a := NewGenerator(PresetProfile(ScenarioShock), ScenarioShock, newRNG()).Modifiers(start, end)
	b := NewGenerator(PresetProfile(ScenarioShock), ScenarioShock, newRNG()).Modifiers(start, end)
	assert.Equal(t, a, b)
}

func TestModifiers_DecliningIsLinearWithoutNoise(t *testing.T) {
	start := testutil.Date(2025, time.March, 1)
	mods := NewGenerator(pinned(1.0), ScenarioDeclining, newRNG()).Modifiers(start, start.AddDays(9))

	require.Len(t, mods, 10)
	assert.Equal(t, 1.0, mods[0].Modifier)
	for i, m := range mods {
		want := 1.0 - 0.3/10.0*float64(i)
		assert.InDelta(t, want, m.Modifier, 1e-9, "day %d", i)
	}
}

func TestModifiers_CyclicalFollowsSine(t *testing.T) {
	start := testutil.Date(2025, time.March, 1)
	mods := NewGenerator(pinned(1.0), ScenarioCyclical, newRNG()).Modifiers(start, start.AddDays(13))

	for i, m := range mods {
		want := 1.0 + 0.15*math.Sin(2*math.Pi*float64(i)/7)
		assert.InDelta(t, want, m.Modifier, 1e-9, "day %d", i)
	}
}

func TestModifiers_LearningCurveGrows(t *testing.T) {
	p := pinned(1.0)
	p.LearningCurveEnabled = true
	p.LearningRate = 0.05
	p.PlateauWeeks = 4

	start := testutil.Date(2025, time.March, 1)
	mods := NewGenerator(p, "", newRNG()).Modifiers(start, start.AddDays(59))

	for i := 1; i < len(mods); i++ {
		assert.Greater(t, mods[i].Modifier, mods[i-1].Modifier, "day %d", i)
	}
	// The sigmoid tops out at +20%.
	last := mods[len(mods)-1].Modifier
	assert.Less(t, last, 1.2)
	assert.Greater(t, last, 1.0)
}

func TestModifiers_DayOfWeekImpact(t *testing.T) {
	p := pinned(1.0)
	// Monday-indexed: slot 5 is Saturday.
	p.DayOfWeekImpact = map[int]float64{5: 0.5}

	// 2025-03-01 is a Saturday.
	saturday := testutil.Date(2025, time.March, 1)
	mods := NewGenerator(p, "", newRNG()).Modifiers(saturday, saturday.AddDays(1))

	require.Len(t, mods, 2)
	assert.InDelta(t, 0.5, mods[0].Modifier, 1e-9)
	assert.InDelta(t, 1.0, mods[1].Modifier, 1e-9, "Sunday has no impact entry")
}

func TestModifiers_MonthImpact(t *testing.T) {
	p := pinned(1.0)
	p.MonthImpact = map[int]float64{3: 0.8}

	endOfMarch := testutil.Date(2025, time.March, 31)
	mods := NewGenerator(p, "", newRNG()).Modifiers(endOfMarch, endOfMarch.AddDays(1))

	require.Len(t, mods, 2)
	assert.InDelta(t, 0.8, mods[0].Modifier, 1e-9)
	assert.InDelta(t, 1.0, mods[1].Modifier, 1e-9, "April has no impact entry")
}

func TestModifiers_AutocorrelationSmooths(t *testing.T) {
	volatile := PresetProfile(ScenarioVolatile)
	smooth := volatile
	smooth.Autocorrelation = 0.95

	start := testutil.Date(2025, time.March, 1)
	end := start.AddDays(59)

	spread := func(mods []DayModifier) float64 {
		total := 0.0
		for i := 1; i < len(mods); i++ {
			total += math.Abs(mods[i].Modifier - mods[i-1].Modifier)
		}
		return total
	}

	// Same seed, same draw sequence for the base samples; only the blend
	// differs. Scenario shaping is left off to isolate the smoothing.
	rough := spread(NewGenerator(volatile, "", newRNG()).Modifiers(start, end))
	smoothed := spread(NewGenerator(smooth, "", newRNG()).Modifiers(start, end))
	assert.Less(t, smoothed, rough)
}

func TestStaffingAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		staff    int
		modifier float64
		want     int
	}{
		{"full productivity", 5, 1.0, 5},
		{"half productivity doubles staff", 5, 0.5, 10},
		{"fractional rounds up", 5, 0.9, 6},
		{"above one reduces staff", 5, 1.25, 4},
		{"never below one", 1, 2.0, 1},
		{"zero modifier keeps baseline", 5, 0, 5},
		{"negative modifier keeps baseline", 5, -0.3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StaffingAdjustment(tt.staff, tt.modifier))
		})
	}
}
