// Package variance synthesizes per-day productivity modifiers.
//
// Scenario files can describe capacity variance instead of spelling out a
// productivity modifier for every day: a Generator expands a variance
// profile into one clamped modifier per day, which the scenario loader then
// folds into the generated DailyCapacity entries.
//
// Like the simulation engine, a Generator draws all randomness from an
// explicitly supplied *rand.Rand; there is no package-level PRNG state.
package variance

import (
	"math"
	"math/rand"

	"github.com/strataops/backsim/internal/model"
)

// Distribution selects how the base daily modifier is drawn.
type Distribution string

const (
	DistributionNormal  Distribution = "normal"
	DistributionUniform Distribution = "uniform"
)

// Valid reports whether d is a known distribution.
func (d Distribution) Valid() bool {
	return d == DistributionNormal || d == DistributionUniform
}

// Scenario is a named variance shape applied on top of the base draw.
type Scenario string

const (
	ScenarioConsistent Scenario = "consistent"
	ScenarioVolatile   Scenario = "volatile"
	ScenarioDeclining  Scenario = "declining"
	ScenarioImproving  Scenario = "improving"
	ScenarioCyclical   Scenario = "cyclical"
	ScenarioShock      Scenario = "shock"
)

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioConsistent, ScenarioVolatile, ScenarioDeclining,
		ScenarioImproving, ScenarioCyclical, ScenarioShock:
		return true
	}
	return false
}

// Profile configures the variance generator.
type Profile struct {
	MeanModifier float64      `json:"mean_productivity_modifier" yaml:"mean_productivity_modifier"`
	StdDeviation float64      `json:"std_deviation" yaml:"std_deviation"`
	MinModifier  float64      `json:"min_modifier" yaml:"min_modifier"`
	MaxModifier  float64      `json:"max_modifier" yaml:"max_modifier"`
	Distribution Distribution `json:"distribution_type" yaml:"distribution_type"`

	// DayOfWeekImpact multiplies the modifier by weekday (0=Monday..6=Sunday,
	// matching the original wire shape). Missing days default to 1.0.
	DayOfWeekImpact map[int]float64 `json:"day_of_week_impact,omitempty" yaml:"day_of_week_impact,omitempty"`
	// MonthImpact multiplies the modifier by calendar month (1..12).
	MonthImpact map[int]float64 `json:"seasonal_impact,omitempty" yaml:"seasonal_impact,omitempty"`

	LearningCurveEnabled bool    `json:"learning_curve_enabled" yaml:"learning_curve_enabled"`
	LearningRate         float64 `json:"learning_rate" yaml:"learning_rate"`
	PlateauWeeks         int     `json:"plateau_weeks" yaml:"plateau_weeks"`

	// Autocorrelation blends each day's draw with the previous day's
	// value: v' = a*prev + (1-a)*v. Zero disables smoothing.
	Autocorrelation float64 `json:"autocorrelation" yaml:"autocorrelation"`
}

// DefaultProfile returns the baseline profile (mean 1.0, std 0.15,
// clamped to [0.7, 1.3], normal distribution).
func DefaultProfile() Profile {
	return Profile{
		MeanModifier: 1.0,
		StdDeviation: 0.15,
		MinModifier:  0.7,
		MaxModifier:  1.3,
		Distribution: DistributionNormal,
		LearningRate: 0.001,
		PlateauWeeks: 12,
	}
}

// PresetProfile returns the tuned profile for a scenario. Unknown scenarios
// get the default profile.
func PresetProfile(s Scenario) Profile {
	p := DefaultProfile()
	switch s {
	case ScenarioConsistent:
		p.StdDeviation = 0.05
		p.MinModifier = 0.90
		p.MaxModifier = 1.10
		p.Autocorrelation = 0.7
	case ScenarioVolatile:
		p.StdDeviation = 0.25
		p.MinModifier = 0.60
		p.MaxModifier = 1.40
		p.Autocorrelation = 0.3
	case ScenarioDeclining:
		p.StdDeviation = 0.10
		p.MinModifier = 0.70
		p.MaxModifier = 1.10
	case ScenarioImproving:
		p.MeanModifier = 0.9
		p.StdDeviation = 0.10
		p.MinModifier = 0.80
		p.MaxModifier = 1.20
		p.LearningCurveEnabled = true
		p.LearningRate = 0.005
	case ScenarioCyclical:
		p.StdDeviation = 0.10
		p.MinModifier = 0.85
		p.MaxModifier = 1.15
		p.DayOfWeekImpact = map[int]float64{0: 0.9, 1: 0.95, 2: 1.0, 3: 1.05, 4: 1.1, 5: 0.85, 6: 0.80}
	case ScenarioShock:
		p.StdDeviation = 0.15
		p.MinModifier = 0.50
		p.MaxModifier = 1.20
		p.Autocorrelation = 0.5
	}
	return p
}

// DayModifier is one day's generated productivity modifier.
type DayModifier struct {
	Date     model.Date `json:"date"`
	Modifier float64    `json:"productivity_modifier"`
}

// Generator produces a modifier series for a date window.
type Generator struct {
	profile  Profile
	scenario Scenario
	rng      *rand.Rand

	prev    float64
	hasPrev bool
}

// NewGenerator creates a generator. A nil rng panics; callers own seeding.
func NewGenerator(profile Profile, scenario Scenario, rng *rand.Rand) *Generator {
	if rng == nil {
		panic("variance: nil rng")
	}
	if profile.Distribution == "" {
		profile.Distribution = DistributionNormal
	}
	return &Generator{profile: profile, scenario: scenario, rng: rng}
}

// Modifiers generates one modifier per day from start through end inclusive.
// The pipeline per day: base draw with autocorrelation and clamping, then
// scenario pattern, learning curve, temporal multipliers, and a final clamp.
func (g *Generator) Modifiers(start, end model.Date) []DayModifier {
	totalDays := end.DaysSince(start) + 1
	if totalDays <= 0 {
		return nil
	}

	out := make([]DayModifier, 0, totalDays)
	for dayNumber := 0; dayNumber < totalDays; dayNumber++ {
		day := start.AddDays(dayNumber)

		v := g.baseDraw()
		v = g.applyScenario(v, dayNumber, totalDays)
		v = g.applyLearningCurve(v, dayNumber)
		v = g.applyTemporal(v, day)
		v = g.clamp(v)

		out = append(out, DayModifier{Date: day, Modifier: v})
	}
	return out
}

// baseDraw samples the base modifier, blends in autocorrelation, and clamps.
// The clamped value becomes the autocorrelation memory, matching the
// original engine.
func (g *Generator) baseDraw() float64 {
	var v float64
	switch g.profile.Distribution {
	case DistributionUniform:
		v = g.profile.MinModifier + g.rng.Float64()*(g.profile.MaxModifier-g.profile.MinModifier)
	default:
		v = g.rng.NormFloat64()*g.profile.StdDeviation + g.profile.MeanModifier
	}

	if g.profile.Autocorrelation > 0 && g.hasPrev {
		v = g.profile.Autocorrelation*g.prev + (1-g.profile.Autocorrelation)*v
	}

	v = g.clamp(v)
	g.prev = v
	g.hasPrev = true
	return v
}

func (g *Generator) applyScenario(v float64, dayNumber, totalDays int) float64 {
	switch g.scenario {
	case ScenarioConsistent:
		return v * (1.0 + g.rng.NormFloat64()*0.05)
	case ScenarioVolatile:
		return v * (1.0 + g.rng.NormFloat64()*0.25)
	case ScenarioDeclining:
		// 30% decline spread linearly over the window.
		return v * (1.0 - 0.3/float64(totalDays)*float64(dayNumber))
	case ScenarioImproving:
		return v * (1.0 + 0.3/float64(totalDays)*float64(dayNumber))
	case ScenarioCyclical:
		cycle := math.Sin(2 * math.Pi * float64(dayNumber) / 7)
		return v * (1.0 + 0.15*cycle)
	case ScenarioShock:
		// 10% chance of a disruption day.
		if g.rng.Float64() < 0.1 {
			shocks := []float64{-0.3, -0.2, 0.2, 0.3}
			return v * (1.0 + shocks[g.rng.Intn(len(shocks))])
		}
	}
	return v
}

// applyLearningCurve applies a sigmoid improvement of up to 20%, centered
// on the midpoint of the plateau window.
func (g *Generator) applyLearningCurve(v float64, dayNumber int) float64 {
	if !g.profile.LearningCurveEnabled {
		return v
	}
	plateauDays := float64(g.profile.PlateauWeeks * 7)
	learningFactor := 1.0 / (1.0 + math.Exp(-g.profile.LearningRate*(float64(dayNumber)-plateauDays/2)))
	return v * (1.0 + learningFactor*0.2)
}

func (g *Generator) applyTemporal(v float64, day model.Date) float64 {
	if g.profile.DayOfWeekImpact != nil {
		// time.Weekday has Sunday=0; the wire shape uses Monday=0.
		dow := (int(day.Time().Weekday()) + 6) % 7
		if m, ok := g.profile.DayOfWeekImpact[dow]; ok {
			v *= m
		}
	}
	if g.profile.MonthImpact != nil {
		if m, ok := g.profile.MonthImpact[int(day.Time().Month())]; ok {
			v *= m
		}
	}
	return v
}

func (g *Generator) clamp(v float64) float64 {
	if v < g.profile.MinModifier {
		return g.profile.MinModifier
	}
	if v > g.profile.MaxModifier {
		return g.profile.MaxModifier
	}
	return v
}

// StaffingAdjustment converts a productivity modifier into adjusted staff
// needs: lower productivity needs more staff. Never drops below one.
func StaffingAdjustment(baselineStaff int, modifier float64) int {
	if modifier <= 0 {
		return baselineStaff
	}
	adjusted := int(math.Ceil(float64(baselineStaff) / modifier))
	if adjusted < 1 {
		return 1
	}
	return adjusted
}
