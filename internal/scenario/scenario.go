// Package scenario loads simulation scenario files.
//
// A scenario file is YAML describing a full simulation request, with two
// conveniences the raw request lacks: a capacity_defaults template expanded
// to every day in the window without an explicit capacity entry, and an
// optional capacity_variance block that modulates the generated days'
// productivity modifiers.
//
// Files are decoded strictly (unknown keys are errors) and then unified
// with the embedded CUE schema before a request is built.
package scenario

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/strataops/backsim/internal/model"
	"github.com/strataops/backsim/internal/variance"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name in conformance tests.
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	OrganizationID string     `yaml:"organization_id"`
	StartDate      model.Date `yaml:"start_date"`
	EndDate        model.Date `yaml:"end_date"`
	Seed           *int64     `yaml:"seed,omitempty"`

	EnablePriorityAging *bool `yaml:"enable_priority_aging,omitempty"`
	EnableSLATracking   *bool `yaml:"enable_sla_tracking,omitempty"`

	Profile *profileDoc `yaml:"profile,omitempty"`

	InitialBacklogItems []model.BacklogItem   `yaml:"initial_backlog_items,omitempty"`
	DailyCapacities     []model.DailyCapacity `yaml:"daily_capacities,omitempty"`
	CapacityDefaults    *CapacityDefaults     `yaml:"capacity_defaults,omitempty"`
	CapacityVariance    *CapacityVariance     `yaml:"capacity_variance,omitempty"`
	DailyDemands        []model.DailyDemand   `yaml:"daily_demands,omitempty"`
}

// profileDoc wraps model.Profile so absent YAML keys keep their defaults:
// decoding writes over a DefaultProfile value.
type profileDoc struct {
	model.Profile
}

func (p *profileDoc) UnmarshalYAML(value *yaml.Node) error {
	p.Profile = model.DefaultProfile()
	return value.Decode(&p.Profile)
}

// CapacityDefaults is a per-day capacity template applied to every day in
// the window that has no explicit daily_capacities entry.
type CapacityDefaults struct {
	TotalCapacityHours    float64 `yaml:"total_capacity_hours"`
	BacklogCapacityHours  float64 `yaml:"backlog_capacity_hours"`
	NewWorkCapacityHours  float64 `yaml:"new_work_capacity_hours"`
	StaffCount            int     `yaml:"staff_count"`
	ProductivityModifier  float64 `yaml:"productivity_modifier"`
	MaxItemsPerDay        *int    `yaml:"max_items_per_day,omitempty"`
	MaxComplexItemsPerDay *int    `yaml:"max_complex_items_per_day,omitempty"`
}

// CapacityVariance modulates the productivity modifier of the capacities
// generated from CapacityDefaults. Explicit daily_capacities entries are
// never touched.
type CapacityVariance struct {
	Scenario variance.Scenario `yaml:"scenario"`
	Profile  *variance.Profile `yaml:"profile,omitempty"`
}

// Load reads and parses a scenario file, validates it against the embedded
// CUE schema, and checks the cross-field rules the schema cannot express.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse parses scenario YAML from memory. See Load.
func Parse(data []byte) (*Scenario, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // catches typos the schema's closed structs also reject
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validate covers the rules that need parsed dates or joined fields.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("end_date %s precedes start_date %s", s.EndDate, s.StartDate)
	}
	if len(s.DailyCapacities) == 0 && s.CapacityDefaults == nil {
		return fmt.Errorf("at least one of daily_capacities or capacity_defaults is required")
	}
	if s.CapacityVariance != nil {
		if s.CapacityDefaults == nil {
			return fmt.Errorf("capacity_variance requires capacity_defaults")
		}
		if !s.CapacityVariance.Scenario.Valid() {
			return fmt.Errorf("unknown variance scenario %q", s.CapacityVariance.Scenario)
		}
	}
	seen := make(map[model.Date]bool, len(s.DailyCapacities))
	for _, c := range s.DailyCapacities {
		if seen[c.Date] {
			return fmt.Errorf("duplicate daily_capacities entry for %s", c.Date)
		}
		seen[c.Date] = true
	}
	return nil
}

// Build materializes the simulation request: profile defaults, tracking
// toggles, and capacity expansion (defaults template plus variance).
//
// The variance generator seeds from the scenario seed so a seeded scenario
// produces identical capacities run to run; an unseeded one draws from the
// clock.
func (s *Scenario) Build() (model.Request, error) {
	req := model.NewRequest()
	req.OrganizationID = s.OrganizationID
	req.StartDate = s.StartDate
	req.EndDate = s.EndDate
	req.Seed = s.Seed
	req.InitialBacklogItems = s.InitialBacklogItems
	req.DailyDemands = s.DailyDemands

	if s.Profile != nil {
		req.Profile = s.Profile.Profile
	}
	if s.EnablePriorityAging != nil {
		req.EnablePriorityAging = *s.EnablePriorityAging
	}
	if s.EnableSLATracking != nil {
		req.EnableSLATracking = *s.EnableSLATracking
	}

	capacities, err := s.expandCapacities()
	if err != nil {
		return model.Request{}, err
	}
	req.DailyCapacities = capacities

	if err := req.Validate(); err != nil {
		return model.Request{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return req, nil
}

// expandCapacities merges explicit entries with the defaults template and
// applies capacity variance to the generated days.
func (s *Scenario) expandCapacities() ([]model.DailyCapacity, error) {
	explicit := make(map[model.Date]model.DailyCapacity, len(s.DailyCapacities))
	for _, c := range s.DailyCapacities {
		explicit[c.Date] = c
	}

	var modifiers map[model.Date]float64
	if s.CapacityVariance != nil {
		profile := variance.PresetProfile(s.CapacityVariance.Scenario)
		if s.CapacityVariance.Profile != nil {
			profile = *s.CapacityVariance.Profile
		}
		seed := time.Now().UnixNano()
		if s.Seed != nil {
			seed = *s.Seed
		}
		gen := variance.NewGenerator(profile, s.CapacityVariance.Scenario, rand.New(rand.NewSource(seed)))

		modifiers = make(map[model.Date]float64)
		for _, dm := range gen.Modifiers(s.StartDate, s.EndDate) {
			modifiers[dm.Date] = dm.Modifier
		}
	}

	var out []model.DailyCapacity
	for day := s.StartDate; !day.After(s.EndDate); day = day.AddDays(1) {
		if c, ok := explicit[day]; ok {
			out = append(out, c)
			continue
		}
		if s.CapacityDefaults == nil {
			// No template: the engine treats the day as skipped.
			continue
		}

		d := s.CapacityDefaults
		capacity := model.DailyCapacity{
			Date:                  day,
			TotalCapacityHours:    d.TotalCapacityHours,
			BacklogCapacityHours:  d.BacklogCapacityHours,
			NewWorkCapacityHours:  d.NewWorkCapacityHours,
			StaffCount:            d.StaffCount,
			ProductivityModifier:  d.ProductivityModifier,
			MaxItemsPerDay:        d.MaxItemsPerDay,
			MaxComplexItemsPerDay: d.MaxComplexItemsPerDay,
		}
		if capacity.ProductivityModifier == 0 {
			capacity.ProductivityModifier = 1.0
		}
		if m, ok := modifiers[day]; ok {
			capacity.ProductivityModifier = m
			capacity.StaffCount = variance.StaffingAdjustment(d.StaffCount, m)
		}
		out = append(out, capacity)
	}
	return out, nil
}
