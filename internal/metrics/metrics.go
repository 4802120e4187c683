package metrics

import "fmt"

// #region state

// State holds the six bounded simulation metrics. Waste, emissions, and
// cost read "lower is better"; efficiency and community trust read
// "higher is better". SustainabilityScore is derived from the other five
// and must only be set via Recompute.
type State struct {
	Waste               float64 `json:"waste"`
	Emissions           float64 `json:"emissions"`
	Cost                float64 `json:"cost"`
	Efficiency          float64 `json:"efficiency"`
	CommunityTrust      float64 `json:"communityTrust"`
	SustainabilityScore float64 `json:"sustainabilityScore"`
}

// #endregion state

// #region delta

// Delta carries signed offsets for the five base metrics. The derived
// score has no delta; it is always recomputed.
type Delta struct {
	Waste          float64 `json:"waste"`
	Emissions      float64 `json:"emissions"`
	Cost           float64 `json:"cost"`
	Efficiency     float64 `json:"efficiency"`
	CommunityTrust float64 `json:"communityTrust"`
}

// #endregion delta

// #region clamp

// Clamp constrains a metric value to [0,100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion clamp

// #region score

// ComputeScore derives the aggregate sustainability score from the five
// base metrics:
//
//	(100-waste)*0.25 + (100-emissions)*0.25 + (100-cost)*0.15
//	  + efficiency*0.20 + communityTrust*0.15
func ComputeScore(s State) float64 {
	score := (100-s.Waste)*0.25 +
		(100-s.Emissions)*0.25 +
		(100-s.Cost)*0.15 +
		s.Efficiency*0.20 +
		s.CommunityTrust*0.15
	return Clamp(score)
}

// Recompute returns a copy of s with every base metric clamped and the
// sustainability score rederived.
func Recompute(s State) State {
	s.Waste = Clamp(s.Waste)
	s.Emissions = Clamp(s.Emissions)
	s.Cost = Clamp(s.Cost)
	s.Efficiency = Clamp(s.Efficiency)
	s.CommunityTrust = Clamp(s.CommunityTrust)
	s.SustainabilityScore = ComputeScore(s)
	return s
}

// #endregion score

// #region default

// Default returns the neutral starting state: every base metric at 50.
func Default() State {
	return Recompute(State{
		Waste:          50,
		Emissions:      50,
		Cost:           50,
		Efficiency:     50,
		CommunityTrust: 50,
	})
}

// #endregion default

// #region validate

// Validate rejects states with any field outside [0,100]. Boundary
// checks fail fast; clamping is reserved for delta application.
func (s State) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"waste", s.Waste},
		{"emissions", s.Emissions},
		{"cost", s.Cost},
		{"efficiency", s.Efficiency},
		{"communityTrust", s.CommunityTrust},
		{"sustainabilityScore", s.SustainabilityScore},
	}
	for _, f := range fields {
		if f.v < 0 || f.v > 100 {
			return fmt.Errorf("metric %s out of range: %.2f", f.name, f.v)
		}
	}
	return nil
}

// #endregion validate
