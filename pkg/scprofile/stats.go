package scprofile

// Stats summarizes a generated profile.
type Stats struct {
	RemoteUnits       int    `json:"remote_units"`
	AnalogPoints      int    `json:"analog_points"`
	DiscretePoints    int    `json:"discrete_points"`
	AccumulatorPoints int    `json:"accumulator_points"`
	ControlPoints     int    `json:"control_points"`
	TotalPoints       int    `json:"total_points"`
	Substation        string `json:"substation"`
	ModelURN          string `json:"model_urn"`
}

// Map returns the stats as a flat key/value mapping using the JSON keys.
func (s Stats) Map() map[string]any {
	return map[string]any{
		"remote_units":       s.RemoteUnits,
		"analog_points":      s.AnalogPoints,
		"discrete_points":    s.DiscretePoints,
		"accumulator_points": s.AccumulatorPoints,
		"control_points":     s.ControlPoints,
		"total_points":       s.TotalPoints,
		"substation":         s.Substation,
		"model_urn":          s.ModelURN,
	}
}
