package scprofile

import (
	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

// Result is a generated profile together with its build diagnostics.
type Result struct {
	XML        []byte
	Stats      Stats
	Unresolved []Unresolved
}

// Build generates a profile from parsed records.
func Build(devices []rtac.DeviceRecord, points []rtac.PointRecord, cfg Config) (*Result, error) {
	b := NewBuilder(cfg)
	if cfg.RTUName != "" {
		b.SetCentralUnit(cfg.RTUName)
	}
	b.AddDevices(devices)
	b.AddPoints(points)

	g := b.Graph()
	out, err := cim.Marshal(g.Document(), cim.DefaultPrefixes())
	if err != nil {
		return nil, err
	}
	return &Result{XML: out, Stats: g.Stats, Unresolved: g.Unresolved}, nil
}

// Generate builds an SC profile from parsed records.
func Generate(devices []rtac.DeviceRecord, points []rtac.PointRecord, cfg Config) ([]byte, Stats, error) {
	res, err := Build(devices, points, cfg)
	if err != nil {
		return nil, Stats{}, err
	}
	return res.XML, res.Stats, nil
}

// GenerateProfile parses an RTAC export and builds its SC profile. Malformed
// input is the only failure: it returns an error matching
// rtac.ErrMalformedInput and no output.
func GenerateProfile(data []byte, filename string, cfg Config) ([]byte, Stats, error) {
	devices, points, err := rtac.Parse(data, filename)
	if err != nil {
		return nil, Stats{}, err
	}
	return Generate(devices, points, cfg)
}
