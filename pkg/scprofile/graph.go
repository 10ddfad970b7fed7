package scprofile

import (
	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

// UnresolvedKind classifies a reference that could not be resolved.
type UnresolvedKind string

const (
	// UnresolvedDevice means no remote unit matched the point's map name.
	UnresolvedDevice UnresolvedKind = "device"
	// UnresolvedEquipment means an equipment mapping was supplied but had no
	// entry for the point.
	UnresolvedEquipment UnresolvedKind = "equipment"
)

// Unresolved records a link that was omitted from the graph.
type Unresolved struct {
	Kind    UnresolvedKind `json:"kind"`
	Tag     string         `json:"tag"`
	MapName string         `json:"map_name,omitempty"`
}

// Graph is a materialized SC profile.
type Graph struct {
	Header         cim.FullModel
	RemoteUnits    []cim.Resource
	Measurements   []cim.Resource
	RemoteSources  []cim.Resource
	RemoteControls []cim.Resource
	Unresolved     []Unresolved
	Stats          Stats
}

// Document returns the graph in output order: header, remote units,
// measurements and controls, remote sources, remote controls.
func (g *Graph) Document() cim.Document {
	n := len(g.RemoteUnits) + len(g.Measurements) + len(g.RemoteSources) + len(g.RemoteControls)
	res := make([]cim.Resource, 0, n)
	res = append(res, g.RemoteUnits...)
	res = append(res, g.Measurements...)
	res = append(res, g.RemoteSources...)
	res = append(res, g.RemoteControls...)
	header := g.Header
	return cim.Document{Header: &header, Resources: res}
}

// Graph materializes the current builder state. The builder is not modified.
func (b *Builder) Graph() *Graph {
	now := b.cfg.now()
	g := &Graph{
		Header: cim.FullModel{
			URN:                  b.modelURN,
			ScenarioTime:         now,
			Created:              now,
			Description:          b.cfg.description(),
			ModelingAuthoritySet: b.cfg.authoritySet(),
			Profile:              cim.ProfileSCADAConfiguration,
			DependentOn:          []string{b.cfg.EquipmentModelURN, b.cfg.ProtectionModelURN},
		},
		Stats: Stats{
			RemoteUnits: b.recordCount(),
			Substation:  b.cfg.Substation,
			ModelURN:    b.modelURN,
		},
	}

	if b.central != nil {
		g.RemoteUnits = append(g.RemoteUnits, *b.central.resource)
	}
	for _, u := range b.units {
		g.RemoteUnits = append(g.RemoteUnits, *u.resource)
	}

	for _, pt := range b.points {
		b.addPoint(g, pt)
	}
	g.Stats.TotalPoints = g.Stats.AnalogPoints + g.Stats.DiscretePoints +
		g.Stats.AccumulatorPoints + g.Stats.ControlPoints
	return g
}

func (b *Builder) addPoint(g *Graph, pt rtac.PointRecord) {
	control := cim.IsControl(pt.DataType)
	mrid := cim.NewMRID(cim.PrefixPoint, b.cfg.Substation, pt.Name)

	var class string
	switch {
	case control:
		class = "Control"
		g.Stats.ControlPoints++
	case cim.ClassOf(pt.DataType) == cim.ClassAnalog:
		class = "Analog"
		g.Stats.AnalogPoints++
	case cim.ClassOf(pt.DataType) == cim.ClassAccumulator:
		class = "Accumulator"
		g.Stats.AccumulatorPoints++
	default:
		class = "Discrete"
		g.Stats.DiscretePoints++
	}

	res := cim.NewResource(cim.CIM(class), mrid).
		Literal(nameProperty, pt.Name).
		Literal(mridProperty, mrid).
		LiteralIfSet(cim.CIM("IdentifiedObject.description"), pt.Description)
	if !control {
		res.Literal(cim.CIM("Measurement.measurementType"), cim.MeasurementType(pt.DataType))
	}

	if eq, ok := b.resolveEquipment(pt.Name, pt.MapName); ok {
		if control {
			res.Ref(cim.CIM("Control.PowerSystemResource"), cim.LocalRef(eq))
		} else {
			res.Ref(cim.CIM("Measurement.PowerSystemResource"), cim.LocalRef(eq))
		}
	} else if len(b.cfg.EquipmentMapping) > 0 {
		g.Unresolved = append(g.Unresolved, Unresolved{Kind: UnresolvedEquipment, Tag: pt.Name, MapName: pt.MapName})
	}

	res.LiteralIfSet(cim.VER("SCADAPoint.dnp3Address"), pt.Address).
		Literal(cim.VER("SCADAPoint.protocol"), ScadaProtocol).
		Literal(cim.VER("SCADAPoint.dataType"), pt.DataType).
		Literal(cim.VER("SCADAPoint.tagName"), pt.Name).
		LiteralIfSet(cim.VER("SCADAPoint.sourceFile"), pt.SourceFile)
	g.Measurements = append(g.Measurements, *res)

	unit, ok := b.resolveUnit(pt.MapName)
	if !ok {
		g.Unresolved = append(g.Unresolved, Unresolved{Kind: UnresolvedDevice, Tag: pt.Name, MapName: pt.MapName})
		return
	}
	if control {
		rc := cim.NewResource(cim.CIM("RemoteControl"), cim.NewMRID(cim.PrefixRemoteControl, b.cfg.Substation, pt.Name)).
			Ref(cim.CIM("RemoteControl.Control"), cim.LocalRef(mrid)).
			Ref(cim.CIM("RemotePoint.RemoteUnit"), cim.LocalRef(unit))
		g.RemoteControls = append(g.RemoteControls, *rc)
		return
	}
	rs := cim.NewResource(cim.CIM("RemoteSource"), cim.NewMRID(cim.PrefixRemoteSource, b.cfg.Substation, pt.Name)).
		Ref(cim.CIM("RemoteSource.MeasurementValue"), cim.LocalRef(mrid)).
		Ref(cim.CIM("RemotePoint.RemoteUnit"), cim.LocalRef(unit))
	g.RemoteSources = append(g.RemoteSources, *rs)
}

// Serialize encodes the graph as RDF/XML with the default prefixes.
func (b *Builder) Serialize() ([]byte, error) {
	return cim.Marshal(b.Graph().Document(), cim.DefaultPrefixes())
}

// Stats returns the counters of the graph the builder would produce.
func (b *Builder) Stats() Stats {
	return b.Graph().Stats
}
