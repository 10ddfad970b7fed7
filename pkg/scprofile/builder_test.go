package scprofile

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 4, 10, 11, 12, 0, time.UTC) }

func testConfig() Config {
	return Config{Substation: "maple", Now: fixedNow}
}

func literal(t *testing.T, r cim.Resource, name cim.QName) string {
	t.Helper()
	v, ok := r.Get(name)
	require.True(t, ok, "missing %s on %s", name.Local, r.ID)
	return v
}

func ref(t *testing.T, r cim.Resource, name cim.QName) string {
	t.Helper()
	v, ok := r.RefTo(name)
	require.True(t, ok, "missing %s on %s", name.Local, r.ID)
	return v
}

func TestUnitType(t *testing.T) {
	assert.Equal(t, UnitTypeControlCenter, UnitType(rtac.RoleServer))
	assert.Equal(t, UnitTypeIED, UnitType(rtac.RoleClient))
	assert.Equal(t, UnitTypeRTU, UnitType(rtac.RoleDevice))
	assert.Equal(t, UnitTypeRTU, UnitType(""))
}

func TestAddDevices(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{
		{Name: "EMS", MapName: "MAP_EMS", Role: rtac.RoleServer, Protocol: "DNPServer", SourceFile: "a.xml"},
		{Name: "RELAY", MapName: "MAP_R", Role: rtac.RoleClient, Manufacturer: "SEL", Model: "451"},
		{Name: "", MapName: ""},
	})

	g := b.Graph()
	require.Len(t, g.RemoteUnits, 3)
	assert.Equal(t, 3, g.Stats.RemoteUnits)

	ems := g.RemoteUnits[0]
	assert.Equal(t, cim.CIM("RemoteUnit"), ems.Class)
	assert.Equal(t, cim.NewMRID(cim.PrefixRemoteUnit, "maple", "MAP_EMS"), ems.ID)
	assert.Equal(t, ems.ID, literal(t, ems, cim.CIM("IdentifiedObject.mRID")))
	assert.Equal(t, cim.NamespaceCIM+"RemoteUnitType.ControlCenter", ref(t, ems, cim.CIM("RemoteUnit.remoteUnitType")))
	assert.Equal(t, "DNPServer", literal(t, ems, cim.VER("RemoteUnit.protocol")))
	assert.Equal(t, "a.xml", literal(t, ems, cim.VER("RemoteUnit.sourceFile")))
	_, hasModel := ems.Get(cim.VER("RemoteUnit.model"))
	assert.False(t, hasModel)

	relay := g.RemoteUnits[1]
	assert.Equal(t, cim.NamespaceCIM+"RemoteUnitType.IED", ref(t, relay, cim.CIM("RemoteUnit.remoteUnitType")))
	assert.Equal(t, "SEL", literal(t, relay, cim.VER("RemoteUnit.manufacturer")))
	assert.Equal(t, "451", literal(t, relay, cim.VER("RemoteUnit.model")))

	unknown := g.RemoteUnits[2]
	assert.Equal(t, unknownDeviceName, literal(t, unknown, cim.CIM("IdentifiedObject.name")))
	assert.Equal(t, unknownDeviceName, literal(t, unknown, cim.VER("RemoteUnit.mapName")))
	assert.Equal(t, "device", literal(t, unknown, cim.VER("RemoteUnit.role")))
	assert.Equal(t, cim.NamespaceCIM+"RemoteUnitType.RTU", ref(t, unknown, cim.CIM("RemoteUnit.remoteUnitType")))
}

func TestAddDevicesDuplicateMapNameReplaces(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{
		{Name: "FIRST", MapName: "MAP1"},
		{Name: "OTHER", MapName: "MAP2"},
		{Name: "SECOND", MapName: "MAP1"},
	})

	g := b.Graph()
	require.Len(t, g.RemoteUnits, 2)
	assert.Equal(t, 3, g.Stats.RemoteUnits, "every device record is counted")
	assert.Equal(t, "SECOND", literal(t, g.RemoteUnits[0], cim.CIM("IdentifiedObject.name")))
	assert.Equal(t, "OTHER", literal(t, g.RemoteUnits[1], cim.CIM("IdentifiedObject.name")))
}

func TestRemoteUnitStatsCountRecords(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{
		{Name: "A", MapName: "M"},
		{Name: "B", MapName: "M"},
	})

	g := b.Graph()
	require.Len(t, g.RemoteUnits, 1)
	assert.Equal(t, 2, g.Stats.RemoteUnits)

	b.SetCentralUnit("RTAC")
	assert.Equal(t, 3, b.Graph().Stats.RemoteUnits)
}

func TestSetCentralUnit(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{{Name: "D", MapName: "ORS1-PPC-R151"}})
	b.SetCentralUnit("ORS1-PPC-R151")

	g := b.Graph()
	require.Len(t, g.RemoteUnits, 2, "central unit must not collide with a device map name")

	central := g.RemoteUnits[0]
	assert.Equal(t, cim.NewMRID(cim.PrefixCentralUnit, "maple", "ORS1-PPC-R151"), central.ID)
	assert.Equal(t, cim.NamespaceCIM+"RemoteUnitType.SubstationControlSystem", ref(t, central, cim.CIM("RemoteUnit.remoteUnitType")))
	assert.Equal(t, "rtu", literal(t, central, cim.VER("RemoteUnit.role")))
	assert.NotEqual(t, central.ID, g.RemoteUnits[1].ID)
}

func TestAddPointsClasses(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{{Name: "D", MapName: "MAP1"}})
	b.AddPoints([]rtac.PointRecord{
		{Name: "P_MV", DataType: "MV", MapName: "MAP1"},
		{Name: "P_SPS", DataType: "SPS", MapName: "MAP1"},
		{Name: "P_BCR", DataType: "BCR", MapName: "MAP1"},
		{Name: "P_SPC", DataType: "SPC", MapName: "MAP1"},
		{Name: "P_UNK", DataType: "weird", MapName: "MAP1"},
		{Name: "", DataType: "MV", MapName: "MAP1"},
	})

	g := b.Graph()
	require.Len(t, g.Measurements, 5)

	classes := make([]string, 0, len(g.Measurements))
	for _, m := range g.Measurements {
		classes = append(classes, m.Class.Local)
	}
	assert.Equal(t, []string{"Analog", "Discrete", "Accumulator", "Control", "Discrete"}, classes)

	assert.Equal(t, "AI", literal(t, g.Measurements[0], cim.CIM("Measurement.measurementType")))
	assert.Equal(t, "BI", literal(t, g.Measurements[1], cim.CIM("Measurement.measurementType")))
	assert.Equal(t, "CT", literal(t, g.Measurements[2], cim.CIM("Measurement.measurementType")))
	_, hasType := g.Measurements[3].Get(cim.CIM("Measurement.measurementType"))
	assert.False(t, hasType, "controls carry no measurement type")
	assert.Equal(t, "BI", literal(t, g.Measurements[4], cim.CIM("Measurement.measurementType")))
	assert.Equal(t, "weird", literal(t, g.Measurements[4], cim.VER("SCADAPoint.dataType")))

	assert.Len(t, g.RemoteSources, 4)
	require.Len(t, g.RemoteControls, 1)
	rc := g.RemoteControls[0]
	assert.Equal(t, cim.NewMRID(cim.PrefixRemoteControl, "maple", "P_SPC"), rc.ID)
	assert.Equal(t, "#"+g.Measurements[3].ID, ref(t, rc, cim.CIM("RemoteControl.Control")))
	assert.Equal(t, "#"+g.RemoteUnits[0].ID, ref(t, rc, cim.CIM("RemotePoint.RemoteUnit")))

	assert.Equal(t, Stats{
		RemoteUnits:       1,
		AnalogPoints:      1,
		DiscretePoints:    2,
		AccumulatorPoints: 1,
		ControlPoints:     1,
		TotalPoints:       5,
		Substation:        "maple",
		ModelURN:          cim.ModelURN("maple"),
	}, g.Stats)
}

func TestPointExtensions(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddPoints([]rtac.PointRecord{
		{Name: "T1", Address: "7", DataType: "MV", Description: "Feeder amps", SourceFile: "x.xml"},
		{Name: "T2", DataType: "MV"},
	})

	g := b.Graph()
	m := g.Measurements[0]
	assert.Equal(t, cim.NewMRID(cim.PrefixPoint, "maple", "T1"), m.ID)
	assert.Equal(t, "Feeder amps", literal(t, m, cim.CIM("IdentifiedObject.description")))
	assert.Equal(t, "7", literal(t, m, cim.VER("SCADAPoint.dnp3Address")))
	assert.Equal(t, "DNP3", literal(t, m, cim.VER("SCADAPoint.protocol")))
	assert.Equal(t, "T1", literal(t, m, cim.VER("SCADAPoint.tagName")))
	assert.Equal(t, "x.xml", literal(t, m, cim.VER("SCADAPoint.sourceFile")))

	bare := g.Measurements[1]
	for _, name := range []cim.QName{cim.CIM("IdentifiedObject.description"), cim.VER("SCADAPoint.dnp3Address"), cim.VER("SCADAPoint.sourceFile")} {
		_, ok := bare.Get(name)
		assert.False(t, ok, "unexpected %s", name.Local)
	}
}

func TestDeviceLinkResolution(t *testing.T) {
	t.Run("exact map name", func(t *testing.T) {
		b := NewBuilder(testConfig())
		b.AddDevices([]rtac.DeviceRecord{{Name: "A", MapName: "MAP_A"}, {Name: "B", MapName: "MAP_B"}})
		b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV", MapName: "MAP_B"}})

		g := b.Graph()
		require.Len(t, g.RemoteSources, 1)
		assert.Equal(t, "#"+cim.NewMRID(cim.PrefixRemoteUnit, "maple", "MAP_B"), ref(t, g.RemoteSources[0], cim.CIM("RemotePoint.RemoteUnit")))
		assert.Empty(t, g.Unresolved)
	})

	t.Run("single unit fallback", func(t *testing.T) {
		b := NewBuilder(testConfig())
		b.AddDevices([]rtac.DeviceRecord{{Name: "A", MapName: "MAP_A"}})
		b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV", MapName: "OTHER"}, {Name: "C", DataType: "SPC"}})

		g := b.Graph()
		assert.Len(t, g.RemoteSources, 1)
		assert.Len(t, g.RemoteControls, 1)
	})

	t.Run("central unit only", func(t *testing.T) {
		b := NewBuilder(testConfig())
		b.SetCentralUnit("RTAC")
		b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV"}})

		g := b.Graph()
		require.Len(t, g.RemoteSources, 1)
		assert.Equal(t, "#"+cim.NewMRID(cim.PrefixCentralUnit, "maple", "RTAC"), ref(t, g.RemoteSources[0], cim.CIM("RemotePoint.RemoteUnit")))
	})

	t.Run("ambiguous keeps measurement", func(t *testing.T) {
		b := NewBuilder(testConfig())
		b.AddDevices([]rtac.DeviceRecord{{Name: "A", MapName: "MAP_A"}, {Name: "B", MapName: "MAP_B"}})
		b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV", MapName: "MAP_C"}})

		g := b.Graph()
		assert.Len(t, g.Measurements, 1)
		assert.Empty(t, g.RemoteSources)
		assert.Equal(t, []Unresolved{{Kind: UnresolvedDevice, Tag: "T", MapName: "MAP_C"}}, g.Unresolved)
	})

	t.Run("no units", func(t *testing.T) {
		b := NewBuilder(testConfig())
		b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV"}})

		g := b.Graph()
		assert.Len(t, g.Measurements, 1)
		assert.Empty(t, g.RemoteSources)
		assert.Len(t, g.Unresolved, 1)
	})
}

func TestEquipmentResolution(t *testing.T) {
	cfg := testConfig()
	cfg.EquipmentMapping = map[string]string{
		"BRK1_STATUS": "_eq-brk1",
		"MAP1":        "_eq-bay1",
	}
	b := NewBuilder(cfg)
	b.AddPoints([]rtac.PointRecord{
		{Name: "BRK1_STATUS", DataType: "SPS", MapName: "MAP1"},
		{Name: "BRK1_TRIP", DataType: "SPC", MapName: "MAP1"},
		{Name: "LONE", DataType: "MV", MapName: "MAP9"},
	})

	g := b.Graph()
	assert.Equal(t, "#_eq-brk1", ref(t, g.Measurements[0], cim.CIM("Measurement.PowerSystemResource")))
	assert.Equal(t, "#_eq-bay1", ref(t, g.Measurements[1], cim.CIM("Control.PowerSystemResource")))
	_, linked := g.Measurements[2].RefTo(cim.CIM("Measurement.PowerSystemResource"))
	assert.False(t, linked)
	assert.Contains(t, g.Unresolved, Unresolved{Kind: UnresolvedEquipment, Tag: "LONE", MapName: "MAP9"})
}

func TestHeader(t *testing.T) {
	cfg := testConfig()
	cfg.EquipmentModelURN = "urn:uuid:eq"
	cfg.ProtectionModelURN = "urn:uuid:pe"
	cfg.Now = func() time.Time { return time.Date(2026, 5, 4, 12, 11, 12, 500, time.FixedZone("CEST", 2*3600)) }

	out, err := NewBuilder(cfg).Serialize()
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<md:FullModel rdf:about="`+cim.ModelURN("maple")+`">`)
	assert.Contains(t, s, "<md:Model.scenarioTime>2026-05-04T10:11:12Z</md:Model.scenarioTime>")
	assert.Contains(t, s, "<md:Model.created>2026-05-04T10:11:12Z</md:Model.created>")
	assert.Contains(t, s, "<md:Model.description>SCADA Configuration profile for maple</md:Model.description>")
	assert.Contains(t, s, "<md:Model.modelingAuthoritySet>http://verance.ai/SA/maple</md:Model.modelingAuthoritySet>")
	assert.Contains(t, s, `<md:Model.DependentOn rdf:resource="urn:uuid:eq">`)
	assert.Contains(t, s, `<md:Model.DependentOn rdf:resource="urn:uuid:pe">`)

	cfg.Authority = "ACME"
	cfg.Description = "custom"
	cfg.EquipmentModelURN, cfg.ProtectionModelURN = "", ""
	out, err = NewBuilder(cfg).Serialize()
	require.NoError(t, err)
	s = string(out)
	assert.Contains(t, s, "http://verance.ai/ACME/maple")
	assert.Contains(t, s, "<md:Model.description>custom</md:Model.description>")
	assert.NotContains(t, s, "Model.DependentOn")
}

func TestSerializeOrder(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddPoints([]rtac.PointRecord{{Name: "C", DataType: "SPC"}, {Name: "M", DataType: "MV"}})
	b.AddDevices([]rtac.DeviceRecord{{Name: "D", MapName: "MAP1"}})

	out, err := b.Serialize()
	require.NoError(t, err)
	s := string(out)

	order := []string{"<md:FullModel", "<cim:RemoteUnit ", "<cim:Control ", "<cim:Analog ", "<cim:RemoteSource ", "<cim:RemoteControl "}
	last := -1
	for _, marker := range order {
		idx := strings.Index(s, marker)
		require.NotEqual(t, -1, idx, "missing %s", marker)
		assert.Greater(t, idx, last, "%s out of order", marker)
		last = idx
	}
}

func TestSerializeRepeatable(t *testing.T) {
	b := NewBuilder(testConfig())
	b.AddDevices([]rtac.DeviceRecord{{Name: "D", MapName: "MAP1"}})
	b.AddPoints([]rtac.PointRecord{{Name: "T", DataType: "MV", MapName: "MAP1"}})

	first, err := b.Serialize()
	require.NoError(t, err)
	second, err := b.Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, b.Stats(), b.Stats())
}

func TestCallOrderIndependence(t *testing.T) {
	devices := []rtac.DeviceRecord{{Name: "A", MapName: "MAP_A"}, {Name: "B", MapName: "MAP_B"}}
	points := []rtac.PointRecord{{Name: "T1", DataType: "MV", MapName: "MAP_B"}, {Name: "T2", DataType: "SPC", MapName: "MAP_A"}}

	b1 := NewBuilder(testConfig())
	b1.AddDevices(devices)
	b1.SetCentralUnit("RTAC")
	b1.AddPoints(points)

	b2 := NewBuilder(testConfig())
	b2.AddPoints(points)
	b2.SetCentralUnit("RTAC")
	b2.AddDevices(devices)

	out1, err := b1.Serialize()
	require.NoError(t, err)
	out2, err := b2.Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(out1), string(out2))
}

func TestStatsJSONKeys(t *testing.T) {
	data, err := json.Marshal(Stats{RemoteUnits: 1, TotalPoints: 2, Substation: "maple", ModelURN: "urn:uuid:x"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"remote_units", "analog_points", "discrete_points", "accumulator_points", "control_points", "total_points", "substation", "model_urn"} {
		assert.Contains(t, m, key)
	}
	assert.Len(t, m, 8)
	assert.Len(t, Stats{}.Map(), 8)
}
