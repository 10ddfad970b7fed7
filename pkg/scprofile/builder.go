package scprofile

import (
	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

// Remote unit type classifications.
const (
	UnitTypeControlCenter           = "ControlCenter"
	UnitTypeIED                     = "IED"
	UnitTypeRTU                     = "RTU"
	UnitTypeSubstationControlSystem = "SubstationControlSystem"
)

// ScadaProtocol is written to every SCADAPoint.protocol.
const ScadaProtocol = "DNP3"

const (
	unknownDeviceName = "UnknownDevice"
	centralRole       = "rtu"
)

var (
	nameProperty = cim.CIM("IdentifiedObject.name")
	mridProperty = cim.CIM("IdentifiedObject.mRID")
)

// remoteUnit is one node of the remote unit arena.
type remoteUnit struct {
	mrid     string
	resource *cim.Resource
}

// Builder assembles an SC profile graph.
type Builder struct {
	cfg      Config
	modelURN string

	central *remoteUnit
	units   []*remoteUnit
	byMap   map[string]int
	// records counts every device record added, duplicates included.
	records int

	points []rtac.PointRecord
}

// NewBuilder returns an empty builder. An empty substation still works but
// produces an anonymous model.
func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg:      cfg,
		modelURN: cim.ModelURN(cfg.Substation),
		byMap:    make(map[string]int),
	}
}

// ModelURN returns the URN of the model being built.
func (b *Builder) ModelURN() string {
	return b.modelURN
}

// UnitType maps a device role to its remote unit classification.
func UnitType(role rtac.Role) string {
	switch role {
	case rtac.RoleServer:
		return UnitTypeControlCenter
	case rtac.RoleClient:
		return UnitTypeIED
	default:
		return UnitTypeRTU
	}
}

// AddDevices adds one remote unit per device, keyed by map name. A device
// whose map name was already added replaces the earlier unit in place but is
// still counted in the stats.
func (b *Builder) AddDevices(devices []rtac.DeviceRecord) {
	for _, dev := range devices {
		b.records++
		name := dev.Name
		if name == "" {
			name = unknownDeviceName
		}
		mapName := dev.MapName
		if mapName == "" {
			mapName = name
		}
		role := dev.Role
		if role == "" {
			role = rtac.RoleDevice
		}

		mrid := cim.NewMRID(cim.PrefixRemoteUnit, b.cfg.Substation, mapName)
		res := newUnitResource(mrid, name, UnitType(role))
		res.LiteralIfSet(cim.VER("RemoteUnit.sourceFile"), dev.SourceFile).
			Literal(cim.VER("RemoteUnit.mapName"), mapName).
			LiteralIfSet(cim.VER("RemoteUnit.protocol"), dev.Protocol).
			Literal(cim.VER("RemoteUnit.role"), string(role)).
			LiteralIfSet(cim.VER("RemoteUnit.manufacturer"), dev.Manufacturer).
			LiteralIfSet(cim.VER("RemoteUnit.model"), dev.Model)

		unit := &remoteUnit{mrid: mrid, resource: res}
		if i, ok := b.byMap[mapName]; ok {
			b.units[i] = unit
			continue
		}
		b.byMap[mapName] = len(b.units)
		b.units = append(b.units, unit)
	}
}

// SetCentralUnit adds the exporting RTAC itself as a remote unit. It is kept
// outside the map-name index and replaces any earlier central unit.
func (b *Builder) SetCentralUnit(name string) {
	mrid := cim.NewMRID(cim.PrefixCentralUnit, b.cfg.Substation, name)
	res := newUnitResource(mrid, name, UnitTypeSubstationControlSystem)
	res.Literal(cim.VER("RemoteUnit.role"), centralRole)
	b.central = &remoteUnit{mrid: mrid, resource: res}
}

// AddPoints queues points for the graph. Points without a name are dropped.
func (b *Builder) AddPoints(points []rtac.PointRecord) {
	for _, pt := range points {
		if pt.Name == "" {
			continue
		}
		b.points = append(b.points, pt)
	}
}

func newUnitResource(mrid, name, unitType string) *cim.Resource {
	return cim.NewResource(cim.CIM("RemoteUnit"), mrid).
		Literal(nameProperty, name).
		Literal(mridProperty, mrid).
		Ref(cim.CIM("RemoteUnit.remoteUnitType"), cim.NamespaceCIM+"RemoteUnitType."+unitType)
}

// recordCount returns the number of remote unit records seen, central
// included. Records sharing a map name are each counted.
func (b *Builder) recordCount() int {
	n := b.records
	if b.central != nil {
		n++
	}
	return n
}

// unitCount returns the number of distinct remote units, central included.
func (b *Builder) unitCount() int {
	n := len(b.units)
	if b.central != nil {
		n++
	}
	return n
}

// resolveUnit finds the remote unit for a map name, falling back to the only
// remote unit when exactly one exists.
func (b *Builder) resolveUnit(mapName string) (string, bool) {
	if mapName != "" {
		if i, ok := b.byMap[mapName]; ok {
			return b.units[i].mrid, true
		}
	}
	if b.unitCount() != 1 {
		return "", false
	}
	if b.central != nil {
		return b.central.mrid, true
	}
	return b.units[0].mrid, true
}

// resolveEquipment looks up the equipment mRID by tag name, then map name.
func (b *Builder) resolveEquipment(tag, mapName string) (string, bool) {
	if mrid, ok := b.cfg.EquipmentMapping[tag]; ok && mrid != "" {
		return mrid, true
	}
	if mapName != "" {
		if mrid, ok := b.cfg.EquipmentMapping[mapName]; ok && mrid != "" {
			return mrid, true
		}
	}
	return "", false
}
