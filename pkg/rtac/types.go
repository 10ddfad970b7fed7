package rtac

// Role classifies a device connection relative to the exporting RTU.
type Role string

const (
	// RoleServer is a downstream master the RTU serves data to.
	RoleServer Role = "server"
	// RoleClient is an upstream IED the RTU polls.
	RoleClient Role = "client"
	// RoleDevice is a connection of unknown direction.
	RoleDevice Role = "device"
)

// DeviceRecord is a device connection found in an export.
type DeviceRecord struct {
	Name         string `json:"name"`
	MapName      string `json:"map_name"`
	SourceFile   string `json:"source_file"`
	Protocol     string `json:"protocol,omitempty"`
	Role         Role   `json:"role,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
}

// PointRecord is a single I/O point (tag) found in an export.
//
// Records without a Name are still returned by the parser so callers can
// count them; the profile builder drops them.
type PointRecord struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	DataType    string `json:"data_type,omitempty"`
	Units       string `json:"units,omitempty"`
	Description string `json:"description,omitempty"`
	MapName     string `json:"map_name,omitempty"`
	SourceFile  string `json:"source_file"`

	// Extra holds vendor columns and child elements the parser does not map,
	// keyed as they were found (tag-table columns are normalized to snake case).
	Extra map[string]string `json:"extra,omitempty"`
}

func (p *PointRecord) setExtra(key, value string) {
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}
	p.Extra[key] = value
}
