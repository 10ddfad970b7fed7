package scprofile

import "time"

// DefaultAuthority is the organization segment of the modeling authority URI.
const DefaultAuthority = "SA"

// Config controls profile generation. Every field is optional; the substation
// is used verbatim, even when empty.
type Config struct {
	// Substation seeds every identifier and names the modeling authority.
	Substation string

	// RTUName, when set, adds the exporting RTAC as a central remote unit.
	RTUName string

	// Dependent model URNs written as md:Model.DependentOn.
	EquipmentModelURN  string
	ProtectionModelURN string

	// Description overrides the default model description.
	Description string

	// EquipmentMapping maps tag names or map names to equipment mRIDs.
	EquipmentMapping map[string]string

	// Authority is the organization prefix. Defaults to DefaultAuthority.
	Authority string

	// Now supplies header timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (c Config) description() string {
	if c.Description != "" {
		return c.Description
	}
	return "SCADA Configuration profile for " + c.Substation
}

func (c Config) authoritySet() string {
	org := c.Authority
	if org == "" {
		org = DefaultAuthority
	}
	return "http://verance.ai/" + org + "/" + c.Substation
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
