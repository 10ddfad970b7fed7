// Package equipment loads the mapping between RTAC tags and equipment
// objects of an external equipment (EQ) model.
package equipment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidMapping is returned when a mapping document fails validation.
var ErrInvalidMapping = errors.New("invalid equipment mapping")

var validate = validator.New()

// Mapping is an equipment mapping document.
type Mapping struct {
	Substation string  `yaml:"substation"`
	Model      string  `yaml:"model"`
	EQModelURN string  `yaml:"eq_model_urn"`
	PEModelURN string  `yaml:"pe_model_urn"`
	Entries    []Entry `yaml:"mappings" validate:"dive"`
}

// Entry links one piece of equipment to the tags or device map that
// measure it.
type Entry struct {
	EQName     string `yaml:"eq_name"`
	EQType     string `yaml:"eq_type"`
	EQURI      string `yaml:"eq_uri" validate:"required"`
	SCDevice   string `yaml:"sc_device"`
	SCMapName  string `yaml:"sc_map_name" validate:"required_without=TagPattern"`
	PERelay    string `yaml:"pe_relay"`
	TagPattern string `yaml:"tag_pattern" validate:"required_without=SCMapName"`
}

// MRID returns the equipment mRID: the URI fragment, or the whole URI when it
// has no fragment.
func (e Entry) MRID() string {
	if i := strings.LastIndexByte(e.EQURI, '#'); i >= 0 {
		return e.EQURI[i+1:]
	}
	return e.EQURI
}

// Parse parses and validates a mapping document from YAML bytes.
func Parse(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing equipment mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a mapping file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks every entry.
func (m *Mapping) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return nil
}

// Table returns the lookup table used to link points to equipment, keyed by
// tag pattern and by device map name. The first entry for a key wins.
func (m *Mapping) Table() map[string]string {
	table := make(map[string]string, 2*len(m.Entries))
	add := func(key, mrid string) {
		if key == "" || mrid == "" {
			return
		}
		if _, ok := table[key]; !ok {
			table[key] = mrid
		}
	}
	for _, e := range m.Entries {
		mrid := e.MRID()
		add(e.TagPattern, mrid)
		add(e.SCMapName, mrid)
	}
	return table
}
