package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scada-studio/rtac-cim/pkg/equipment"
	"github.com/scada-studio/rtac-cim/pkg/scprofile"
)

// ErrNoSubstation is returned when neither the flags nor the equipment
// mapping name a substation.
var ErrNoSubstation = errors.New("substation is required (-substation or equipment mapping)")

// GenerateOptions configures the generate command.
type GenerateOptions struct {
	Input         string
	Output        string
	Substation    string
	RTUName       string
	Authority     string
	Description   string
	EquipmentFile string
	EQModelURN    string
	PEModelURN    string

	// Now overrides the header timestamp source.
	Now func() time.Time
}

// RunGenerate converts an RTAC export to an SC profile. The profile goes to
// opts.Output, or to w when Output is empty. When stats is non-nil the
// generation stats are written to it as JSON.
func RunGenerate(opts GenerateOptions, w io.Writer, stats io.Writer) error {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	cfg := scprofile.Config{
		Substation:         opts.Substation,
		RTUName:            opts.RTUName,
		Authority:          opts.Authority,
		Description:        opts.Description,
		EquipmentModelURN:  opts.EQModelURN,
		ProtectionModelURN: opts.PEModelURN,
		Now:                opts.Now,
	}
	if opts.EquipmentFile != "" {
		m, err := equipment.Load(opts.EquipmentFile)
		if err != nil {
			return err
		}
		cfg.EquipmentMapping = m.Table()
		if cfg.EquipmentModelURN == "" {
			cfg.EquipmentModelURN = m.EQModelURN
		}
		if cfg.ProtectionModelURN == "" {
			cfg.ProtectionModelURN = m.PEModelURN
		}
		if cfg.Substation == "" {
			cfg.Substation = m.Substation
		}
	}

	if strings.TrimSpace(cfg.Substation) == "" {
		return ErrNoSubstation
	}

	out, st, err := scprofile.GenerateProfile(data, filepath.Base(opts.Input), cfg)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := w.Write(out); err != nil {
		return err
	}

	if stats != nil {
		enc := json.NewEncoder(stats)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return nil
}
