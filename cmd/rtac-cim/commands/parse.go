// Package commands implements the rtac-cim CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
)

// parseOutput is the JSON document written by the parse command.
type parseOutput struct {
	File    string              `json:"file"`
	Shape   string              `json:"shape"`
	Devices []rtac.DeviceRecord `json:"devices"`
	Points  []rtac.PointRecord  `json:"points"`
}

// RunParse parses an RTAC export and writes its devices and points to w.
// Format is "json" or "text".
func RunParse(path, format string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	root, err := rtac.Decode(data)
	if err != nil {
		return &rtac.ParseError{File: path, Cause: err}
	}

	filename := filepath.Base(path)
	devices, points := rtac.ParseTree(root, filename)
	out := parseOutput{
		File:    filename,
		Shape:   rtac.Classify(root).String(),
		Devices: devices,
		Points:  points,
	}
	if out.Devices == nil {
		out.Devices = []rtac.DeviceRecord{}
	}
	if out.Points == nil {
		out.Points = []rtac.PointRecord{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text":
		printParse(w, out)
		return nil
	default:
		return fmt.Errorf("unknown format: %s (supported: json, text)", format)
	}
}

func printParse(w io.Writer, out parseOutput) {
	fmt.Fprintf(w, "File:  %s\n", out.File)
	fmt.Fprintf(w, "Shape: %s\n", out.Shape)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices (%d):\n", len(out.Devices))
	for _, d := range out.Devices {
		fmt.Fprintf(w, "  %-24s map=%s protocol=%s\n", d.Name, d.MapName, d.Protocol)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Points (%d):\n", len(out.Points))
	for _, p := range out.Points {
		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "  %-24s %-6s %-4s addr=%s", name, p.DataType, cim.PointType(p.DataType), p.Address)
		if p.MapName != "" {
			fmt.Fprintf(w, " map=%s", p.MapName)
		}
		if len(p.Extra) > 0 {
			keys := make([]string, 0, len(p.Extra))
			for k := range p.Extra {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+"="+p.Extra[k])
			}
			fmt.Fprintf(w, " [%s]", strings.Join(pairs, " "))
		}
		fmt.Fprintln(w)
	}
}
