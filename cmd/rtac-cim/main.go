// Command rtac-cim converts SEL RTAC XML exports into CIM SCADA
// configuration (SC) profiles.
//
// Usage:
//
//	rtac-cim <command> [flags] <args>
//
// Commands:
//
//	parse     Show the devices and points found in an export
//	generate  Convert an export to an SC profile
//	sync      Convert an export stored in a repository and commit the profile
//	log       Inspect run logs written by sync
//	version   Print the version
//
// Examples:
//
//	# Inspect an export
//	rtac-cim parse -format text MAP1.xml
//
//	# Write a profile with generation stats on stderr
//	rtac-cim generate -substation maple -o maple_SC.xml -stats MAP1.xml
//
//	# Convert a repository file and commit the result
//	rtac-cim sync -config rtac-cim.yaml -repo maple -path xml/MAP1.xml
//
//	# Show failed runs from a run log
//	rtac-cim log view -category error runs.rlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/scada-studio/rtac-cim/cmd/rtac-cim/commands"
	"github.com/scada-studio/rtac-cim/internal/config"
	"github.com/scada-studio/rtac-cim/pkg/pipeline"
)

// Version is set at build time.
var Version = "dev"

const usage = `rtac-cim - RTAC XML to CIM SCADA profile converter

Usage:
  rtac-cim <command> [flags] <args>

Commands:
  parse     Show the devices and points found in an export
  generate  Convert an export to an SC profile
  sync      Convert an export stored in a repository and commit the profile
  log       Inspect run logs (view, stats, export, filter)
  version   Print the version

Use "rtac-cim <command> -help" for more information about a command.
`

const logUsage = `rtac-cim log - Inspect run logs

Usage:
  rtac-cim log <command> [flags] <file.rlog>

Commands:
  view     View log file in human-readable format
  stats    Show statistics about the log file
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file

Use - as the file to read a log from standard input.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "parse":
		runParse(args)
	case "generate":
		runGenerate(args)
	case "sync":
		runSync(args)
	case "log":
		runLog(args)
	case "version":
		fmt.Println(Version)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newFlagSet(name, synopsis, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rtac-cim %s - %s\n\nUsage:\n  %s\n\nFlags:\n", name, synopsis, usageLine)
		fs.PrintDefaults()
	}
	return fs
}

// requireArg parses args and returns the single positional argument.
func requireArg(fs *flag.FlagSet, args []string, what string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: %s required\n", what)
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runParse(args []string) {
	fs := newFlagSet("parse", "Show the devices and points found in an export",
		"rtac-cim parse [flags] <file.xml>")
	format := fs.String("format", "json", "Output format (json, text)")
	path := requireArg(fs, args, "export file path")

	if err := commands.RunParse(path, *format, os.Stdout); err != nil {
		fail(err)
	}
}

func runGenerate(args []string) {
	fs := newFlagSet("generate", "Convert an export to an SC profile",
		"rtac-cim generate -substation NAME [flags] <file.xml>")
	var opts commands.GenerateOptions
	fs.StringVar(&opts.Substation, "substation", "", "Substation name (required unless set by -equipment)")
	fs.StringVar(&opts.RTUName, "rtu-name", "", "Name of the exporting RTU, emitted as the central unit")
	fs.StringVar(&opts.Authority, "authority", "", "Modeling authority set (default SA)")
	fs.StringVar(&opts.Description, "description", "", "Model description")
	fs.StringVar(&opts.EquipmentFile, "equipment", "", "Equipment mapping YAML file")
	fs.StringVar(&opts.EQModelURN, "eq-model", "", "Equipment model URN the profile depends on")
	fs.StringVar(&opts.PEModelURN, "pe-model", "", "Protection model URN the profile depends on")
	fs.StringVar(&opts.Output, "o", "", "Output file (default: stdout)")
	stats := fs.Bool("stats", false, "Write generation stats as JSON to stderr")
	opts.Input = requireArg(fs, args, "export file path")

	var statsOut io.Writer
	if *stats {
		statsOut = os.Stderr
	}
	if err := commands.RunGenerate(opts, os.Stdout, statsOut); err != nil {
		fail(err)
	}
}

func runSync(args []string) {
	fs := newFlagSet("sync", "Convert an export stored in a repository and commit the profile",
		"rtac-cim sync [flags] -repo NAME -path xml/FILE.xml")
	configPath := fs.String("config", "", "Config file (YAML)")
	repoRoot := fs.String("root", "", "Repository root directory (overrides config)")
	substation := fs.String("substation", "", "Substation name (default: repository name)")
	var job pipeline.Job
	fs.StringVar(&job.Repo, "repo", "", "Repository name under the root (required)")
	fs.StringVar(&job.Path, "path", "", "Export path inside the repository (required)")
	fs.StringVar(&job.Revision, "rev", "", "Expected revision of the export (default: HEAD)")
	fs.StringVar(&job.CommitMessage, "message", "", "Message of the triggering commit")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if job.Repo == "" || job.Path == "" {
		fmt.Fprintln(os.Stderr, "Error: -repo and -path are required")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fail(err)
	}
	if *repoRoot != "" {
		cfg.RepoRoot = *repoRoot
	}
	if *substation != "" {
		cfg.Substation = *substation
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.NewLogger(os.Stderr)
	if err := commands.RunSync(ctx, cfg, job, logger, os.Stdout); err != nil {
		stop()
		fail(err)
	}
}

func runLog(args []string) {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, logUsage)
		os.Exit(1)
	}

	switch args[0] {
	case "view":
		runLogView(args[1:])
	case "stats":
		runLogStats(args[1:])
	case "export":
		runLogExport(args[1:])
	case "filter":
		runLogFilter(args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Print(logUsage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown log command: %s\n", args[0])
		fmt.Fprint(os.Stderr, logUsage)
		os.Exit(1)
	}
}

func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	var opts commands.FilterOptions
	fs.StringVar(&opts.RunID, "run", "", "Filter by run ID")
	fs.StringVar(&opts.SourceFile, "file", "", "Filter by source file")
	fs.StringVar(&opts.Substation, "substation", "", "Filter by substation")
	fs.StringVar(&opts.Stage, "stage", "", "Filter by stage (fetch, parse, build, encode, commit)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (info, unresolved, error)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return &opts
}

func runLogView(args []string) {
	fs := newFlagSet("log view", "View log file in human-readable format",
		"rtac-cim log view [flags] <file.rlog>")
	opts := filterFlags(fs)
	path := requireArg(fs, args, "log file path")

	if err := commands.RunView(path, *opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runLogStats(args []string) {
	fs := newFlagSet("log stats", "Show statistics about the log file",
		"rtac-cim log stats <file.rlog>")
	path := requireArg(fs, args, "log file path")

	if err := commands.RunLogStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func runLogExport(args []string) {
	fs := newFlagSet("log export", "Export log file to JSONL or CSV format",
		"rtac-cim log export [flags] <file.rlog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := requireArg(fs, args, "log file path")

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runLogFilter(args []string) {
	fs := newFlagSet("log filter", "Filter log file and write to new file",
		"rtac-cim log filter -o OUT [flags] <file.rlog>")
	output := fs.String("o", "", "Output file (required)")
	opts := filterFlags(fs)
	path := requireArg(fs, args, "log file path")
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *output, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}
