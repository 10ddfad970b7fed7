// Package pipeline runs one RTAC export through the converter: fetch it from
// a repository, generate its SC profile and commit the profile back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/scada-studio/rtac-cim/pkg/cim"
	"github.com/scada-studio/rtac-cim/pkg/equipment"
	"github.com/scada-studio/rtac-cim/pkg/log"
	"github.com/scada-studio/rtac-cim/pkg/metrics"
	"github.com/scada-studio/rtac-cim/pkg/rtac"
	"github.com/scada-studio/rtac-cim/pkg/scprofile"
	"github.com/scada-studio/rtac-cim/pkg/source"
)

const (
	// SourceDir is the repository directory holding RTAC exports.
	SourceDir = "xml/"
	// ProfileDir is the repository directory profiles are committed to.
	ProfileDir = "profiles/"
	// BotMarker tags commits made by the pipeline.
	BotMarker = "[bot]"
	// BotName is the author name the pipeline commits as.
	BotName = "SCADA Studio Bot"
)

// Job outcomes reported to metrics.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// ErrNoSubstation is returned when a job has no substation and none can be
// derived from the repository name.
var ErrNoSubstation = errors.New("no substation for job")

// Job identifies one export to convert.
type Job struct {
	Repo     string
	Path     string
	Revision string

	// Substation defaults to the last segment of Repo.
	Substation string

	// CommitMessage of the change that triggered the job, if any.
	CommitMessage string
}

// Result describes a processed job.
type Result struct {
	RunID       string                 `json:"run_id"`
	SourceFile  string                 `json:"source_file"`
	Substation  string                 `json:"substation,omitempty"`
	ModelURN    string                 `json:"model_urn,omitempty"`
	Stats       scprofile.Stats        `json:"stats"`
	Unresolved  []scprofile.Unresolved `json:"unresolved,omitempty"`
	ProfilePath string                 `json:"profile_path,omitempty"`
	Revision    string                 `json:"revision,omitempty"`
	Skipped     bool                   `json:"skipped,omitempty"`
	SkipReason  string                 `json:"skip_reason,omitempty"`
}

// Config wires a Processor to its collaborators. Fetcher and Committer are
// required; everything else is optional.
type Config struct {
	Fetcher   source.Fetcher
	Committer source.Committer

	// Retry settings for fetch and commit.
	Backoff  source.BackoffConfig
	Attempts int

	RTUName   string
	Authority string
	Equipment *equipment.Mapping

	// Events receives run events. Nil disables them.
	Events log.Logger
	// Logger is the optional operational logger. Nil disables it.
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *metrics.Registry

	Now func() time.Time
}

// Processor converts jobs. It holds no per-job state and is safe for
// concurrent use when its collaborators are.
type Processor struct {
	cfg    Config
	events log.Logger

	fetcher   source.Fetcher
	committer source.Committer
}

// NewProcessor returns a processor for cfg.
func NewProcessor(cfg Config) *Processor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	events := cfg.Events
	if events == nil {
		events = log.NoopLogger{}
	}
	return &Processor{
		cfg:       cfg,
		events:    events,
		fetcher:   &source.RetryFetcher{Fetcher: cfg.Fetcher, Backoff: cfg.Backoff, Attempts: cfg.Attempts},
		committer: &source.RetryCommitter{Committer: cfg.Committer, Backoff: cfg.Backoff, Attempts: cfg.Attempts},
	}
}

// ShouldProcess reports whether a repository path is an RTAC export. The
// extension match is case-sensitive.
func ShouldProcess(p string) bool {
	return strings.HasPrefix(p, SourceDir) && strings.HasSuffix(p, ".xml")
}

// IsBotCommit reports whether a commit message was written by the pipeline.
func IsBotCommit(message string) bool {
	return strings.Contains(message, BotMarker) || strings.Contains(message, BotName)
}

// ProfilePath returns where the profile of a substation is committed.
func ProfilePath(substation string) string {
	return ProfileDir + substation + "_SC.xml"
}

// CommitMessage returns the message used when committing a profile.
func CommitMessage(sourcePath string) string {
	return BotMarker + " Update SC profile from " + path.Base(sourcePath)
}

// DefaultSubstation derives a substation name from a repository name.
func DefaultSubstation(repo string) string {
	repo = strings.TrimRight(repo, "/")
	if i := strings.LastIndexByte(repo, '/'); i >= 0 {
		return repo[i+1:]
	}
	return repo
}

// Process runs one job. Skipped jobs return a Result with Skipped set and a
// nil error.
func (p *Processor) Process(ctx context.Context, job Job) (*Result, error) {
	run := &run{
		p:   p,
		job: job,
		res: &Result{RunID: log.NewRunID(), SourceFile: job.Path},
	}
	res, err := run.execute(ctx)
	switch {
	case err != nil:
		p.recordJob(OutcomeFailed)
	case res.Skipped:
		p.recordJob(OutcomeSkipped)
	default:
		p.recordJob(OutcomeGenerated)
	}
	return res, err
}

func (p *Processor) recordJob(outcome string) {
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.RecordJob(outcome)
	}
}

func (p *Processor) debugLog(msg string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Debug(msg, args...)
	}
}

func (p *Processor) infoLog(msg string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Info(msg, args...)
	}
}

func (p *Processor) errorLog(msg string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Error(msg, args...)
	}
}

// run carries the state of a single Process call.
type run struct {
	p   *Processor
	job Job
	res *Result
}

func (r *run) event(stage log.Stage, cat log.Category) log.Event {
	return log.Event{
		Timestamp:  r.p.cfg.Now(),
		RunID:      r.res.RunID,
		Stage:      stage,
		Category:   cat,
		Repo:       r.job.Repo,
		SourceFile: r.job.Path,
		Substation: r.res.Substation,
	}
}

func (r *run) fail(stage log.Stage, err error) error {
	e := r.event(stage, log.CategoryError)
	e.Error = &log.ErrorData{Message: err.Error(), Permanent: source.IsPermanent(err)}
	r.p.events.Log(e)
	r.p.errorLog("conversion failed", "run_id", r.res.RunID, "stage", stage.String(), "source_file", r.job.Path, "error", err)
	return fmt.Errorf("%s %s: %w", strings.ToLower(stage.String()), r.job.Path, err)
}

func (r *run) skip(reason string) (*Result, error) {
	r.res.Skipped = true
	r.res.SkipReason = reason
	e := r.event(log.StageFetch, log.CategoryInfo)
	e.Detail = "skipped: " + reason
	r.p.events.Log(e)
	r.p.debugLog("job skipped", "run_id", r.res.RunID, "source_file", r.job.Path, "reason", reason)
	return r.res, nil
}

func (r *run) execute(ctx context.Context) (*Result, error) {
	cfg := r.p.cfg

	if !ShouldProcess(r.job.Path) {
		return r.skip("not an RTAC export")
	}
	if IsBotCommit(r.job.CommitMessage) {
		return r.skip("bot commit")
	}

	substation := r.job.Substation
	if substation == "" {
		substation = DefaultSubstation(r.job.Repo)
	}
	if strings.TrimSpace(substation) == "" {
		return nil, r.fail(log.StageFetch, ErrNoSubstation)
	}
	r.res.Substation = substation

	// Fetch
	start := time.Now()
	data, err := r.p.fetcher.Fetch(ctx, r.job.Repo, r.job.Path, r.job.Revision)
	if err != nil {
		return nil, r.fail(log.StageFetch, err)
	}
	e := r.event(log.StageFetch, log.CategoryInfo)
	e.Revision = r.job.Revision
	e.Duration = time.Since(start)
	e.Summary = &log.SummaryData{Bytes: len(data)}
	r.p.events.Log(e)

	// Parse
	genStart := time.Now()
	devices, points, err := rtac.Parse(data, path.Base(r.job.Path))
	if err != nil {
		if cfg.Metrics != nil {
			cfg.Metrics.RecordParseFailure()
		}
		return nil, r.fail(log.StageParse, err)
	}
	e = r.event(log.StageParse, log.CategoryInfo)
	e.Duration = time.Since(genStart)
	e.Summary = &log.SummaryData{Devices: len(devices), Points: len(points)}
	r.p.events.Log(e)

	// Build
	pcfg := scprofile.Config{
		Substation: substation,
		RTUName:    cfg.RTUName,
		Authority:  cfg.Authority,
		Now:        cfg.Now,
	}
	if m := cfg.Equipment; m != nil {
		pcfg.EquipmentMapping = m.Table()
		pcfg.EquipmentModelURN = m.EQModelURN
		pcfg.ProtectionModelURN = m.PEModelURN
	}
	buildStart := time.Now()
	b := scprofile.NewBuilder(pcfg)
	if pcfg.RTUName != "" {
		b.SetCentralUnit(pcfg.RTUName)
	}
	b.AddDevices(devices)
	b.AddPoints(points)
	g := b.Graph()

	r.res.Stats = g.Stats
	r.res.ModelURN = g.Stats.ModelURN
	r.res.Unresolved = g.Unresolved

	e = r.event(log.StageBuild, log.CategoryInfo)
	e.Duration = time.Since(buildStart)
	e.Summary = &log.SummaryData{
		RemoteUnits:       g.Stats.RemoteUnits,
		Points:            g.Stats.TotalPoints,
		AnalogPoints:      g.Stats.AnalogPoints,
		DiscretePoints:    g.Stats.DiscretePoints,
		AccumulatorPoints: g.Stats.AccumulatorPoints,
		ControlPoints:     g.Stats.ControlPoints,
		ModelURN:          g.Stats.ModelURN,
	}
	r.p.events.Log(e)
	r.recordUnresolved(g.Unresolved)

	// Encode
	encStart := time.Now()
	out, err := cim.Marshal(g.Document(), cim.DefaultPrefixes())
	if err != nil {
		return nil, r.fail(log.StageEncode, err)
	}
	e = r.event(log.StageEncode, log.CategoryInfo)
	e.Duration = time.Since(encStart)
	e.Summary = &log.SummaryData{Bytes: len(out), ModelURN: g.Stats.ModelURN}
	r.p.events.Log(e)

	if cfg.Metrics != nil {
		cfg.Metrics.RecordProfile(metrics.ProfileCounts{
			RemoteUnits: g.Stats.RemoteUnits,
			Analog:      g.Stats.AnalogPoints,
			Discrete:    g.Stats.DiscretePoints,
			Accumulator: g.Stats.AccumulatorPoints,
			Control:     g.Stats.ControlPoints,
		}, time.Since(genStart))
	}

	// Commit
	profilePath := ProfilePath(substation)
	commitStart := time.Now()
	rev, err := r.p.committer.Commit(ctx, r.job.Repo, profilePath, out, CommitMessage(r.job.Path))
	if err != nil {
		return nil, r.fail(log.StageCommit, err)
	}
	r.res.ProfilePath = profilePath
	r.res.Revision = rev

	e = r.event(log.StageCommit, log.CategoryInfo)
	e.Duration = time.Since(commitStart)
	e.Revision = rev
	e.Detail = profilePath
	r.p.events.Log(e)

	r.p.infoLog("profile committed",
		"run_id", r.res.RunID,
		"source_file", r.job.Path,
		"substation", substation,
		"profile", profilePath,
		"revision", rev,
		"total_points", g.Stats.TotalPoints,
		"unresolved", len(g.Unresolved),
	)
	return r.res, nil
}

func (r *run) recordUnresolved(unresolved []scprofile.Unresolved) {
	counts := make(map[scprofile.UnresolvedKind]int)
	for _, u := range unresolved {
		counts[u.Kind]++
		e := r.event(log.StageBuild, log.CategoryUnresolved)
		e.Unresolved = &log.UnresolvedData{Kind: string(u.Kind), Tag: u.Tag, MapName: u.MapName}
		r.p.events.Log(e)
	}
	if r.p.cfg.Metrics == nil {
		return
	}
	for kind, n := range counts {
		r.p.cfg.Metrics.RecordUnresolved(string(kind), n)
	}
}
