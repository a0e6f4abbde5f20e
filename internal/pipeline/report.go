package pipeline

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/fittext/internal/fsutil"
	"git.home.luguber.info/inful/fittext/internal/metrics"
	"git.home.luguber.info/inful/fittext/internal/table"
)

// Stage names a step of a generator run.
type Stage string

const (
	StageDiscover    Stage = "discover"
	StageExpand      Stage = "expand"
	StageSynchronize Stage = "synchronize"
	StageCodegen     Stage = "codegen"
	StageWrite       Stage = "write"
)

// ReportFile is the name of the persisted run report inside the output directory.
const ReportFile = "fittext-report.json"

// Report captures what a generator run found and changed.
type Report struct {
	RunID string    `json:"run_id"`
	Check bool      `json:"check"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Files          int `json:"files"`           // source files scanned
	RewrittenFiles int `json:"rewritten_files"` // files with at least one call site
	TextCallSites  int `json:"text_call_sites"`
	TitleCallSites int `json:"title_call_sites"`

	NewKeys   []table.Discovery `json:"-"`
	StaleKeys []table.StaleKey  `json:"-"`

	TableChanged     bool     `json:"table_changed"`
	ContainerChanged bool     `json:"container_changed"`
	OutputsWritten   int      `json:"outputs_written"`
	OutputsRemoved   int      `json:"outputs_removed"` // stale outputs pruned by output.clean
	OutOfDate        []string `json:"out_of_date,omitempty"` // check mode: paths that would change

	Diagnostics    int                     `json:"diagnostics"`
	StageDurations map[Stage]time.Duration `json:"-"`
	Outcome        metrics.OutcomeLabel    `json:"outcome"`
}

func newReport(runID string, check bool, start time.Time) *Report {
	return &Report{
		RunID:          runID,
		Check:          check,
		Start:          start,
		StageDurations: map[Stage]time.Duration{},
	}
}

// CallSites returns the total number of rewritten call sites.
func (r *Report) CallSites() int { return r.TextCallSites + r.TitleCallSites }

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a one-line human readable summary.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "files=%d rewritten=%d call_sites=%d new_keys=%d stale_keys=%d",
		r.Files, r.RewrittenFiles, r.CallSites(), len(r.NewKeys), len(r.StaleKeys))
	if r.Check {
		fmt.Fprintf(&b, " out_of_date=%d", len(r.OutOfDate))
	} else {
		fmt.Fprintf(&b, " table_changed=%t container_changed=%t outputs_written=%d",
			r.TableChanged, r.ContainerChanged, r.OutputsWritten)
		if r.OutputsRemoved > 0 {
			fmt.Fprintf(&b, " outputs_removed=%d", r.OutputsRemoved)
		}
	}
	fmt.Fprintf(&b, " outcome=%s duration=%s", r.Outcome, r.Duration().Round(time.Millisecond))
	return b.String()
}

type reportKey struct {
	Variant string `json:"variant"`
	Key     string `json:"key"`
	Origin  string `json:"origin,omitempty"`
}

// MarshalJSON flattens keys and durations into stable JSON.
func (r *Report) MarshalJSON() ([]byte, error) {
	type plain Report
	out := struct {
		*plain
		NewKeys        []reportKey      `json:"new_keys"`
		StaleKeys      []reportKey      `json:"stale_keys"`
		StageDurations map[string]int64 `json:"stage_durations_ms"`
	}{
		plain:          (*plain)(r),
		NewKeys:        make([]reportKey, 0, len(r.NewKeys)),
		StaleKeys:      make([]reportKey, 0, len(r.StaleKeys)),
		StageDurations: make(map[string]int64, len(r.StageDurations)),
	}
	for _, d := range r.NewKeys {
		out.NewKeys = append(out.NewKeys, reportKey{Variant: string(d.Variant), Key: string(d.Key), Origin: d.Origin.String()})
	}
	for _, s := range r.StaleKeys {
		out.StaleKeys = append(out.StaleKeys, reportKey{Variant: string(s.Variant), Key: string(s.Key)})
	}
	for st, d := range r.StageDurations {
		out.StageDurations[string(st)] = d.Milliseconds()
	}
	return json.Marshal(out)
}

// Persist writes the report as JSON into dir.
func (r *Report) Persist(dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if _, err := fsutil.WriteIfChanged(filepath.Join(dir, ReportFile), append(data, '\n')); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

func (r *Report) addOutOfDate(path string) {
	r.OutOfDate = append(r.OutOfDate, path)
	sort.Strings(r.OutOfDate)
}
