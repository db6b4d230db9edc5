package engine

import (
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/corpus"
	"github.com/poiesic/sectionrank/scoring"
)

// Monitor provides hooks to observe a job.
// Implement this interface to track intermediate steps and results. Hooks
// are called from the goroutine running the job, in stage order.
type Monitor interface {
	Start(job *core.Job)
	AfterQueryBuild(query *core.Query)
	AfterCandidateFilter(kept, dropped int)
	AfterCorpusStats(stats *corpus.Stats)
	AfterScorer(name string, result *scoring.Result)
	AfterSelection(selected []*core.ScoreRecord)
	AfterRefinement(snippets []core.RefinedSnippet)
	Finish(result *core.Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Job)                       {}
func (n *noopMonitor) AfterQueryBuild(_ *core.Query)           {}
func (n *noopMonitor) AfterCandidateFilter(_, _ int)           {}
func (n *noopMonitor) AfterCorpusStats(_ *corpus.Stats)        {}
func (n *noopMonitor) AfterScorer(_ string, _ *scoring.Result) {}
func (n *noopMonitor) AfterSelection(_ []*core.ScoreRecord)    {}
func (n *noopMonitor) AfterRefinement(_ []core.RefinedSnippet) {}
func (n *noopMonitor) Finish(_ *core.Result)                   {}
