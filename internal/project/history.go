package project

// History bounds, per spec.md §4.3: the list is trimmed to the tail after
// every append, and a hard ceiling guards against an unbounded list ever
// reaching the normal cap through a corrupted document.
const (
	HistorySoftCap  = 50
	HistoryHardCeil = 500
)

// AppendRender appends record, trims renders.history to HistorySoftCap,
// and updates last_render_id to point at the newly-appended record.
func (p *Project) AppendRender(record RenderRecord) {
	history := append(p.Renders.History, record)
	p.Renders.History = trimRenders(history)
	p.Renders.LastRenderID = record.RenderID
}

// AppendDemoRun appends record, trims demo.runs to HistorySoftCap, and
// updates last_run_id to point at the newly-appended record.
func (p *Project) AppendDemoRun(record DemoRunRecord) {
	runs := append(p.Demo.Runs, record)
	p.Demo.Runs = trimDemoRuns(runs)
	p.Demo.LastRunID = record.RunID
}

func trimRenders(history []RenderRecord) []RenderRecord {
	if len(history) > HistoryHardCeil {
		history = history[len(history)-HistoryHardCeil:]
	}
	if len(history) > HistorySoftCap {
		history = history[len(history)-HistorySoftCap:]
	}
	return history
}

func trimDemoRuns(runs []DemoRunRecord) []DemoRunRecord {
	if len(runs) > HistoryHardCeil {
		runs = runs[len(runs)-HistoryHardCeil:]
	}
	if len(runs) > HistorySoftCap {
		runs = runs[len(runs)-HistorySoftCap:]
	}
	return runs
}

// DemoRunsNewestFirst returns demo.runs reversed, for the
// GET /projects/{id}/demo/runs endpoint's newest-first contract.
func (p *Project) DemoRunsNewestFirst() []DemoRunRecord {
	runs := p.Demo.Runs
	out := make([]DemoRunRecord, len(runs))
	for i, r := range runs {
		out[len(runs)-1-i] = r
	}
	return out
}
