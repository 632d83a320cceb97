package probe

import (
	"context"
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// Suite holds one probe per category and runs them sequentially against a
// shared target. Probes run one at a time, in registry order: each issues
// real state-mutating calls, so results depend on the target's accumulated
// state. When the harness implements Snapshotter the suite snapshots before
// each probe and reverts afterwards so side effects do not leak between
// categories; otherwise state is shared across probes within the run.
type Suite struct {
	probes   []Probe
	observer Observer
}

// NewSuite registers every known probe in its fixed registry order.
func NewSuite(observer Observer) *Suite {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Suite{
		observer: observer,
		probes: []Probe{
			ReentrancyProbe{},
			OverflowProbe{},
			AccessControlProbe{},
			GasLimitProbe{},
			FrontRunningProbe{},
			OracleProbe{},
			SlippageProbe{},
			FlashLoanProbe{},
		},
	}
}

// CategoryOrder returns the registry order used by the suite, for
// deterministic aggregation.
func CategoryOrder() []string {
	return []string{
		string(CategoryReentrancy),
		string(CategoryOverflow),
		string(CategoryAccessControl),
		string(CategoryGasLimit),
		string(CategoryFrontRunning),
		string(CategoryOracle),
		string(CategorySlippage),
		string(CategoryFlashLoan),
	}
}

// RunAll executes every applicable probe and returns one category report per
// executed category. A category with nothing configured is skipped entirely;
// a failing probe yields an error report and never stops the others.
func (s *Suite) RunAll(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig) map[string]report.CategoryReport {
	if cfg == nil {
		cfg = &SuiteConfig{}
	}
	cfg.ApplyDefaults()

	s.observer.Handle(Event{Type: EventSuiteStarted})

	results := make(map[string]report.CategoryReport)
	for _, p := range s.probes {
		if !p.Applicable(cfg) {
			continue
		}
		results[string(p.Category())] = s.runProbe(ctx, p, h, target, cfg)
	}

	s.observer.Handle(Event{Type: EventSuiteCompleted})
	return results
}

func (s *Suite) runProbe(ctx context.Context, p Probe, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig) (cr report.CategoryReport) {
	s.observer.Handle(Event{Type: EventProbeStarted, Category: p.Category()})

	if snap, ok := h.(harness.Snapshotter); ok {
		if id, err := snap.Snapshot(); err == nil {
			// A failed restore leaves the shared state contaminated for the
			// remaining probes; it gets its own event type so observers can
			// tell it apart from a failed probe.
			defer func() {
				if err := snap.Revert(id); err != nil {
					s.observer.Handle(Event{
						Type:     EventSnapshotRevertFailed,
						Category: p.Category(),
						Err:      err.Error(),
					})
				}
			}()
		}
	}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("probe panicked: %v", r)
			s.observer.Handle(Event{Type: EventProbeFailed, Category: p.Category(), Err: msg})
			cr = report.NewErrorReport(msg)
		}
	}()

	rec := newRecorder(p.Category(), s.observer)
	if err := p.Run(ctx, h, target, cfg, rec); err != nil {
		s.observer.Handle(Event{Type: EventProbeFailed, Category: p.Category(), Err: err.Error()})
		return report.NewErrorReport(err.Error())
	}

	findings := rec.Findings()
	s.observer.Handle(Event{Type: EventProbeCompleted, Category: p.Category(), Findings: len(findings)})
	return report.NewCategoryReport(findings)
}
