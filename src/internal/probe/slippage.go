package probe

import (
	"context"
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// SlippageProbe swaps a disproportionately large amount. A swap that goes
// through without reverting has no slippage bound.
type SlippageProbe struct{}

func (SlippageProbe) Category() Category { return CategorySlippage }

func (SlippageProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.SwapFunctions) > 0
}

func (SlippageProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	owner, ok := harness.Owner(h)
	if !ok {
		return fmt.Errorf("no privileged identity available")
	}
	largeAmount := wei(1_000_000)

	for _, entryPoint := range cfg.SwapFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		result, err := h.Invoke(ctx, harness.Call{
			Target:     target,
			EntryPoint: entryPoint,
			Args:       []any{largeAmount},
			Caller:     owner,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", entryPoint, err)
		}

		if !result.Reverted {
			rec.Log("SLIPPAGE",
				fmt.Sprintf("No slippage protection in %s", entryPoint),
				report.SeverityMedium)
		}
	}
	return nil
}
