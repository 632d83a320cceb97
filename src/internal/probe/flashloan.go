package probe

import (
	"context"
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// FlashLoanProbe requests a disproportionately large flash loan. A loan
// granted without reverting means the entry point accepts amounts no
// collateral or fee check could cover.
type FlashLoanProbe struct{}

func (FlashLoanProbe) Category() Category { return CategoryFlashLoan }

func (FlashLoanProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.FlashLoanFunctions) > 0
}

func (FlashLoanProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	owner, ok := harness.Owner(h)
	if !ok {
		return fmt.Errorf("no privileged identity available")
	}
	largeAmount := wei(1_000_000)

	for _, entryPoint := range cfg.FlashLoanFunctions {
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
			rec.Log("FLASH_LOAN",
				fmt.Sprintf("Flash loan vulnerability in %s", entryPoint),
				report.SeverityHigh)
		}
	}
	return nil
}
