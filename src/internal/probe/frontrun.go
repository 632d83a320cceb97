package probe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// FrontRunningProbe issues two competing invocations of the same entry point,
// the second bidding a higher fee. When both go through, nothing in the
// target enforces ordering-independent correctness, which is recorded as an
// advisory LOW finding.
type FrontRunningProbe struct{}

func (FrontRunningProbe) Category() Category { return CategoryFrontRunning }

func (FrontRunningProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.FrontRunningFunctions) > 0
}

func (FrontRunningProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	victim, ok := harness.Owner(h)
	if !ok {
		return fmt.Errorf("no privileged identity available")
	}
	attacker, ok := harness.Unprivileged(h)
	if !ok {
		return fmt.Errorf("no unprivileged identity available")
	}
	amount := big.NewInt(cfg.Amount)

	for _, entryPoint := range cfg.FrontRunningFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		victimResult, err := h.Invoke(ctx, harness.Call{
			Target:     target,
			EntryPoint: entryPoint,
			Caller:     victim,
			Value:      amount,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", entryPoint, err)
		}

		attackerResult, err := h.Invoke(ctx, harness.Call{
			Target:     target,
			EntryPoint: entryPoint,
			Caller:     attacker,
			Value:      new(big.Int).Add(amount, big.NewInt(1)),
			Priority:   1,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", entryPoint, err)
		}

		if !victimResult.Reverted && !attackerResult.Reverted {
			rec.Log("FRONT_RUNNING",
				fmt.Sprintf("No ordering protection detected in %s; competing calls both succeeded", entryPoint),
				report.SeverityLow)
		}
	}
	return nil
}
