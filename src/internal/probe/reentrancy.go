package probe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// ReentrancyProbe sends a value-bearing call from an unprivileged identity
// and compares the target's balance against the expected post-call balance.
// A balance below initial + value means funds left through unexpected extra
// transfers during the call.
type ReentrancyProbe struct{}

func (ReentrancyProbe) Category() Category { return CategoryReentrancy }

func (ReentrancyProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.ReentrancyFunctions) > 0
}

func (ReentrancyProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	attacker, ok := harness.Unprivileged(h)
	if !ok {
		return fmt.Errorf("no unprivileged identity available")
	}
	amount := big.NewInt(cfg.Amount)

	for _, entryPoint := range cfg.ReentrancyFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		initial, err := h.Balance(ctx, target)
		if err != nil {
			return fmt.Errorf("read balance before %s: %w", entryPoint, err)
		}

		result, err := h.Invoke(ctx, harness.Call{
			Target:     target,
			EntryPoint: entryPoint,
			Caller:     attacker,
			Value:      amount,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", entryPoint, err)
		}
		if result.Reverted {
			// Protected path.
			continue
		}

		final, err := h.Balance(ctx, target)
		if err != nil {
			return fmt.Errorf("read balance after %s: %w", entryPoint, err)
		}

		expected := new(big.Int).Add(initial, amount)
		if final.Cmp(expected) < 0 {
			rec.Log("REENTRANCY",
				fmt.Sprintf("Reentrancy vulnerability detected in %s", entryPoint),
				report.SeverityHigh)
		}
	}
	return nil
}
