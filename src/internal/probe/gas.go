package probe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// GasLimitProbe drives each configured entry point with an escalating
// iteration count. Usage above the high-water mark is flagged MEDIUM; an
// out-of-gas failure is a denial-of-service vector and flagged HIGH.
type GasLimitProbe struct{}

func (GasLimitProbe) Category() Category { return CategoryGasLimit }

func (GasLimitProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.GasFunctions) > 0
}

func (GasLimitProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	owner, ok := harness.Owner(h)
	if !ok {
		return fmt.Errorf("no privileged identity available")
	}

	for _, entryPoint := range cfg.GasFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		for _, iterations := range cfg.GasIterations {
			result, err := h.Invoke(ctx, harness.Call{
				Target:     target,
				EntryPoint: entryPoint,
				Args:       []any{big.NewInt(iterations)},
				Caller:     owner,
			})
			if err != nil {
				return fmt.Errorf("invoke %s: %w", entryPoint, err)
			}

			if result.Reverted {
				if result.OutOfGas {
					rec.Log("GAS_LIMIT_DOS",
						fmt.Sprintf("Gas limit DoS in %s with %d iterations", entryPoint, iterations),
						report.SeverityHigh)
				}
				// No point escalating further once a count fails.
				break
			}

			if result.GasUsed > cfg.GasHighWater {
				rec.Log("GAS_LIMIT",
					fmt.Sprintf("High gas usage in %s: %d", entryPoint, result.GasUsed),
					report.SeverityMedium)
			}
		}
	}
	return nil
}
