package probe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// OverflowProbe drives each configured entry point through a matrix of
// integer boundary inputs. An out-of-range input that neither reverts nor is
// rejected by the encoder means the target accepts values it cannot
// represent.
type OverflowProbe struct{}

func (OverflowProbe) Category() Category { return CategoryOverflow }

func (OverflowProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.OverflowFunctions) > 0
}

func (OverflowProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	owner, ok := harness.Owner(h)
	if !ok {
		return fmt.Errorf("no privileged identity available")
	}

	maxUint256 := math.MaxBig256
	cases := []*big.Int{
		new(big.Int).Set(maxUint256),
		new(big.Int).Sub(maxUint256, big.NewInt(1)),
		new(big.Int).Add(maxUint256, big.NewInt(1)),
		big.NewInt(0),
		big.NewInt(-1),
	}

	for _, entryPoint := range cfg.OverflowFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		for _, input := range cases {
			outOfRange := input.Sign() < 0 || input.Cmp(maxUint256) > 0

			result, err := h.Invoke(ctx, harness.Call{
				Target:     target,
				EntryPoint: entryPoint,
				Args:       []any{new(big.Int).Set(input)},
				Caller:     owner,
			})
			if err != nil {
				if outOfRange {
					// The encoder refused a value outside uint256 range, which
					// is as protected as a revert.
					continue
				}
				return fmt.Errorf("invoke %s: %w", entryPoint, err)
			}
			if result.Reverted {
				continue
			}

			if outOfRange {
				rec.Log("INTEGER_OVERFLOW",
					fmt.Sprintf("Integer overflow in %s with input %s", entryPoint, input),
					report.SeverityHigh)
			}
		}
	}
	return nil
}
