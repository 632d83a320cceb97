package probe

import (
	"context"
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// AccessControlProbe invokes each configured privileged entry point from an
// unprivileged identity. A call that goes through without reverting is a
// broken access check.
type AccessControlProbe struct{}

func (AccessControlProbe) Category() Category { return CategoryAccessControl }

func (AccessControlProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.RestrictedFunctions) > 0
}

func (AccessControlProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	unauthorized, ok := harness.Unprivileged(h)
	if !ok {
		return fmt.Errorf("no unprivileged identity available")
	}

	for _, entryPoint := range cfg.RestrictedFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		result, err := h.Invoke(ctx, harness.Call{
			Target:     target,
			EntryPoint: entryPoint,
			Caller:     unauthorized,
		})
		if err != nil {
			return fmt.Errorf("invoke %s: %w", entryPoint, err)
		}

		if !result.Reverted {
			rec.Log("ACCESS_CONTROL",
				fmt.Sprintf("Access control bypass in %s", entryPoint),
				report.SeverityHigh)
		}
	}
	return nil
}
