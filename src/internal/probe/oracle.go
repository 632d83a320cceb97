package probe

import (
	"context"
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// OracleProbe reads each configured price entry point and compares the value
// against the well-known fixture sentinel. A price stuck at the sentinel
// suggests a hardcoded, non-live source.
type OracleProbe struct{}

func (OracleProbe) Category() Category { return CategoryOracle }

func (OracleProbe) Applicable(cfg *SuiteConfig) bool {
	return len(cfg.OracleFunctions) > 0
}

func (OracleProbe) Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error {
	sentinel := wei(1000)

	for _, entryPoint := range cfg.OracleFunctions {
		if !target.HasEntryPoint(entryPoint) {
			continue
		}

		value, err := h.Query(ctx, target, entryPoint)
		if err != nil {
			// An unreadable oracle is treated as a guarded read, not a probe
			// failure.
			continue
		}

		if value.Cmp(sentinel) == 0 {
			rec.Log("ORACLE_MANIPULATION",
				fmt.Sprintf("Fixed oracle price in %s", entryPoint),
				report.SeverityMedium)
		}
	}
	return nil
}
