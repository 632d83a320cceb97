package probe

import (
	"context"
	"math/big"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// Category identifies one vulnerability class. The string value doubles as
// the config key and the finding source.
type Category string

const (
	CategoryReentrancy    Category = "reentrancy"
	CategoryOverflow      Category = "overflow"
	CategoryAccessControl Category = "access_control"
	CategoryGasLimit      Category = "gas_limit"
	CategoryFrontRunning  Category = "front_running"
	CategoryOracle        Category = "oracle"
	CategorySlippage      Category = "slippage"
	CategoryFlashLoan     Category = "flash_loan"
)

// Probe exercises one vulnerability category against a target's declared
// entry points. A revert during a stimulus is evidence of a protected path
// and never becomes a finding; a returned error means the probe itself could
// not run and is captured per-category by the suite.
type Probe interface {
	Category() Category
	// Applicable reports whether the config declares anything for this category.
	Applicable(cfg *SuiteConfig) bool
	Run(ctx context.Context, h harness.ExecutionContext, target *harness.Target, cfg *SuiteConfig, rec *Recorder) error
}

// Recorder collects the findings of one probe run and notifies the observer
// as each one is detected.
type Recorder struct {
	category Category
	observer Observer
	findings []report.Finding
}

func newRecorder(category Category, observer Observer) *Recorder {
	return &Recorder{
		category: category,
		observer: observer,
	}
}

// Log records one discovered vulnerability.
func (r *Recorder) Log(typ, description string, severity report.Severity) {
	f := report.NewFinding(typ, description, severity, string(r.category))
	r.findings = append(r.findings, f)
	r.observer.Handle(Event{
		Type:     EventFindingDetected,
		Category: r.category,
		Finding:  &f,
	})
}

// Findings returns everything logged so far.
func (r *Recorder) Findings() []report.Finding {
	return r.findings
}

// wei scales n by 10^18.
func wei(n int64) *big.Int {
	e18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), e18)
}
