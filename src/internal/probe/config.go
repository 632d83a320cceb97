package probe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SuiteConfig maps probe categories to target entry-point names plus the
// scalar parameters the probes use. It is supplied once per run and read-only
// during execution; a category with no entry points configured is skipped.
type SuiteConfig struct {
	ReentrancyFunctions   []string `yaml:"reentrancy_functions"`
	OverflowFunctions     []string `yaml:"overflow_functions"`
	RestrictedFunctions   []string `yaml:"restricted_functions"`
	GasFunctions          []string `yaml:"gas_functions"`
	FrontRunningFunctions []string `yaml:"front_running_functions"`
	OracleFunctions       []string `yaml:"oracle_functions"`
	SwapFunctions         []string `yaml:"swap_functions"`
	FlashLoanFunctions    []string `yaml:"flash_loan_functions"`

	// Amount is the reference value in wei attached to reentrancy and
	// front-running stimuli.
	Amount int64 `yaml:"amount"`
	// GasIterations is the escalating iteration ladder for the gas probe.
	GasIterations []int64 `yaml:"gas_iterations"`
	// GasHighWater is the gas-usage threshold above which a call is flagged.
	GasHighWater uint64 `yaml:"gas_high_water"`
}

// Defaults mirrors the reference configuration of the test suite.
const (
	defaultAmount       = 1000
	defaultGasHighWater = 8_000_000
)

var defaultGasIterations = []int64{100, 500, 1000, 5000}

// LoadSuiteConfig reads a suite configuration from a YAML file and applies
// defaults.
func LoadSuiteConfig(path string) (*SuiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite config: %w", err)
	}

	var cfg SuiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse suite config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills the scalar parameters that were left unset.
func (c *SuiteConfig) ApplyDefaults() {
	if c.Amount <= 0 {
		c.Amount = defaultAmount
	}
	if len(c.GasIterations) == 0 {
		c.GasIterations = append([]int64(nil), defaultGasIterations...)
	}
	if c.GasHighWater == 0 {
		c.GasHighWater = defaultGasHighWater
	}
}
