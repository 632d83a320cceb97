package probe

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

func gasIterationsArg(t *testing.T, call harness.Call) int64 {
	t.Helper()
	require.Len(t, call.Args, 1)
	value, ok := call.Args[0].(*big.Int)
	require.True(t, ok)
	return value.Int64()
}

func TestGasLimitProbeFlagsHighUsage(t *testing.T) {
	fake := newFakeContext()
	fake.handlers["processAll"] = func(call harness.Call) (*harness.CallResult, error) {
		iterations := gasIterationsArg(t, call)
		return &harness.CallResult{GasUsed: uint64(iterations) * 2000}, nil
	}

	cfg := &SuiteConfig{
		GasFunctions:  []string{"processAll"},
		GasIterations: []int64{100, 500, 1000, 5000},
		GasHighWater:  8_000_000,
	}
	rec := newRecorder(CategoryGasLimit, NopObserver{})

	err := GasLimitProbe{}.Run(context.Background(), fake, testTarget("processAll"), cfg, rec)
	require.NoError(t, err)

	// Only the 5000-iteration call crosses 8M gas.
	findings := rec.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, "GAS_LIMIT", findings[0].Type)
	assert.Equal(t, report.SeverityMedium, findings[0].Severity)
	assert.Contains(t, findings[0].Description, "processAll")
}

func TestGasLimitProbeOutOfGasIsDoS(t *testing.T) {
	fake := newFakeContext()
	fake.handlers["processAll"] = func(call harness.Call) (*harness.CallResult, error) {
		if gasIterationsArg(t, call) >= 1000 {
			return &harness.CallResult{Reverted: true, OutOfGas: true, GasUsed: 8_000_000}, nil
		}
		return &harness.CallResult{GasUsed: 100_000}, nil
	}

	cfg := &SuiteConfig{
		GasFunctions:  []string{"processAll"},
		GasIterations: []int64{100, 500, 1000, 5000},
		GasHighWater:  8_000_000,
	}
	rec := newRecorder(CategoryGasLimit, NopObserver{})

	err := GasLimitProbe{}.Run(context.Background(), fake, testTarget("processAll"), cfg, rec)
	require.NoError(t, err)

	findings := rec.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, "GAS_LIMIT_DOS", findings[0].Type)
	assert.Equal(t, report.SeverityHigh, findings[0].Severity)
	// Escalation stops at the first failing count: 100, 500, 1000 and not 5000.
	assert.Len(t, fake.invoked, 3)
}

func TestGasLimitProbeStopsOnPlainRevert(t *testing.T) {
	fake := newFakeContext()
	fake.handlers["processAll"] = func(call harness.Call) (*harness.CallResult, error) {
		if gasIterationsArg(t, call) > 100 {
			return &harness.CallResult{Reverted: true, RevertReason: "too many items"}, nil
		}
		return &harness.CallResult{GasUsed: 90_000}, nil
	}

	cfg := &SuiteConfig{
		GasFunctions:  []string{"processAll"},
		GasIterations: []int64{100, 500, 1000, 5000},
		GasHighWater:  8_000_000,
	}
	rec := newRecorder(CategoryGasLimit, NopObserver{})

	err := GasLimitProbe{}.Run(context.Background(), fake, testTarget("processAll"), cfg, rec)
	require.NoError(t, err)
	assert.Empty(t, rec.Findings())
	assert.Len(t, fake.invoked, 2)
}
