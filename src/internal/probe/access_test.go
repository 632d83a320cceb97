package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

func TestAccessControlProbe(t *testing.T) {
	tests := []struct {
		name         string
		reverted     bool
		wantFindings int
	}{
		{name: "bypass when unauthorized call succeeds", reverted: false, wantFindings: 1},
		{name: "protected when unauthorized call reverts", reverted: true, wantFindings: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeContext()
			fake.handlers["setOwner"] = func(call harness.Call) (*harness.CallResult, error) {
				return &harness.CallResult{Reverted: tt.reverted, RevertReason: "not owner"}, nil
			}

			cfg := &SuiteConfig{RestrictedFunctions: []string{"setOwner"}}
			rec := newRecorder(CategoryAccessControl, NopObserver{})

			err := AccessControlProbe{}.Run(context.Background(), fake, testTarget("setOwner"), cfg, rec)
			require.NoError(t, err)

			findings := rec.Findings()
			require.Len(t, findings, tt.wantFindings)
			if tt.wantFindings > 0 {
				assert.Equal(t, "ACCESS_CONTROL", findings[0].Type)
				assert.Equal(t, report.SeverityHigh, findings[0].Severity)
				assert.Equal(t, "access_control", findings[0].Source)
				assert.Contains(t, findings[0].Description, "setOwner")
			}
		})
	}
}

func TestAccessControlProbeCallerIsUnprivileged(t *testing.T) {
	fake := newFakeContext()
	var caller harness.Identity
	fake.handlers["setOwner"] = func(call harness.Call) (*harness.CallResult, error) {
		caller = call.Caller
		return &harness.CallResult{Reverted: true}, nil
	}

	cfg := &SuiteConfig{RestrictedFunctions: []string{"setOwner"}}
	rec := newRecorder(CategoryAccessControl, NopObserver{})

	err := AccessControlProbe{}.Run(context.Background(), fake, testTarget("setOwner"), cfg, rec)
	require.NoError(t, err)
	assert.False(t, caller.Privileged)
}

func TestAccessControlProbeSkipsUndeclaredEntryPoint(t *testing.T) {
	fake := newFakeContext()
	cfg := &SuiteConfig{RestrictedFunctions: []string{"selfDestruct"}}
	rec := newRecorder(CategoryAccessControl, NopObserver{})

	err := AccessControlProbe{}.Run(context.Background(), fake, testTarget("setOwner"), cfg, rec)
	require.NoError(t, err)
	assert.Empty(t, rec.Findings())
	assert.Empty(t, fake.invoked)
}
