package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CLIConfig
		wantErr string
	}{
		{
			name:    "missing artifact",
			cfg:     CLIConfig{SuitePath: "suite.yaml"},
			wantErr: "-artifact is required",
		},
		{
			name:    "missing suite",
			cfg:     CLIConfig{ArtifactPath: "Vault.json"},
			wantErr: "-suite is required",
		},
		{
			name: "slither flags are exclusive",
			cfg: CLIConfig{
				ArtifactPath:  "Vault.json",
				SuitePath:     "suite.yaml",
				SlitherTarget: "contracts/",
				SlitherReport: "slither.json",
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "minimal valid",
			cfg:  CLIConfig{ArtifactPath: "Vault.json", SuitePath: "suite.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateDefaultsNetwork(t *testing.T) {
	cfg := CLIConfig{ArtifactPath: "Vault.json", SuitePath: "suite.yaml"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "development", cfg.Network)

	cfg = CLIConfig{ArtifactPath: "Vault.json", SuitePath: "suite.yaml", Network: "sepolia"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sepolia", cfg.Network)
}

func TestValidateAccountsFloor(t *testing.T) {
	cfg := CLIConfig{ArtifactPath: "Vault.json", SuitePath: "suite.yaml", Accounts: 1}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.Accounts)

	cfg = CLIConfig{ArtifactPath: "Vault.json", SuitePath: "suite.yaml", Accounts: 6}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 6, cfg.Accounts)
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "Vault", targetName("build/contracts/Vault.json"))
	assert.Equal(t, "Vault", targetName("Vault.json"))
	assert.Equal(t, "Vault", targetName("Vault"))
}
