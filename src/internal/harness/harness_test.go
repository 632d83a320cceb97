package harness

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vaultABI = `[
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

func TestNewTarget(t *testing.T) {
	target := NewTarget("Vault", common.HexToAddress("0xC0"), "deposit", "withdraw")

	assert.True(t, target.HasEntryPoint("deposit"))
	assert.True(t, target.HasEntryPoint("withdraw"))
	assert.False(t, target.HasEntryPoint("selfDestruct"))
	assert.Equal(t, []string{"deposit", "withdraw"}, target.EntryPoints())
}

func TestTargetFromABI(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(vaultABI))
	require.NoError(t, err)

	target := TargetFromABI("Vault", common.HexToAddress("0xC0"), parsed)

	assert.Equal(t, "Vault", target.Name)
	assert.Equal(t, []string{"deposit", "getPrice", "withdraw"}, target.EntryPoints())
	assert.True(t, target.HasEntryPoint("getPrice"))
}

func TestLoadArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Vault.json")
	content := `{"contractName":"Vault","abi":` + vaultABI + `,"bytecode":"0x6080604052"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parsed, code, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "deposit")
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, code)
}

func TestLoadArtifactBinField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Vault.json")
	content := `{"abi":` + vaultABI + `,"bin":"0x00"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, code, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)
}

func TestLoadArtifactErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing abi", content: `{"bytecode":"0x00"}`},
		{name: "missing bytecode", content: `{"abi":` + vaultABI + `}`},
		{name: "not json", content: `pragma solidity ^0.8.0;`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Vault.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, _, err := LoadArtifact(path)
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

type staticContext struct {
	identities []Identity
}

func (s staticContext) Identities() []Identity { return s.identities }
func (s staticContext) Invoke(context.Context, Call) (*CallResult, error) {
	return &CallResult{}, nil
}
func (s staticContext) Query(context.Context, *Target, string, ...any) (*big.Int, error) {
	return nil, nil
}
func (s staticContext) Balance(context.Context, *Target) (*big.Int, error) {
	return nil, nil
}

func TestIdentitySelection(t *testing.T) {
	h := staticContext{identities: []Identity{
		{Name: "owner", Privileged: true},
		{Name: "account1"},
		{Name: "account2"},
	}}

	owner, ok := Owner(h)
	require.True(t, ok)
	assert.Equal(t, "owner", owner.Name)

	attacker, ok := Unprivileged(h)
	require.True(t, ok)
	assert.Equal(t, "account1", attacker.Name)
}

func TestIdentitySelectionMissing(t *testing.T) {
	onlyOwner := staticContext{identities: []Identity{{Name: "owner", Privileged: true}}}
	_, ok := Unprivileged(onlyOwner)
	assert.False(t, ok)

	onlyUser := staticContext{identities: []Identity{{Name: "account1"}}}
	_, ok = Owner(onlyUser)
	assert.False(t, ok)
}
