package harness

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
)

// Per-call gas ceiling. Matches the gas probe's high-water mark so a call
// that would exceed it fails out-of-gas instead of consuming a whole block.
const callGasLimit = 8_000_000

// Funding per generated identity, in ether.
const identityFunding = 1000

// EVMHarness is the go-ethereum implementation of ExecutionContext. It runs
// an in-process simulated chain with a set of funded dev identities and mines
// one block per invocation.
type EVMHarness struct {
	backend    *simulated.Backend
	client     simulated.Client
	chainID    *big.Int
	signer     types.Signer
	identities []Identity
	keys       map[common.Address]*ecdsa.PrivateKey
}

// NewEVMHarness boots a simulated chain with n funded identities. The first
// identity is the privileged owner.
func NewEVMHarness(n int) (*EVMHarness, error) {
	if n < 2 {
		return nil, fmt.Errorf("NewEVMHarness: need at least 2 identities, got %d", n)
	}

	fund := new(big.Int).Mul(big.NewInt(identityFunding), big.NewInt(params.Ether))
	alloc := make(types.GenesisAlloc, n)
	identities := make([]Identity, 0, n)
	keys := make(map[common.Address]*ecdsa.PrivateKey, n)

	for i := 0; i < n; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("NewEVMHarness: generate key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		alloc[addr] = types.Account{Balance: new(big.Int).Set(fund)}
		keys[addr] = key

		identity := Identity{Address: addr}
		if i == 0 {
			identity.Name = "owner"
			identity.Privileged = true
		} else {
			identity.Name = fmt.Sprintf("account%d", i)
		}
		identities = append(identities, identity)
	}

	backend := simulated.NewBackend(alloc)
	client := backend.Client()

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("NewEVMHarness: chain id: %w", err)
	}

	return &EVMHarness{
		backend:    backend,
		client:     client,
		chainID:    chainID,
		signer:     types.LatestSignerForChainID(chainID),
		identities: identities,
		keys:       keys,
	}, nil
}

// Close shuts down the simulated chain.
func (h *EVMHarness) Close() error {
	return h.backend.Close()
}

// Identities returns the funded dev identities.
func (h *EVMHarness) Identities() []Identity {
	out := make([]Identity, len(h.identities))
	copy(out, h.identities)
	return out
}

// artifact is the on-disk shape of a compiled contract.
type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
	Bin          string          `json:"bin"`
}

// LoadArtifact parses a compiled-contract JSON file into its ABI and
// deployment bytecode.
func LoadArtifact(path string) (abi.ABI, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: parse %s: %w", path, err)
	}
	if len(art.ABI) == 0 {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: %s has no abi", path)
	}

	parsed, err := abi.JSON(strings.NewReader(string(art.ABI)))
	if err != nil {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: parse abi: %w", err)
	}

	hexCode := art.Bytecode
	if hexCode == "" {
		hexCode = art.Bin
	}
	if hexCode == "" {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: %s has no bytecode", path)
	}
	code := common.FromHex(hexCode)
	if len(code) == 0 {
		return abi.ABI{}, nil, fmt.Errorf("LoadArtifact: %s bytecode is not hex", path)
	}

	return parsed, code, nil
}

// DeployArtifact deploys a compiled contract from the owner identity and
// returns its target descriptor. value funds the contract at creation.
func (h *EVMHarness) DeployArtifact(ctx context.Context, name, path string, value *big.Int, args ...any) (*Target, error) {
	parsed, code, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 || len(parsed.Constructor.Inputs) > 0 {
		ctorArgs, err := parsed.Pack("", args...)
		if err != nil {
			return nil, fmt.Errorf("DeployArtifact: pack constructor: %w", err)
		}
		code = append(code, ctorArgs...)
	}

	owner := h.identities[0]
	receipt, err := h.send(ctx, owner, nil, code, value, 0)
	if err != nil {
		return nil, fmt.Errorf("DeployArtifact: %w", err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("DeployArtifact: creation of %s reverted", name)
	}

	return TargetFromABI(name, receipt.ContractAddress, parsed), nil
}

// Invoke issues one transaction against the target, mines it, and reports
// the structured outcome. Reverts come back as data; only encoding and
// transport problems are errors.
func (h *EVMHarness) Invoke(ctx context.Context, call Call) (*CallResult, error) {
	if call.Target == nil {
		return nil, fmt.Errorf("Invoke: nil target")
	}
	if !call.Target.HasEntryPoint(call.EntryPoint) {
		return nil, fmt.Errorf("Invoke: target %s has no entry point %q", call.Target.Name, call.EntryPoint)
	}

	data, err := call.Target.ABI.Pack(call.EntryPoint, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("Invoke: pack %s: %w", call.EntryPoint, err)
	}

	to := call.Target.Address
	receipt, err := h.send(ctx, call.Caller, &to, data, call.Value, call.Priority)
	if err != nil {
		return nil, fmt.Errorf("Invoke: %s: %w", call.EntryPoint, err)
	}

	result := &CallResult{GasUsed: receipt.GasUsed}
	if receipt.Status == types.ReceiptStatusFailed {
		result.Reverted = true
		result.RevertReason, result.OutOfGas = h.failureDetail(ctx, call, data, receipt)
		if receipt.GasUsed >= callGasLimit {
			result.OutOfGas = true
		}
		return result, nil
	}

	for _, log := range receipt.Logs {
		if len(log.Topics) == 0 {
			continue
		}
		if ev, err := call.Target.ABI.EventByID(log.Topics[0]); err == nil {
			result.Events = append(result.Events, Event{Name: ev.Name})
		}
	}
	return result, nil
}

// Query performs a read-only call and unpacks the first output as a big.Int.
func (h *EVMHarness) Query(ctx context.Context, target *Target, entryPoint string, args ...any) (*big.Int, error) {
	if !target.HasEntryPoint(entryPoint) {
		return nil, fmt.Errorf("Query: target %s has no entry point %q", target.Name, entryPoint)
	}

	data, err := target.ABI.Pack(entryPoint, args...)
	if err != nil {
		return nil, fmt.Errorf("Query: pack %s: %w", entryPoint, err)
	}

	msg := ethereum.CallMsg{
		From: h.identities[0].Address,
		To:   &target.Address,
		Data: data,
	}
	out, err := h.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("Query: %s: %w", entryPoint, err)
	}

	values, err := target.ABI.Unpack(entryPoint, out)
	if err != nil {
		return nil, fmt.Errorf("Query: unpack %s: %w", entryPoint, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("Query: %s returned no values", entryPoint)
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("Query: %s output is %T, not a numeric value", entryPoint, values[0])
	}
	return value, nil
}

// Balance returns the target's wei balance.
func (h *EVMHarness) Balance(ctx context.Context, target *Target) (*big.Int, error) {
	balance, err := h.client.BalanceAt(ctx, target.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("Balance: %w", err)
	}
	return balance, nil
}

// send signs, submits, and mines one transaction, returning its receipt.
func (h *EVMHarness) send(ctx context.Context, caller Identity, to *common.Address, data []byte, value *big.Int, priority int) (*types.Receipt, error) {
	key, ok := h.keys[caller.Address]
	if !ok {
		return nil, fmt.Errorf("unknown caller identity %s", caller.Name)
	}

	nonce, err := h.client.PendingNonceAt(ctx, caller.Address)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	gasPrice, err := h.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	for i := 0; i < priority; i++ {
		gasPrice = new(big.Int).Mul(gasPrice, big.NewInt(2))
	}

	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      callGasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, h.signer, key)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	if err := h.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	h.backend.Commit()

	receipt, err := h.client.TransactionReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	return receipt, nil
}

// failureDetail replays a failed transaction as an eth_call to recover the
// revert reason and classify out-of-gas failures.
func (h *EVMHarness) failureDetail(ctx context.Context, call Call, data []byte, receipt *types.Receipt) (reason string, outOfGas bool) {
	msg := ethereum.CallMsg{
		From:  call.Caller.Address,
		To:    &call.Target.Address,
		Gas:   callGasLimit,
		Value: call.Value,
		Data:  data,
	}
	_, err := h.client.CallContract(ctx, msg, receipt.BlockNumber)
	if err == nil {
		return "", false
	}

	reason = strings.TrimPrefix(err.Error(), "execution reverted: ")
	outOfGas = strings.Contains(strings.ToLower(err.Error()), "out of gas")
	return reason, outOfGas
}
