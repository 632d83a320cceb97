package probe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
)

// fakeContext is an in-memory ExecutionContext for probe tests. Entry-point
// behavior is scripted per test through handlers; it also implements
// Snapshotter so the suite's isolation path is exercised.
type fakeContext struct {
	identities []harness.Identity
	balances   map[common.Address]*big.Int
	handlers   map[string]func(call harness.Call) (*harness.CallResult, error)
	queries    map[string]func() (*big.Int, error)
	invoked    []string

	snapshots map[string]map[common.Address]*big.Int
	snapSeq   int
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		identities: []harness.Identity{
			{Name: "owner", Address: common.HexToAddress("0xA0"), Privileged: true},
			{Name: "account1", Address: common.HexToAddress("0xA1")},
		},
		balances:  make(map[common.Address]*big.Int),
		handlers:  make(map[string]func(call harness.Call) (*harness.CallResult, error)),
		queries:   make(map[string]func() (*big.Int, error)),
		snapshots: make(map[string]map[common.Address]*big.Int),
	}
}

func (f *fakeContext) Identities() []harness.Identity {
	return f.identities
}

func (f *fakeContext) Invoke(_ context.Context, call harness.Call) (*harness.CallResult, error) {
	f.invoked = append(f.invoked, call.EntryPoint)
	if handler, ok := f.handlers[call.EntryPoint]; ok {
		return handler(call)
	}
	return &harness.CallResult{GasUsed: 21000}, nil
}

func (f *fakeContext) Query(_ context.Context, _ *harness.Target, entryPoint string, _ ...any) (*big.Int, error) {
	if handler, ok := f.queries[entryPoint]; ok {
		return handler()
	}
	return nil, fmt.Errorf("no query handler for %s", entryPoint)
}

func (f *fakeContext) Balance(_ context.Context, target *harness.Target) (*big.Int, error) {
	if balance, ok := f.balances[target.Address]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (f *fakeContext) Snapshot() (string, error) {
	f.snapSeq++
	id := fmt.Sprintf("snap-%d", f.snapSeq)
	copied := make(map[common.Address]*big.Int, len(f.balances))
	for addr, balance := range f.balances {
		copied[addr] = new(big.Int).Set(balance)
	}
	f.snapshots[id] = copied
	return id, nil
}

func (f *fakeContext) Revert(id string) error {
	saved, ok := f.snapshots[id]
	if !ok {
		return fmt.Errorf("unknown snapshot %s", id)
	}
	restored := make(map[common.Address]*big.Int, len(saved))
	for addr, balance := range saved {
		restored[addr] = new(big.Int).Set(balance)
	}
	f.balances = restored
	return nil
}

var testTargetAddr = common.HexToAddress("0xC0")

func testTarget(entryPoints ...string) *harness.Target {
	return harness.NewTarget("Vault", testTargetAddr, entryPoints...)
}

// recordingObserver captures every run event for assertions.
type recordingObserver struct {
	events []Event
}

func (o *recordingObserver) Handle(event Event) {
	o.events = append(o.events, event)
}

func (o *recordingObserver) byType(eventType string) []Event {
	var out []Event
	for _, e := range o.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
