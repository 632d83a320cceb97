package harness

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Identity is one account the harness can issue calls from. Every harness
// exposes at least one privileged owner identity and one unprivileged one.
type Identity struct {
	Name       string
	Address    common.Address
	Privileged bool
}

// Target describes the program under test: its address and the explicit set
// of invocable entry points. Probes consult this descriptor before dispatch
// instead of discovering entry points at call time.
type Target struct {
	Name    string
	Address common.Address
	ABI     abi.ABI

	entryPoints map[string]struct{}
}

// NewTarget builds a target descriptor from an explicit entry-point list.
func NewTarget(name string, address common.Address, entryPoints ...string) *Target {
	set := make(map[string]struct{}, len(entryPoints))
	for _, ep := range entryPoints {
		set[ep] = struct{}{}
	}
	return &Target{
		Name:        name,
		Address:     address,
		entryPoints: set,
	}
}

// TargetFromABI builds a target descriptor with the entry points derived from
// a parsed contract ABI.
func TargetFromABI(name string, address common.Address, parsed abi.ABI) *Target {
	names := make([]string, 0, len(parsed.Methods))
	for method := range parsed.Methods {
		names = append(names, method)
	}
	t := NewTarget(name, address, names...)
	t.ABI = parsed
	return t
}

// HasEntryPoint reports whether the target declares the named entry point.
func (t *Target) HasEntryPoint(name string) bool {
	_, ok := t.entryPoints[name]
	return ok
}

// EntryPoints returns the declared entry points in sorted order.
func (t *Target) EntryPoints() []string {
	names := make([]string, 0, len(t.entryPoints))
	for name := range t.entryPoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call is one invocation of a target entry point.
type Call struct {
	Target     *Target
	EntryPoint string
	Args       []any
	Caller     Identity
	// Value is the native currency attached to the call, in wei. Nil means zero.
	Value *big.Int
	// Priority raises the call's fee relative to the harness default. Zero is
	// the default fee; each step above zero bids higher.
	Priority int
}

// Event is one event emitted by the target during a call.
type Event struct {
	Name string
}

// CallResult is the structured outcome of an invocation. A revert is data,
// not an error: probes branch on Reverted instead of catching exceptions.
type CallResult struct {
	Reverted     bool
	RevertReason string
	OutOfGas     bool
	GasUsed      uint64
	Events       []Event
}

// ExecutionContext is the capability surface probes use to drive and observe
// a target. Invoke returns an error only for infrastructure or encoding
// failures; a reverted call is reported through the CallResult.
type ExecutionContext interface {
	// Identities returns the available caller identities.
	Identities() []Identity
	// Invoke issues a state-mutating call and reports its structured outcome.
	Invoke(ctx context.Context, call Call) (*CallResult, error)
	// Query performs a read-only call and returns its first numeric output.
	Query(ctx context.Context, target *Target, entryPoint string, args ...any) (*big.Int, error)
	// Balance returns the target's native currency balance in wei.
	Balance(ctx context.Context, target *Target) (*big.Int, error)
}

// Snapshotter is an optional capability: harnesses that can capture and
// restore target state implement it, and the suite uses it to isolate
// one probe's side effects from the next.
type Snapshotter interface {
	Snapshot() (string, error)
	Revert(id string) error
}

// Unprivileged returns the first non-privileged identity of the context.
func Unprivileged(h ExecutionContext) (Identity, bool) {
	for _, id := range h.Identities() {
		if !id.Privileged {
			return id, true
		}
	}
	return Identity{}, false
}

// Owner returns the first privileged identity of the context.
func Owner(h ExecutionContext) (Identity, bool) {
	for _, id := range h.Identities() {
		if id.Privileged {
			return id, true
		}
	}
	return Identity{}, false
}
