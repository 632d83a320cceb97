package probe

import (
	"fmt"

	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// Run event types.
const (
	EventSuiteStarted         = "suite_started"
	EventSuiteCompleted       = "suite_completed"
	EventProbeStarted         = "probe_started"
	EventProbeCompleted       = "probe_completed"
	EventProbeFailed          = "probe_failed"
	EventFindingDetected      = "finding_detected"
	EventSnapshotRevertFailed = "snapshot_revert_failed"
)

// Event is one structured progress notification of a suite run.
type Event struct {
	Type     string
	Category Category
	Finding  *report.Finding
	Findings int
	Err      string
}

// Observer receives run events. The console observer is one consumer; tests
// plug in their own.
type Observer interface {
	Handle(event Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Handle(Event) {}

// ConsoleObserver prints run progress to stdout.
type ConsoleObserver struct {
	Verbose bool
}

// Handle renders one event on the console.
func (o *ConsoleObserver) Handle(event Event) {
	switch event.Type {
	case EventSuiteStarted:
		fmt.Println("🔍 Running comprehensive security tests...")
	case EventProbeStarted:
		fmt.Printf("\n📋 Running %s tests...\n", event.Category)
	case EventFindingDetected:
		if event.Finding != nil {
			fmt.Printf("  ⚠️  %s: %s\n", event.Finding.Severity, event.Finding.Description)
		}
	case EventProbeCompleted:
		if event.Findings == 0 {
			fmt.Println("  ✅ No vulnerabilities found")
		} else {
			fmt.Printf("  🚨 %d vulnerability(ies) found\n", event.Findings)
		}
	case EventProbeFailed:
		fmt.Printf("  ❌ %s tests failed: %s\n", event.Category, event.Err)
	case EventSnapshotRevertFailed:
		fmt.Printf("  ⚠️  state restore after %s failed: %s\n", event.Category, event.Err)
	case EventSuiteCompleted:
		if o.Verbose {
			fmt.Println("\n✅ Probe suite finished")
		}
	}
}
