package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CLIConfig holds the parsed CLI options plus the normalized fields the
// scanner consumes.
type CLIConfig struct {
	ArtifactPath  string // compiled contract artifact (ABI + bytecode JSON)
	SuitePath     string // per-category probe configuration YAML
	Network       string // label recorded in the report, e.g. development
	OutputDir     string // where both report artifacts are written
	SlitherTarget string // contracts directory to run slither against
	SlitherReport string // pre-existing slither JSON, consumed instead of running the tool
	SlitherWait   time.Duration
	HistoryDB     bool // record the run in the scan-history database
	SettingsPath  string
	Accounts      int
	Verbose       bool
}

// Validate checks required and consistent inputs.
func (c *CLIConfig) Validate() error {
	if c.ArtifactPath == "" {
		return errors.New("-artifact is required (compiled contract JSON with abi and bytecode)")
	}
	if c.SuitePath == "" {
		return errors.New("-suite is required (probe suite YAML)")
	}
	if c.SlitherTarget != "" && c.SlitherReport != "" {
		return errors.New("-slither and -slither-report are mutually exclusive")
	}
	if c.Network == "" {
		c.Network = "development"
	}
	if c.Accounts < 2 {
		c.Accounts = 0 // fall back to settings/default
	}
	return nil
}

// showHelp prints help for a topic.
func showHelp(topic string) {
	switch topic {
	case "artifact":
		showArtifactHelp()
	case "suite":
		showSuiteHelp()
	case "slither":
		showSlitherHelp()
	case "db":
		showDBHelp()
	default:
		showGeneralHelp()
	}
}

// showGeneralHelp prints the general usage.
func showGeneralHelp() {
	fmt.Println("🔍 solidity-Sentinel - smart contract vulnerability probe suite")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sentinel -artifact <file> -suite <file> [options]")
	fmt.Println()
	fmt.Println("Main options:")
	fmt.Println("  -artifact <file>        compiled contract artifact to deploy and probe")
	fmt.Println("  -suite <file>           probe suite configuration YAML")
	fmt.Println("  -c <network>            network label for the report (default development)")
	fmt.Println("  -out <dir>              reports output directory")
	fmt.Println("  -slither <dir>          run slither against a contracts directory")
	fmt.Println("  -slither-report <file>  merge an existing slither JSON report")
	fmt.Println("  -db                     record the run in the scan-history database")
	fmt.Println("  -v                      verbose output")
	fmt.Println()
	fmt.Println("Topic help:")
	fmt.Println("  sentinel -artifact --help")
	fmt.Println("  sentinel -suite --help")
	fmt.Println("  sentinel -slither --help")
	fmt.Println("  sentinel -db --help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sentinel -artifact build/Vault.json -suite suite.yaml")
	fmt.Println("  sentinel -artifact build/Vault.json -suite suite.yaml -slither contracts/ -db")
}

// showArtifactHelp prints help for the artifact input.
func showArtifactHelp() {
	fmt.Println("📦 Contract artifact (-artifact)")
	fmt.Println()
	fmt.Println("A JSON file produced by the contract compiler, holding at least:")
	fmt.Println(`  {"abi": [...], "bytecode": "0x..."}`)
	fmt.Println()
	fmt.Println("The artifact is deployed onto an in-process simulated chain with")
	fmt.Println("funded owner and attacker identities, and every probe runs against")
	fmt.Println("the deployed instance.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sentinel -artifact build/contracts/Vault.json -suite suite.yaml")
}

// showSuiteHelp prints help for the probe suite configuration.
func showSuiteHelp() {
	fmt.Println("📋 Probe suite configuration (-suite)")
	fmt.Println()
	fmt.Println("YAML mapping probe categories to entry-point names. A category with")
	fmt.Println("no entry points configured is skipped entirely.")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  reentrancy_functions, overflow_functions, restricted_functions,")
	fmt.Println("  gas_functions, front_running_functions, oracle_functions,")
	fmt.Println("  swap_functions, flash_loan_functions")
	fmt.Println()
	fmt.Println("Scalars:")
	fmt.Println("  amount (wei, default 1000), gas_iterations (default 100,500,1000,5000),")
	fmt.Println("  gas_high_water (default 8000000)")
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  restricted_functions: [setOwner, withdrawAll]")
	fmt.Println("  reentrancy_functions: [deposit]")
}

// showSlitherHelp prints help for the static-analysis merge.
func showSlitherHelp() {
	fmt.Println("🔬 Static analysis (-slither, -slither-report)")
	fmt.Println()
	fmt.Println("  -slither <dir>          run the slither binary against the directory,")
	fmt.Println("                          bounded by a timeout (default 120s)")
	fmt.Println("  -slither-report <file>  consume an existing slither JSON report instead")
	fmt.Println("  -slither-timeout <d>    override the analyzer timeout, e.g. 90s")
	fmt.Println()
	fmt.Println("Slither being missing, failing, or timing out never aborts the run:")
	fmt.Println("the report is built with zero external findings.")
}

// showDBHelp prints help for the history database.
func showDBHelp() {
	fmt.Println("🗄️  Scan history (-db)")
	fmt.Println()
	fmt.Println("Records one row per run (totals per severity, risk level, artifact")
	fmt.Println("paths). The DSN comes from SENTINEL_DATABASE_DSN or the settings file;")
	fmt.Println("a postgres:// DSN uses the pgx driver, anything else MySQL.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  SENTINEL_DATABASE_DSN='root:pw@tcp(localhost:3306)/sentinel' sentinel ... -db")
	fmt.Println("  SENTINEL_DATABASE_DSN='postgres://user:pw@localhost/sentinel' sentinel ... -db")
}

// ParseFlags parses os.Args and returns a CLIConfig or an error.
func ParseFlags() (*CLIConfig, error) {
	if len(os.Args) > 1 {
		// Topic help requests, e.g. -artifact --help.
		for i := 1; i < len(os.Args)-1; i++ {
			if os.Args[i+1] == "--help" || os.Args[i+1] == "-h" {
				topic := strings.TrimLeft(os.Args[i], "-")
				showHelp(topic)
				os.Exit(0)
			}
		}
		for _, arg := range os.Args[1:] {
			if arg == "--help" || arg == "-h" {
				showGeneralHelp()
				os.Exit(0)
			}
		}
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.Usage = func() {
		showGeneralHelp()
	}

	artifact := fs.String("artifact", "", "Compiled contract artifact JSON (abi + bytecode)")
	suite := fs.String("suite", "", "Probe suite configuration YAML")
	network := fs.String("c", "development", "Network label recorded in the report")
	out := fs.String("out", "", "Reports output directory (default from settings, else ./reports)")
	slitherDir := fs.String("slither", "", "Contracts directory to analyze with slither")
	slitherReport := fs.String("slither-report", "", "Existing slither JSON report to merge")
	slitherWait := fs.Duration("slither-timeout", 0, "Slither timeout (default 120s)")
	db := fs.Bool("db", false, "Record the run in the scan-history database")
	settings := fs.String("settings", "", "Settings file path (default src/config/settings.yaml)")
	accounts := fs.Int("accounts", 0, "Number of funded harness identities (default 4)")
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{
		ArtifactPath:  strings.TrimSpace(*artifact),
		SuitePath:     strings.TrimSpace(*suite),
		Network:       strings.TrimSpace(*network),
		OutputDir:     strings.TrimSpace(*out),
		SlitherTarget: strings.TrimSpace(*slitherDir),
		SlitherReport: strings.TrimSpace(*slitherReport),
		SlitherWait:   *slitherWait,
		HistoryDB:     *db,
		SettingsPath:  strings.TrimSpace(*settings),
		Accounts:      *accounts,
		Verbose:       *verbose,
	}

	for _, path := range []*string{&cfg.ArtifactPath, &cfg.SuitePath, &cfg.SlitherReport} {
		if *path != "" && !filepath.IsAbs(*path) {
			cwd, _ := os.Getwd()
			*path = filepath.Join(cwd, *path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Run parses flags and dispatches to the executor.
func Run() error {
	cfg, err := ParseFlags()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return Execute(cfg)
}

// PrintFatal prints the error to stderr and exits non-zero.
func PrintFatal(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
