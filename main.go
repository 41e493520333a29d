package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Exit codes: 2 usage, 4 runtime failure.
const (
	exitUsage   = 2
	exitRuntime = 4
)

var flags struct {
	config    string
	verbose   bool
	workers   int
	timeout   time.Duration
	rate      float64
	output    string
	format    string
	db        string
	dnsServer string
}

var rootCmd = &cobra.Command{
	Use:   "netsweep",
	Short: "Concurrent host and port discovery for authorized assessments",
	Long: `netsweep finds live hosts and open TCP services on a network segment.

Targets may be IP addresses, host names, CIDR blocks (192.168.1.0/24)
or last-octet ranges (192.168.1.10-50). Only scan networks you are
authorized to test.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// usageError marks errors caused by bad invocation rather than scanning.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "YAML config file (created with defaults if missing)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	pf.IntVarP(&flags.workers, "workers", "c", 10, "concurrent probes")
	pf.DurationVarP(&flags.timeout, "timeout", "t", 5*time.Second, "per-probe timeout")
	pf.Float64Var(&flags.rate, "rate", 0, "max probe starts per second (0 = unlimited)")
	pf.StringVarP(&flags.output, "output", "o", "", "export results to file (.json or .csv)")
	pf.StringVar(&flags.format, "format", "", "export format when -o has no known extension (json|csv)")
	pf.StringVar(&flags.db, "db", "", "append results to a SQLite database")
	pf.StringVar(&flags.dnsServer, "dns", "", "DNS server for lookups (default: system resolver)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(exitUsage)
		}
		os.Exit(exitRuntime)
	}
}
