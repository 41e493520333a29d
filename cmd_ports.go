package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netsweep/output"
	"netsweep/port"
)

var portsFlags struct {
	spec          string
	noBanner      bool
	bannerTimeout time.Duration
}

var portsCmd = &cobra.Command{
	Use:   "ports <host>",
	Short: "Find open TCP ports on one host",
	Long: `TCP-connect every requested port of host, list the open ones with their
well-known service name and, unless disabled, the first bytes each
service sends.

Examples:
  netsweep ports 192.168.1.10
  netsweep ports scanme.lan -p 1-1024 -c 100 -t 1s --no-banner`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usageErrorf("ports takes exactly one host, got %d", len(args))
		}
		return nil
	},
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	f := portsCmd.Flags()
	f.StringVarP(&portsFlags.spec, "ports", "p", "", `ports to scan, e.g. "22,80,8000-8100" or "common" (default from config)`)
	f.BoolVar(&portsFlags.noBanner, "no-banner", false, "skip banner grabbing on open ports")
	f.DurationVar(&portsFlags.bannerTimeout, "banner-timeout", 3*time.Second, "banner read timeout")
}

func runPorts(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	spec := portsFlags.spec
	if spec == "" {
		spec = a.cfg.Scan.Ports
	}
	ports, err := port.ParsePortSpec(spec)
	if err != nil {
		return usageErrorf("invalid ports spec: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	host := args[0]
	ip, ok := a.resolver.ResolveHostname(ctx, host)
	if !ok {
		return fmt.Errorf("failed to resolve target %q", host)
	}
	if ip != host {
		a.log.Info("resolved target", zap.String("host", host), zap.String("ip", ip))
	}

	start := time.Now()
	open, sweepErr := a.mgr.PortSweep(ctx, ip, ports, output.Progress(os.Stderr, "ports"))
	output.PrintPorts(os.Stdout, host, open)

	r := newReport(output.KindPorts, host, start, len(ports))
	r.Ports = open
	if err := a.finish(r); err != nil {
		return err
	}
	return sweepErr
}
