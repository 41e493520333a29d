package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netsweep/netutil"
	"netsweep/output"
	"netsweep/target"
)

var pingCmd = &cobra.Command{
	Use:   "ping [target...]",
	Short: "Find reachable hosts with ICMP echo",
	Long: `Ping every address of the given targets and list the hosts that answer.
Without targets the local /24 is swept.

Examples:
  netsweep ping 192.168.1.0/24
  netsweep ping 10.0.0.1-40 gateway.lan -c 50 -t 2s -o hosts.csv`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		cidr, ok := netutil.GetNetworkRange()
		if !ok {
			return usageErrorf("no target given and the local network could not be determined")
		}
		a.log.Info("no target given, sweeping local network", zap.String("cidr", cidr))
		args = []string{cidr}
	}

	targets, rejected, truncated := target.ParseList(args)
	for _, r := range rejected {
		a.log.Warn("ignoring invalid target", zap.String("target", r))
	}
	for _, c := range truncated {
		a.log.Warn("block too large, sweeping only its first addresses",
			zap.String("cidr", c), zap.Int("limit", target.MaxExpand))
	}
	if len(targets) == 0 {
		return usageErrorf("no valid targets in %q", strings.Join(args, " "))
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	hosts, sweepErr := a.mgr.PingSweep(ctx, targets, output.Progress(os.Stderr, "ping"))
	output.PrintHosts(os.Stdout, hosts)

	r := newReport(output.KindPing, strings.Join(args, ","), start, len(targets))
	r.Hosts = hosts
	if err := a.finish(r); err != nil {
		return err
	}
	return sweepErr
}
