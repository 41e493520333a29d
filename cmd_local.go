package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"netsweep/netutil"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Show the local address and the /24 a bare ping would sweep",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		ip, ok := netutil.GetLocalIP()
		if !ok {
			return errors.New("no outbound IPv4 route; local address unknown")
		}
		cidr, _ := netutil.NetworkRangeFor(ip)
		fmt.Printf("Local IP: %s\n", ip)
		fmt.Printf("Network:  %s\n", cidr)
		if name, ok := a.resolver.ReverseDNS(context.Background(), ip); ok {
			fmt.Printf("Hostname: %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localCmd)
}
