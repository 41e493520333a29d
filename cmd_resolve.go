package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netsweep/target"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name|ip>...",
	Short: "Forward or reverse DNS lookups",
	Long: `Resolve host names to addresses and addresses to PTR names.
Use --dns to query a specific server instead of the system resolver.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return usageErrorf("resolve needs at least one name or address")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		failed := 0
		for _, arg := range args {
			var (
				res string
				ok  bool
			)
			if target.IsValidIP(arg) {
				res, ok = a.resolver.ReverseDNS(ctx, arg)
			} else {
				res, ok = a.resolver.ResolveHostname(ctx, arg)
			}
			if !ok {
				failed++
				res = "(no result)"
			}
			fmt.Printf("%s -> %s\n", arg, res)
		}
		if failed == len(args) {
			return fmt.Errorf("no lookup succeeded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
