package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
)

func newCmdLookup(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve names and addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCmdLookupName(a), newCmdLookupAddress(a))
	return cmd
}

func newCmdLookupName(a *app) *cobra.Command {
	var zone string

	cmd := &cobra.Command{
		Use:   "name NAME",
		Short: "List the addresses a name resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDriver(cmd, func(ctx context.Context, d dyndns.Driver) error {
				addrs, err := d.GetEntriesByName(ctx, args[0], zone)
				if err != nil {
					return err
				}
				for _, addr := range addrs {
					fmt.Fprintln(cmd.OutOrStdout(), addr)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&zone, "zone", "z", "", "Zone to qualify NAME with")
	return cmd
}

func newCmdLookupAddress(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address ADDRESS",
		Short: "List the names an address points back to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDriver(cmd, func(ctx context.Context, d dyndns.Driver) error {
				names, err := d.GetEntriesByAddress(ctx, args[0], "")
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newCmdDomains(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the zones this client may modify",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDriver(cmd, func(_ context.Context, d dyndns.Driver) error {
				zones, err := d.GetDomains()
				if err != nil {
					return err
				}
				for _, zone := range zones {
					fmt.Fprintln(cmd.OutOrStdout(), zone)
				}
				return nil
			})
		},
	}
}
