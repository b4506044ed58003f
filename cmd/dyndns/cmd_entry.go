package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/dyndns"
	"gitlab.bluewillows.net/root/dyndns/pkg/resolver"
)

// withDriver builds the driver and runs fn under the configured timeout.
func (a *app) withDriver(cmd *cobra.Command, fn func(ctx context.Context, d dyndns.Driver) error) error {
	c, err := buildDriver(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if c.client != nil {
		defer c.client.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.Timeout)
	defer cancel()

	return fn(ctx, c.driver)
}

func newCmdCreate(a *app) *cobra.Command {
	var zone, rtype string

	cmd := &cobra.Command{
		Use:   "create NAME VALUE",
		Short: "Create or replace a record and its reverse pointer",
		Example: `  dyndns create foo 10.0.0.4 --zone bunyip.example.com
  dyndns create www foo.bunyip.example.com --zone bunyip.example.com --type CNAME`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := dnsupdate.ParseRecordType(rtype)
			if err != nil {
				return err
			}
			name, value := args[0], args[1]

			return a.withDriver(cmd, func(ctx context.Context, d dyndns.Driver) error {
				if err := d.CreateEntry(ctx, name, value, t, zone); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s %s\n", resolver.Qualify(name, zone), t, value)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&zone, "zone", "z", "", "Zone the record belongs to (required)")
	cmd.Flags().StringVarP(&rtype, "type", "t", "A", "Record type (A, AAAA, CNAME, PTR, TXT)")
	_ = cmd.MarkFlagRequired("zone")
	return cmd
}

func newCmdModify(a *app) *cobra.Command {
	var zone string

	cmd := &cobra.Command{
		Use:     "modify NAME ADDRESS",
		Short:   "Point an A record at a new address",
		Example: "  dyndns modify foo 10.0.0.5 --zone bunyip.example.com",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, address := args[0], args[1]

			return a.withDriver(cmd, func(ctx context.Context, d dyndns.Driver) error {
				if err := d.ModifyAddress(ctx, name, address, zone); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "modified %s A %s\n", resolver.Qualify(name, zone), address)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&zone, "zone", "z", "", "Zone the record belongs to (required)")
	_ = cmd.MarkFlagRequired("zone")
	return cmd
}

func newCmdDelete(a *app) *cobra.Command {
	var zone string

	cmd := &cobra.Command{
		Use:     "delete NAME",
		Short:   "Delete every record at a name and its reverse pointers",
		Example: "  dyndns delete foo --zone bunyip.example.com",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return a.withDriver(cmd, func(ctx context.Context, d dyndns.Driver) error {
				if err := d.DeleteEntry(ctx, name, zone); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", resolver.Qualify(name, zone))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&zone, "zone", "z", "", "Zone the record belongs to (required)")
	_ = cmd.MarkFlagRequired("zone")
	return cmd
}
