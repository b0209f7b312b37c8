package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHeartbeatCmd(opts *globalOptions) *cobra.Command {
	var (
		version string
		every   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "heartbeat [name]",
		Short: "Report that a client is alive",
		Long: `Send a heartbeat. Without an argument the username from the config file is used.

With --every the command keeps sending heartbeats at that interval until
interrupted. Failed sends are reported and retried on the next tick.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := opts.client()
			if err != nil {
				return err
			}

			name := cfg.Username
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return fmt.Errorf("name required: pass it as an argument or run 'licenzectl config set username <name>'")
			}
			if !cmd.Flags().Changed("version") {
				version = cfg.Version
			}

			send := func(ctx context.Context) error {
				ack, err := c.SendHeartbeat(ctx, name, version)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), ack)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s heartbeat sent for %s\n", time.Now().Format(time.TimeOnly), ack.Name)
				return nil
			}

			if every <= 0 {
				return send(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := send(ctx); err != nil && ctx.Err() == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "heartbeat failed: %v\n", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "client version to report")
	cmd.Flags().DurationVar(&every, "every", 0, "keep sending at this interval (e.g. 30s)")

	return cmd
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent heartbeats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}

			events, err := c.History(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), events)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tUSERNAME\tVERSION\tSTATUS")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp, e.Username, e.Version, e.Status)
			}
			return tw.Flush()
		},
	}
}

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := opts.client()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			result, err := c.Health(ctx)
			if err != nil {
				return fmt.Errorf("server %s unreachable: %w", cfg.ServerURLOrDefault(), err)
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", cfg.ServerURLOrDefault(), result["status"], result["timestamp"])
			return nil
		},
	}
}
