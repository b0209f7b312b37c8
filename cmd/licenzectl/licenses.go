package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/MacJediWizard/licenze/internal/client"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [username]",
		Short: "Check whether a user holds a valid license",
		Long:  "Check a license. Without an argument the username from the config file is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := opts.client()
			if err != nil {
				return err
			}

			username := cfg.Username
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				return fmt.Errorf("username required: pass it as an argument or run 'licenzectl config set username <name>'")
			}

			result, err := c.Check(cmd.Context(), username)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			if !result.Valid {
				if result.Reason != "" {
					fmt.Fprintf(out, "%s: INVALID (%s)\n", result.Username, result.Reason)
				} else {
					fmt.Fprintf(out, "%s: INVALID\n", result.Username)
				}
				return nil
			}
			role := "-"
			if result.Role != nil {
				role = *result.Role
			}
			fmt.Fprintf(out, "%s: VALID (role: %s, expires: %s)\n", result.Username, role, displayExpires(result.Expires))
			return nil
		},
	}
}

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all licenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}

			licenses, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), licenses)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tVALID\tROLE\tEXPIRES\tNOTES")
			for _, lic := range licenses {
				role := "-"
				if lic.Role != nil {
					role = *lic.Role
				}
				fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\n", lic.Username, lic.Valid, role, displayExpires(lic.Expires), lic.Notes)
			}
			return tw.Flush()
		},
	}
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	var (
		invalid bool
		role    string
		expires string
		notes   string
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}

			req := models.CreateLicenseRequest{
				Username: args[0],
				Expires:  expires,
				Notes:    notes,
			}
			if invalid {
				valid := false
				req.Valid = &valid
			}
			if role != "" {
				req.Role = &role
			}

			result, err := c.Add(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printChange(cmd, opts, result)
		},
	}

	cmd.Flags().BoolVar(&invalid, "invalid", false, "create the license disabled")
	cmd.Flags().StringVar(&role, "role", "", "role granted by the license")
	cmd.Flags().StringVar(&expires, "expires", "", `expiry date (YYYY-MM-DD, RFC3339 or "Never")`)
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")

	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		valid     bool
		role      string
		clearRole bool
		expires   string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Change fields of an existing license",
		Long:  "Only the flags given are sent; other fields keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}

			u := client.LicenseUpdate{Username: args[0], ClearRole: clearRole}
			flags := cmd.Flags()
			if flags.Changed("valid") {
				u.Valid = &valid
			}
			if flags.Changed("role") {
				u.Role = &role
			}
			if flags.Changed("expires") {
				u.Expires = &expires
			}
			if flags.Changed("notes") {
				u.Notes = &notes
			}

			result, err := c.Update(cmd.Context(), u)
			if err != nil {
				return err
			}
			return printChange(cmd, opts, result)
		},
	}

	cmd.Flags().BoolVar(&valid, "valid", true, "enable or disable the license")
	cmd.Flags().StringVar(&role, "role", "", "new role")
	cmd.Flags().BoolVar(&clearRole, "clear-role", false, "remove the role")
	cmd.Flags().StringVar(&expires, "expires", "", "new expiry date")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.MarkFlagsMutuallyExclusive("role", "clear-role")

	return cmd
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}

			result, err := c.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printChange(cmd, opts, result)
		},
	}
}

func printChange(cmd *cobra.Command, opts *globalOptions, result *client.ChangeResult) error {
	if opts.jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}

func displayExpires(expires string) string {
	if expires == "" {
		return models.ExpiresNever
	}
	return expires
}
