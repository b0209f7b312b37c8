// Package main is the entrypoint for licenzectl, the licenze command line client.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/MacJediWizard/licenze/internal/client"
	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/MacJediWizard/licenze/internal/httpclient"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	serverURL  string
	jsonOutput bool
}

// loadConfig reads the config file, falling back to an empty config.
func (o *globalOptions) loadConfig() (*config.ClientConfig, string, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadClientConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// client builds an API client. --server overrides the config file.
func (o *globalOptions) client() (*client.Client, *config.ClientConfig, error) {
	cfg, _, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if o.serverURL != "" {
		cfg.ServerURL = o.serverURL
	}
	if cfg.ServerURL != "" {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	hc, err := httpclient.New(0, cfg.Proxy)
	if err != nil {
		return nil, nil, err
	}
	return client.NewClientWithHTTP(cfg.ServerURLOrDefault(), hc), cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "licenzectl",
		Short: "Command line client for the licenze license server",
		Long: `licenzectl checks licenses, sends heartbeats and administers the
license list of a licenze server.

The server URL comes from --server, then ~/.licenze/config.yml, then
` + config.DefaultServerURL + `.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.licenze/config.yml)")
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "licenze server URL")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print raw JSON responses")

	rootCmd.AddCommand(
		newVersionCmd(opts),
		newConfigCmd(opts),
		newCheckCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newHeartbeatCmd(opts),
		newHistoryCmd(opts),
		newHealthCmd(opts),
	)

	return rootCmd
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "licenzectl %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if !remote {
				return nil
			}

			c, _, err := opts.client()
			if err != nil {
				return err
			}
			info, err := c.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Server %v (store: %v, uptime: %vs)\n", info["version"], info["store_backend"], info["uptime_seconds"])
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "also query the server version")
	return cmd
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage client configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(opts),
		newConfigSetCmd(opts),
	)

	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", path)
			fmt.Fprintf(out, "Server URL: %s\n", cfg.ServerURLOrDefault())
			if cfg.Username != "" {
				fmt.Fprintf(out, "Username:   %s\n", cfg.Username)
			}
			if cfg.Version != "" {
				fmt.Fprintf(out, "Version:    %s\n", cfg.Version)
			}
			fmt.Fprintf(out, "Proxy:      %s\n", httpclient.Describe(cfg.Proxy))
			return nil
		},
	}
}

func newConfigSetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Long: `Set a configuration value. Keys: server_url, username, version,
http_proxy, https_proxy, no_proxy, socks5_proxy.`,
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := opts.loadConfig()
			if err != nil {
				return err
			}

			key, value := strings.ToLower(args[0]), args[1]
			switch key {
			case "server_url", "server":
				cfg.ServerURL = strings.TrimSuffix(value, "/")
			case "username", "user":
				cfg.Username = value
			case "version":
				cfg.Version = value
			case "http_proxy":
				cfg.Proxy.HTTPProxy = value
			case "https_proxy":
				cfg.Proxy.HTTPSProxy = value
			case "no_proxy":
				cfg.Proxy.NoProxy = value
			case "socks5_proxy":
				cfg.Proxy.SOCKS5Proxy = value
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}

			if cfg.ServerURL != "" {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", key, value)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
