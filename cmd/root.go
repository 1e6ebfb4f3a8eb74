// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/log"
)

var (
	// Global flags
	configFile string
	logLevel   string

	// loaded by PersistentPreRunE
	globalCfg *config.GlobalConfig

	cli ClientInterface = libraryClient{}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sentinel",
		Short: "Sentinel - network interface listing and IPv4 frame capture",
		Long: `Sentinel enumerates the host's network interfaces, picks a usable one,
and captures a fixed number of Ethernet/IPv4 frames from it, reporting
protocol, source, destination and size for each.

Live capture needs raw-socket privileges (root or CAP_NET_RAW on Linux,
Npcap on Windows). Recorded pcap files can be replayed without them.`,
		Version:           "0.1.0",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and SENTINEL_* env vars when empty)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (trace/debug/info/warn/error)")

	root.AddCommand(newInterfacesCmd())
	root.AddCommand(newCaptureCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads configuration and installs the process logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.ValidateAndApplyDefaults(); err != nil {
			return err
		}
	}
	if err := log.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	globalCfg = cfg
	return nil
}
