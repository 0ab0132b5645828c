package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"meloburn/internal/config"
	"meloburn/internal/services"
	"meloburn/internal/shared"
)

var (
	debugMode  bool
	configPath string
)

// NewRootCommand creates the meloburn command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "meloburn",
		Version: version,
		Short:   "Organize a music collection and burn it to a USB stick or SD card.",
		Long: fmt.Sprintf(`meloburn (v%s)

Reads the tags of every audio file under a folder, fills in missing artist,
album and title through online catalogues, and copies the result as
Artist/Album (Year)/NN - Title.ext onto a FAT32 volume for car stereos and
portable players.`, version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			shared.InitializeColors()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the XDG config dir)")

	rootCmd.AddCommand(
		NewOrganizeCommand(),
		NewTransferCommand(),
		NewSyncCommand(),
		NewProbeCommand(),
		NewCacheCommand(),
		NewConfigCommand(),
	)
	return rootCmd
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// initConfigAndServices loads the config file, writing defaults on first run, and wires the services
func initConfigAndServices(cmd *cobra.Command) (*config.Config, *services.ServiceContainer, error) {
	path := resolveConfigPath()
	configService := services.NewConfigService()
	if err := configService.EnsureConfigExists(path); err != nil {
		return nil, nil, fmt.Errorf("failed to create config %s: %w", path, err)
	}

	cfg, err := configService.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if debugMode {
		cfg.Debug = true
	}
	if err := configService.ValidateConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	container := services.NewServiceContainer(cfg, &http.Client{Timeout: cfg.Timeout()})
	container.Logger.Debug("Loaded configuration from %s", path)
	return cfg, container, nil
}
