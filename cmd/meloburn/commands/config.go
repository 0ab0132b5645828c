package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"meloburn/internal/config"
	"meloburn/internal/services"
	"meloburn/internal/shared"
)

const maskedSecret = "********"

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or display the configuration file.",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file.",
		Args:  cobra.NoArgs,
		RunE:  runConfigInitCommand,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked.",
		Args:  cobra.NoArgs,
		RunE:  runConfigShowCommand,
	})

	return cmd
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := resolveConfigPath()
	configService := services.NewConfigService()

	if shared.FileExists(path) && !force {
		shared.ColorWarning.Printf("⚠️ %s already exists, use --force to overwrite.\n", path)
		return nil
	}
	if err := configService.SaveConfig(path, configService.GetDefaultConfig()); err != nil {
		return err
	}
	shared.ColorSuccess.Printf("✅ Configuration saved to %s\n", path)
	return nil
}

func runConfigShowCommand(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	configService := services.NewConfigService()

	cfg := configService.GetDefaultConfig()
	if shared.FileExists(path) {
		loaded, err := configService.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	data, err := toml.Marshal(maskSecrets(*cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	shared.ColorInfo.Printf("# %s\n", path)
	fmt.Print(string(data))
	return nil
}

func maskSecrets(cfg config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = maskedSecret
		}
	}
	mask(&cfg.Providers.LastFMAPIKey)
	mask(&cfg.Providers.DiscogsToken)
	mask(&cfg.Spotify.ClientSecret)
	mask(&cfg.Subsonic.Password)
	return cfg
}
