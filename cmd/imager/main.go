package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/catalog-imager/internal/cli"
	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "imager",
		Short: "☕ Catalog image assignment tool",
		Long: `imager gives every item in a product catalog a display image.

Items are grouped by category and each category rotates through a fixed
pool of pictures, so a re-run always produces the same result.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/imager/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json, pretty)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(assignCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(poolsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, cancel := context.WithCancel(interrupts.HandleInterrupts(context.Background()))

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		code := exitCode(err)
		if interrupts.WasInterrupted() {
			code = 130
		}
		os.Exit(code)
	}
}

// exitCode prints err for the operator and maps it to a process exit code.
func exitCode(err error) int {
	if errors.Is(err, common.ErrNotConfirmed) {
		fmt.Fprintln(os.Stdout, cli.FormatInfo("Update cancelled"))
		return 0
	}

	var userErr *common.UserError
	if errors.As(err, &userErr) {
		fmt.Fprintln(os.Stderr, cli.FormatError(userErr.UserMessage))
		if userErr.Err != nil {
			fmt.Fprintln(os.Stderr, cli.SubtleStyle.Render(userErr.Err.Error()))
		}
		return 1
	}

	fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
	return 1
}

func initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		return err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(fmt.Sprintf("%s/.config/imager", home))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := common.SetupLogger(v.GetString("logging.level"), v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "imager %s\n", version)
		},
	}
}
