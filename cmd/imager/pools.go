package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/catalog-imager/internal/cli"
	"github.com/Veraticus/catalog-imager/internal/imagery"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func poolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "List the configured image pools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pools, _, err := loadImagery(viper.GetViper())
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderPools(pools, verbose))
			return err
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Print every image reference")

	return cmd
}

func renderPools(pools *imagery.PoolSet, verbose bool) string {
	var b strings.Builder
	for _, name := range pools.Names() {
		line := fmt.Sprintf("%s %s: %d images", cli.FolderIcon, name, pools.Size(name))
		if name == pools.Fallback() {
			line += cli.SubtleStyle.Render(" (fallback)")
		}
		b.WriteString(line + "\n")

		if verbose {
			for i, image := range pools.Images(name) {
				fmt.Fprintf(&b, "   %d. %s\n", i, image)
			}
		}
	}
	return cli.RenderBox("Image pools", strings.TrimRight(b.String(), "\n"))
}
