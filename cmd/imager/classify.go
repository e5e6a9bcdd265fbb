package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/catalog-imager/internal/cli"
	"github.com/Veraticus/catalog-imager/internal/imagery"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <label>...",
		Short: "Show which image pool a category label maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, classifier, err := loadImagery(viper.GetViper())
			if err != nil {
				return err
			}
			return printClassification(cmd.OutOrStdout(), classifier, args)
		},
	}
}

func printClassification(out io.Writer, classifier *imagery.Classifier, labels []string) error {
	for _, label := range labels {
		match := classifier.Explain(label)

		reason := fmt.Sprintf("rule %d, keyword %q", match.Rule, match.Keyword)
		if match.Fallback {
			reason = "no rule matched, fallback"
		}

		display := strings.ToUpper(label)
		if strings.TrimSpace(label) == "" {
			display = "(UNCATEGORIZED)"
		}

		if _, err := fmt.Fprintf(out, "%s %s %s %s\n",
			cli.BoldStyle.Render(display),
			cli.PlanIcon,
			cli.InfoStyle.Render(match.Pool.String()),
			cli.SubtleStyle.Render("("+reason+")")); err != nil {
			return err
		}
	}
	return nil
}
