package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/catalog-imager/internal/cli"
	"github.com/Veraticus/catalog-imager/internal/engine"
	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the image each item would receive",
		Long: `Plan reads the catalog and prints the assignment table without writing.
The output is exactly what 'imager assign' would write.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), viper.GetViper(), cmd.OutOrStdout())
		},
	}
}

func runPlan(ctx context.Context, v *viper.Viper, out io.Writer) error {
	pools, classifier, err := loadImagery(v)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer closeStore(store)

	collector := &planCollector{}
	assigner := engine.NewWithConfig(store, classifier, pools, engine.Config{
		Reporter: collector,
		DryRun:   true,
	})

	summary, err := assigner.Run(ctx)
	if err != nil {
		return err
	}

	if summary.TotalItems == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No products found in database"))
		return nil
	}

	fmt.Fprintln(out, renderPlan(collector.rows))
	fmt.Fprintln(out, cli.RenderSummary(summary))
	return nil
}

type planRow struct {
	label  string
	result model.ItemResult
}

// planCollector keeps planned results along with their category label.
type planCollector struct {
	label string
	rows  []planRow
}

func (c *planCollector) RunStarted(int, int) {}

func (c *planCollector) GroupStarted(group model.CategoryGroup, _ model.PoolName) {
	c.label = group.DisplayLabel()
}

func (c *planCollector) ItemFinished(result model.ItemResult) {
	c.rows = append(c.rows, planRow{label: c.label, result: result})
}

func (c *planCollector) RunFinished(*model.Summary) {}

func renderPlan(rows []planRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("ID", "NAME", "CATEGORY", "POOL", "#", "IMAGE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.BoldStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range rows {
		t.Row(
			strconv.FormatInt(r.result.Item.ID, 10),
			r.result.Item.Name,
			r.label,
			r.result.Pool.String(),
			strconv.Itoa(r.result.Position),
			r.result.Image,
		)
	}

	return t.String()
}
