package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/schollz/progressbar/v3"
)

// Reporter prints run progress to a terminal. In quiet mode a progress bar
// replaces the per-item lines.
type Reporter struct {
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	quiet       bool
}

// NewReporter creates a reporter writing to writer (stdout if nil).
func NewReporter(writer io.Writer, quiet bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, quiet: quiet}
}

// RunStarted announces the item and category counts.
func (r *Reporter) RunStarted(totalItems, totalGroups int) {
	if totalItems == 0 {
		r.println(FormatWarning("No items found in the catalog"))
		return
	}

	r.println(FormatInfo(fmt.Sprintf("Found %d items in %d categories", totalItems, totalGroups)))

	if r.quiet {
		r.initProgressBar(totalItems)
	}
}

// GroupStarted prints the category header.
func (r *Reporter) GroupStarted(group model.CategoryGroup, pool model.PoolName) {
	if r.quiet {
		return
	}
	r.println("\n" + BoldStyle.Render(fmt.Sprintf("%s Processing %s category (%d items)",
		FolderIcon, group.DisplayLabel(), len(group.Items))) +
		SubtleStyle.Render(fmt.Sprintf(" pool: %s", pool)))
}

// ItemFinished prints one item's outcome.
func (r *Reporter) ItemFinished(result model.ItemResult) {
	if r.quiet {
		if r.progressBar != nil {
			if err := r.progressBar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
		return
	}

	r.println("  " + FormatResult(result))
}

// RunFinished prints the summary box.
func (r *Reporter) RunFinished(summary *model.Summary) {
	if r.progressBar != nil {
		if err := r.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
	}
	if summary.TotalItems == 0 {
		return
	}
	r.println("\n" + RenderSummary(summary))
}

func (r *Reporter) initProgressBar(total int) {
	r.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Assigning images...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (r *Reporter) println(s string) {
	if _, err := fmt.Fprintln(r.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

// FormatResult renders a single item outcome.
func FormatResult(result model.ItemResult) string {
	item := fmt.Sprintf("%s (ID: %d)", result.Item.Name, result.Item.ID)

	switch result.Status {
	case model.StatusUpdated:
		return FormatSuccess("Updated: " + item)
	case model.StatusFailed:
		return FormatError(fmt.Sprintf("Failed: %s - %s", item, result.Error))
	default:
		return InfoStyle.Render(fmt.Sprintf("%s %s %s", item, PlanIcon, result.Image)) +
			SubtleStyle.Render(fmt.Sprintf(" [%s #%d]", result.Pool, result.Position))
	}
}

// RenderSummary renders the end-of-run report.
func RenderSummary(summary *model.Summary) string {
	title := CoffeeIcon + " Image Update Complete"
	switch {
	case summary.Interrupted:
		title = WarningIcon + " Image Update Interrupted"
	case summary.DryRun:
		title = ChartIcon + " Dry Run Complete"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Items: %d\n", ChartIcon, summary.TotalItems)
	if summary.DryRun {
		fmt.Fprintf(&b, "  • Planned: %d\n", summary.Planned)
	} else {
		b.WriteString("  • " + SuccessStyle.Render(fmt.Sprintf("Updated: %d", summary.Updated)) + "\n")
		failed := fmt.Sprintf("Failed: %d", summary.Failed)
		if summary.Failed > 0 {
			failed = ErrorStyle.Render(failed)
		}
		b.WriteString("  • " + failed + "\n")
	}
	if skipped := summary.TotalItems - len(summary.Results); skipped > 0 {
		b.WriteString("  • " + WarningStyle.Render(fmt.Sprintf("Not reached: %d", skipped)) + "\n")
	}
	fmt.Fprintf(&b, "  • Categories processed: %d\n", len(summary.Categories))
	fmt.Fprintf(&b, "  • Time taken: %s\n", summary.Duration.Round(time.Millisecond))

	if len(summary.Categories) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Summary by category:") + "\n")
		for _, cat := range summary.Categories {
			line := fmt.Sprintf("  • %s: %d items [%s]", cat.Label, cat.Items, cat.Pool)
			if !summary.DryRun {
				line += fmt.Sprintf(" %d updated, %d failed", cat.Updated, cat.Failed)
			}
			b.WriteString(line + "\n")
		}
	}

	if failed := summary.FailedResults(); len(failed) > 0 {
		b.WriteString("\n" + ErrorStyle.Render("Failed items:") + "\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "  %s %s (ID: %d): %s\n", ErrorIcon, r.Item.Name, r.Item.ID, r.Error)
		}
	}

	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}
