package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Veraticus/catalog-imager/internal/cli"
	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/config"
	"github.com/Veraticus/catalog-imager/internal/engine"
	"github.com/Veraticus/catalog-imager/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type assignOptions struct {
	in     io.Reader
	out    io.Writer
	delay  *time.Duration
	yes    bool
	dryRun bool
	backup bool
	quiet  bool
}

func assignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a rotating image to every catalog item",
		Long: `Assign overwrites the image of every item in the catalog.

Items are grouped by category. Each category is mapped to an image pool and
its items cycle through that pool in ID order. Every item is written in its
own transaction; a failed item is reported and the run moves on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := assignOptions{in: os.Stdin, out: cmd.OutOrStdout()}
			opts.yes, _ = cmd.Flags().GetBool("yes")
			opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
			opts.backup, _ = cmd.Flags().GetBool("backup")
			opts.quiet, _ = cmd.Flags().GetBool("quiet")
			if cmd.Flags().Changed("delay") {
				delay, _ := cmd.Flags().GetDuration("delay")
				opts.delay = &delay
			}
			return runAssign(cmd.Context(), viper.GetViper(), opts)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Bool("dry-run", false, "Show the assignment without writing anything")
	cmd.Flags().Duration("delay", config.DefaultDelay, "Pause between successive writes (0 disables)")
	cmd.Flags().Bool("backup", false, "Snapshot the database before writing (sqlite only)")
	cmd.Flags().BoolP("quiet", "q", false, "Show a progress bar instead of one line per item")

	return cmd
}

func runAssign(ctx context.Context, v *viper.Viper, opts assignOptions) error {
	pools, classifier, err := loadImagery(v)
	if err != nil {
		return err
	}

	delay, err := config.Delay(v)
	if err != nil {
		return err
	}
	if opts.delay != nil {
		if *opts.delay < 0 {
			return fmt.Errorf("%w: --delay must not be negative", common.ErrInvalidConfig)
		}
		delay = *opts.delay
	}

	store, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer closeStore(store)

	count, err := store.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrEnumeration, err)
	}
	if count == 0 {
		fmt.Fprintln(opts.out, cli.FormatWarning("No products found in database"))
		return nil
	}

	if !opts.dryRun {
		if err := prepareWrite(ctx, v, store, count, opts); err != nil {
			return err
		}
	}

	assigner := engine.NewWithConfig(store, classifier, pools, engine.Config{
		Reporter: cli.NewReporter(opts.out, opts.quiet),
		Pacer:    engine.NewRatePacer(delay),
		DryRun:   opts.dryRun,
	})

	_, err = assigner.Run(ctx)
	return err
}

// prepareWrite shows the warning banner, takes the optional snapshot and
// asks the operator for confirmation.
func prepareWrite(ctx context.Context, v *viper.Viper, store *storage.Store, count int, opts assignOptions) error {
	fmt.Fprintln(opts.out, formatBanner(count))

	if opts.backup {
		dbPath := config.Connection(v).Path
		if store.Kind() != storage.KindSQLite || dbPath == "" {
			return fmt.Errorf("%w: --backup needs a sqlite database.path", common.ErrMissingConfig)
		}
		dest := storage.BackupPath(dbPath, time.Now())
		if err := store.Backup(ctx, dest); err != nil {
			return err
		}
		fmt.Fprintln(opts.out, cli.FormatSuccess("Backup written to "+dest))
	}

	if opts.yes {
		return nil
	}

	confirmed, err := cli.Confirm(ctx, cli.NewNonBlockingReader(opts.in), opts.out, "Continue?")
	if err != nil || !confirmed {
		return common.ErrNotConfirmed
	}
	return nil
}

// formatBanner renders the pre-write warning.
func formatBanner(count int) string {
	return cli.RenderBox(cli.WarningIcon+" Catalog image update",
		fmt.Sprintf("This will overwrite the image of %d products.\n", count)+
			cli.WarningStyle.Render("Make sure you have a backup of your database."))
}
