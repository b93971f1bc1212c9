package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"go-lifeexp-report/internal/config"
	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/internal/pipeline"
	"go-lifeexp-report/internal/render"
	"go-lifeexp-report/internal/store"
	"go-lifeexp-report/pkg/utils"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [data.csv]",
		Short: "Load the dataset, print the five reports and render their charts",
		Long: `Load the dataset, print a preview and the five reports, write reports 1-4
as PNG charts and export the results into <output>/<run-id>/.

Example: lifeexp run data/data.csv --export csv,xlsx --workers 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return runReports(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("output", "", "output directory (default from LIFEEXP_OUTPUT_DIR)")
	cmd.Flags().String("db-driver", "", "run store driver: sqlite3 or postgres")
	cmd.Flags().String("db-dsn", "", "run store DSN")
	cmd.Flags().String("export", "", "comma separated export formats: csv, json, xlsx")
	cmd.Flags().String("transforms", "", "comma separated label transforms applied after load")
	cmd.Flags().Bool("no-charts", false, "do not render charts")
	cmd.Flags().Bool("no-store", false, "do not record the run in the store")
	cmd.Flags().Int("workers", 0, "number of reports computed concurrently")
	cmd.Flags().Int("preview-rows", 0, "dataset rows printed before the reports")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [data.csv]",
		Short: "Print summary statistics of the numeric columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			table, err := pipeline.Load(cmd.Context(), cfg.DataPath, model.LifeSchema())
			if err != nil {
				return err
			}
			if len(cfg.Report.Transformations) > 0 {
				if table, err = pipeline.TransformTable(table, cfg.Report.Transformations); err != nil {
					return err
				}
			}
			if cfg.Report.PreviewRows > 0 {
				pipeline.PrintTable(cmd.OutOrStdout(), table, cfg.Report.PreviewRows)
			}
			pipeline.PrintSummaries(cmd.OutOrStdout(), pipeline.Describe(table))
			return nil
		},
	}

	cmd.Flags().String("transforms", "", "comma separated label transforms applied after load")
	cmd.Flags().Int("preview-rows", 0, "dataset rows printed before the summary")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or print the stored report rows of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				return listRuns(cmd, s)
			}
			return showRun(cmd, s, args[0])
		},
	}

	cmd.Flags().String("db-driver", "", "run store driver: sqlite3 or postgres")
	cmd.Flags().String("db-dsn", "", "run store DSN")

	return cmd
}

// applyFlags overrides configuration values with the flags set on cmd
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("output") {
		cfg.OutputDir, err = flags.GetString("output")
	}
	if err == nil && changed("db-driver") {
		cfg.Database.Driver, err = flags.GetString("db-driver")
	}
	if err == nil && changed("db-dsn") {
		cfg.Database.DSN, err = flags.GetString("db-dsn")
	}
	if err == nil && changed("export") {
		var v string
		v, err = flags.GetString("export")
		cfg.Report.ExportFormats = utils.SplitList(v)
	}
	if err == nil && changed("transforms") {
		var v string
		v, err = flags.GetString("transforms")
		cfg.Report.Transformations = utils.SplitList(v)
	}
	if err == nil && changed("no-charts") {
		var off bool
		off, err = flags.GetBool("no-charts")
		cfg.Chart.Enabled = !off
	}
	if err == nil && changed("no-store") {
		var off bool
		off, err = flags.GetBool("no-store")
		cfg.Database.Enabled = !off
	}
	if err == nil && changed("workers") {
		cfg.Report.Workers, err = flags.GetInt("workers")
	}
	if err == nil && changed("preview-rows") {
		cfg.Report.PreviewRows, err = flags.GetInt("preview-rows")
	}
	return err
}

func runReports(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.New().String()
	output := utils.NewOutputManager(cfg.OutputDir)

	deps := pipeline.Deps{Output: output, Out: os.Stdout}

	if cfg.Database.Enabled {
		s, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer s.Close()
		deps.Store = s
	}

	var host *render.Host
	if cfg.Chart.Enabled {
		// the renderer creates the run directory with its first chart
		runDir := filepath.Join(output.BaseOutputDir, runID)
		host = render.NewHost(ctx, render.NewPNGRenderer(runDir, cfg.Chart.Width, cfg.Chart.Height))
	} else {
		host = render.NewHost(ctx, render.Nop{})
	}
	deps.Presenter = host

	summary, err := pipeline.Run(ctx, runID, cfg.RunSpec(), deps)
	// charts already handed to the host are finished even when the run failed
	if werr := host.Wait(); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "\nRun %s completed: %d records, drew %d of %d charts, output in %s\n",
		summary.RunID, summary.RecordCount, host.Drawn(), host.Shown(), summary.OutputDir)
	for _, e := range summary.Exports {
		if e.FileType == "" {
			fmt.Fprintf(os.Stdout, "  %-8s %s (%d rows)\n", e.Type, e.Path, e.RecordCount)
			continue
		}
		fmt.Fprintf(os.Stdout, "  %-8s %s (%d rows, %s, %d bytes)\n", e.Type, e.Path, e.RecordCount, e.FileType, e.FileSize)
	}
	return nil
}

func listRuns(cmd *cobra.Command, s *store.Store) error {
	runs, err := s.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"Run", "Status", "Records", "Data", "Created"})
	for _, r := range runs {
		tw.Append([]string{r.ID, r.Status, strconv.Itoa(r.RecordCount), r.DataPath, r.CreatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	tw.Render()
	return nil
}

func showRun(cmd *cobra.Command, s *store.Store, runID string) error {
	ctx := cmd.Context()
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %s, %d records from %s\n", run.ID, run.Status, run.RecordCount, run.DataPath)

	messages, err := s.GetRunErrors(ctx, runID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		color.New(color.FgRed).Fprintf(w, "  error: %s\n", m)
	}

	rows, err := s.GetReportRows(ctx, runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Printf("no report rows stored for run %s", runID)
		return nil
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Report", "Key 1", "Key 2", "Value", "Records"})
	for _, r := range rows {
		tw.Append([]string{strconv.Itoa(r.Report), r.Key1, r.Key2, utils.FormatValue(r.Value), strconv.Itoa(r.RecordCount)})
	}
	tw.Render()
	return nil
}
