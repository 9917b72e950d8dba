package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-extractor/internal/config"
	"github.com/i474232898/weather-extractor/internal/export"
	"github.com/i474232898/weather-extractor/internal/output"
	"github.com/i474232898/weather-extractor/internal/weather"
)

const previewRows = 5

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run an extraction job",
	Long: `Run the extraction job described by --config.

The job file enables variable groups with true/false switches; groups
that are absent are disabled. Failed groups are reported as warnings as
long as at least one group returns data.

Examples:
  weather-extractor extract --config job.json
  weather-extractor extract --config job.yaml --output out/berlin.xlsx
  weather-extractor extract --config job.json --daily --format json`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("daily", false, "also compute a daily summary (mean/min/max/sum)")
	extractCmd.Flags().String("format", "", "output format: csv, json or excel (default: from file extension)")
	extractCmd.Flags().StringP("output", "o", "", "output file (overrides output_file in the job)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return errors.New("please provide a job file with --config")
	}
	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !noColor)

	daily, _ := cmd.Flags().GetBool("daily")
	formatFlag, _ := cmd.Flags().GetString("format")
	outputFlag, _ := cmd.Flags().GetString("output")

	job, err := config.LoadJob(cfgFile)
	if err != nil {
		return err
	}
	if outputFlag != "" {
		job.OutputFile = outputFlag
	}
	format, err := resolveFormat(job, formatFlag)
	if err != nil {
		return err
	}

	svc := newService(appCfg, logger)
	q, err := job.Query(svc.Catalog())
	if err != nil {
		return err
	}

	printer.Header("Weather data extraction")
	printer.Info("Location:   (%g, %g)", job.Latitude, job.Longitude)
	printer.Info("Date range: %s to %s", job.StartDate, job.EndDate)
	printer.Info("Resolution: %s", q.Resolution)

	res, err := svc.Run(cmd.Context(), q)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		printer.Warning("group %s: %s", w.Group, w.Reason)
	}
	for _, c := range res.Dropped {
		printer.Warning("duplicate column %s discarded", c)
	}
	printer.Success("retrieved %d records with %d variables", res.Table.Len(), len(res.Table.Columns))

	if err := output.RenderPreview(printer.Out(), res.Table, previewRows); err != nil {
		return err
	}

	if job.OutputFile != "" {
		if err := export.WriteFile(job.OutputFile, format, res.Table); err != nil {
			return err
		}
		printer.Success("data saved to: %s", job.OutputFile)
	}

	if daily {
		summary := weather.DailySummary(res.Table)
		printer.Header("Daily summary")
		if err := output.RenderPreview(printer.Out(), summary, previewRows); err != nil {
			return err
		}
		if job.OutputFile != "" {
			dailyFile := export.DailyFileName(job.OutputFile)
			if err := export.WriteFile(dailyFile, format, summary); err != nil {
				return err
			}
			printer.Success("daily summary saved to: %s", dailyFile)
		}
	}

	printer.Success("extraction complete")
	return nil
}

// resolveFormat picks the output format: flag, then job file, then the
// output file extension.
func resolveFormat(job *config.Job, flag string) (export.Format, error) {
	switch {
	case flag != "":
		return export.ParseFormat(flag)
	case job.OutputFormat != "":
		return export.ParseFormat(job.OutputFormat)
	case job.OutputFile != "":
		return export.FormatFromPath(job.OutputFile), nil
	default:
		return export.FormatCSV, nil
	}
}
