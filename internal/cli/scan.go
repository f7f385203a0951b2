package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one batch over the facility records",
	Long: `Load facility records from the configured bucket, enrich them, evaluate
expiring accreditations, and publish tier alerts for anything at risk.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("prefix", "", "object key prefix (default from config)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	if prefix == "" {
		prefix = cfg.Source.Prefix
	}

	proc, err := initProcessor(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	result, err := proc.Scan(cmd.Context(), prefix)
	if err != nil {
		return fmt.Errorf("scan facilities: %w", err)
	}

	fmt.Printf("Scan complete:\n")
	fmt.Printf("  Scan ID:              %s\n", result.ScanID)
	fmt.Printf("  Facilities processed: %d\n", result.FacilitiesProcessed)
	fmt.Printf("  Expiring found:       %d\n", result.ExpiringFound)
	fmt.Printf("  Records skipped:      %d\n", result.RecordsSkipped)
	fmt.Printf("  Evaluation errors:    %d\n", len(result.EvaluationErrors))
	fmt.Printf("  Duration:             %dms\n", result.DurationMillis)

	for _, evalErr := range result.EvaluationErrors {
		fmt.Printf("  ! facility %s accreditation %s: bad valid_until %q\n",
			evalErr.FacilityID, evalErr.AccreditationID, evalErr.Value)
	}

	return nil
}
