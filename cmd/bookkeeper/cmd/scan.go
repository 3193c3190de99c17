package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-bookkeeping-engine/cmd/bookkeeper/config"
	"golang-bookkeeping-engine/internal/reconciler"
	"golang-bookkeeping-engine/internal/reporter"
	"golang-bookkeeping-engine/internal/store"
)

// Flags for the scan command
var (
	workbook       string
	ratesURL       string
	outputFormat   string
	outputFile     string
	crossTolerance float64
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one reconciliation batch over a ledger workbook",
	Long: `Scan loads the ledger workbook, matches payments against invoices and
salary receipts, reconciles bank credit movements against expected
collections, settles credit notes, and writes every accepted match back
to the workbook.

Examples:
  # Basic scan
  bookkeeper scan --workbook ledger.xlsx

  # JSON report to a file
  bookkeeper scan --workbook ledger.xlsx --output-format json --output-file report.json

  # Custom rate endpoint and looser cross-currency tolerance
  bookkeeper scan --workbook ledger.xlsx \
    --rates-url "https://example.com/rates/{date}" \
    --cross-currency-tolerance 7.5`,

	PreRunE: validateScanFlags,
	RunE:    runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&workbook, "workbook", "w", "", "path to the ledger workbook (required)")
	scanCmd.Flags().StringVar(&ratesURL, "rates-url", "", "historical rate endpoint with a {date} placeholder")
	scanCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json")
	scanCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	scanCmd.Flags().Float64Var(&crossTolerance, "cross-currency-tolerance", 5.0, "cross-currency amount tolerance percentage")

	scanCmd.MarkFlagRequired("workbook")

	viper.BindPFlag("workbook", scanCmd.Flags().Lookup("workbook"))
	viper.BindPFlag("rates-url", scanCmd.Flags().Lookup("rates-url"))
	viper.BindPFlag("output-format", scanCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", scanCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("cross-currency-tolerance", scanCmd.Flags().Lookup("cross-currency-tolerance"))
}

func validateScanFlags(cmd *cobra.Command, args []string) error {
	workbook = viper.GetString("workbook")
	ratesURL = viper.GetString("rates-url")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	crossTolerance = viper.GetFloat64("cross-currency-tolerance")

	if workbook == "" {
		return fmt.Errorf("workbook is required")
	}
	info, err := os.Stat(workbook)
	if os.IsNotExist(err) {
		return fmt.Errorf("workbook does not exist: %s", workbook)
	}
	if err != nil {
		return fmt.Errorf("error accessing workbook: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("workbook is a directory, expected a file: %s", workbook)
	}

	if !reporter.Format(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format %q. Valid formats: console, json", outputFormat)
	}

	if crossTolerance < 0.0 || crossTolerance > 100.0 {
		return fmt.Errorf("cross-currency tolerance must be between 0.0 and 100.0")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting scan...\n")
		fmt.Fprintf(os.Stderr, "Workbook: %s\n", workbook)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	matcherConfig, err := config.CreateMatcherConfig(crossTolerance)
	if err != nil {
		return fmt.Errorf("failed to create matcher config: %w", err)
	}

	rates, err := config.CreateRatesProvider(ratesURL)
	if err != nil {
		return fmt.Errorf("failed to create rate provider: %w", err)
	}

	ledger, err := store.Open(workbook)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer ledger.Close()

	result, err := reconciler.New(ledger, rates, matcherConfig).RunScan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reporter.New(output).Write(result, reporter.Format(outputFormat)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nScan completed.\n")
		fmt.Fprintf(os.Stderr, "Matched %d documents, %d payments left unmatched.\n",
			len(result.Matches), len(result.UnmatchedPayments))
		fmt.Fprintf(os.Stderr, "Reconciled %d bank movements, settled %d credit note pairs.\n",
			result.MovementsMatched, result.SettledPairs)
		if result.FailedWrites > 0 {
			fmt.Fprintf(os.Stderr, "%d annotation writes failed.\n", result.FailedWrites)
		}
	}

	return nil
}
