package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bassignana/kruscotto/internal/services"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Audit every document for schedule/total mismatches",
	Long: `Scan sweeps the whole ledger and reports every document whose
installments no longer add up exactly to the declared total. This is the
strict audit: no tolerance, exact decimal equality. The exit code is
non-zero when anomalies are found, so the scan can run from cron.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	conn, _, err := openDB()
	if err != nil {
		return err
	}

	anomalies, err := services.NewTermsService(conn).ScanAnomalies()
	if err != nil {
		return err
	}
	if len(anomalies) == 0 {
		fmt.Println("Nessuna anomalia: tutte le scadenze combaciano con gli importi totali.")
		return nil
	}

	numbers := make([]string, 0, len(anomalies))
	for n := range anomalies {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	for _, n := range numbers {
		fmt.Println(anomalies[n])
	}
	return fmt.Errorf("%d documenti incongruenti", len(anomalies))
}
