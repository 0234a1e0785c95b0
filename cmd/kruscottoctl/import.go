package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bassignana/kruscotto/internal/logger"
	"github.com/bassignana/kruscotto/internal/models"
	"github.com/bassignana/kruscotto/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import every FatturaPA XML file found in a directory",
	Long: `Import reads every *.xml file in the given directory and records the
invoices it can classify for the configured company. Files that fail to
parse or that belong to another VAT number are reported and skipped; they
never block the rest of the batch.

The company VAT number is taken from the stored company profile, or from
the COMPANY_VAT environment variable when no profile exists yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import_cli")

	conn, cfg, err := openDB()
	if err != nil {
		return err
	}

	companyVAT := cfg.CompanyVAT
	var profile models.CompanyProfile
	if err := conn.First(&profile).Error; err == nil {
		companyVAT = profile.VATNumber
	}
	if companyVAT == "" {
		return fmt.Errorf("partita IVA dell'azienda non configurata: creare il profilo azienda o impostare COMPANY_VAT")
	}

	paths, err := filepath.Glob(filepath.Join(args[0], "*.xml"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("nessun file XML in %s", args[0])
	}
	sort.Strings(paths)

	files := make([]services.ImportFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("apertura %s: %w", p, err)
		}
		defer f.Close()
		files = append(files, services.ImportFile{Name: filepath.Base(p), Content: f})
	}

	batch, results := services.NewImportService(conn).Import(companyVAT, files)
	for _, res := range results {
		line := fmt.Sprintf("%-40s %s", res.Filename, res.Status)
		if res.Message != "" {
			line += ": " + res.Message
		}
		fmt.Println(line)
	}
	log.Info().Int("files", batch.FileCount).Int("imported", batch.Imported).
		Int("skipped", batch.Skipped).Int("rejected", batch.Rejected).Msg("import completed")
	fmt.Printf("Totale: %d file, %d importati, %d saltati, %d scartati\n",
		batch.FileCount, batch.Imported, batch.Skipped, batch.Rejected)

	if batch.Rejected > 0 {
		return fmt.Errorf("%d file scartati", batch.Rejected)
	}
	return nil
}
