package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadqual/internal/export"
	"github.com/sells-group/leadqual/internal/model"
	"github.com/sells-group/leadqual/internal/pipeline"
	"github.com/sells-group/leadqual/internal/store"
)

var (
	leadsMinScore int
	leadsStage    string
	leadsLimit    int

	exportFormat string
	exportOut    string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect, export and sync qualified leads",
}

func leadsFilter() store.LeadFilter {
	return store.LeadFilter{
		MinScore: leadsMinScore,
		Stage:    model.Stage(leadsStage),
		Limit:    leadsLimit,
	}
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads matching the filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), leadsFilter())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PHONE\tNAME\tSCORE\tSTAGE\tBUDGET\tAREA")
		for _, lead := range leads {
			name, area := "", ""
			if lead.Lead.Name != nil {
				name = lead.Lead.Name.Value
			}
			if lead.Lead.Location != nil {
				area = lead.Lead.Location.Value
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				lead.PhoneID, name, lead.Score, lead.Stage, lead.Lead.Budget.String(), area)
		}
		return w.Flush()
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, ok := export.ParseFormat(exportFormat)
		if !ok {
			return eris.Errorf("format must be csv, json or xlsx, got %q", exportFormat)
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), leadsFilter())
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportOut)
		}
		defer f.Close()

		switch format {
		case export.FormatCSV:
			err = export.WriteCSV(f, leads)
		case export.FormatJSON:
			err = export.WriteJSON(f, leads)
		case export.FormatXLSX:
			err = export.WriteXLSX(f, leads)
		}
		if err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.String("file", exportOut),
			zap.String("format", string(format)),
			zap.Int("count", len(leads)),
		)
		return nil
	},
}

var leadsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upsert leads into Salesforce",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		sfClient, err := newSalesforceClient()
		if err != nil {
			return err
		}

		// Without an explicit floor, only hand over high-quality leads.
		filter := leadsFilter()
		if !cmd.Flags().Changed("min-score") {
			filter.MinScore = cfg.Qualify.HighQualityThreshold
		}

		leads, err := env.Store.ListLeads(cmd.Context(), filter)
		if err != nil {
			return err
		}

		synced, err := pipeline.SyncLeads(cmd.Context(), sfClient, leads, env.ScoreCfg)
		zap.L().Info("salesforce sync finished",
			zap.Int("synced", synced),
			zap.Int("total", len(leads)),
		)
		return err
	},
}

func init() {
	leadsCmd.PersistentFlags().IntVar(&leadsMinScore, "min-score", 0, "minimum lead score")
	leadsCmd.PersistentFlags().StringVar(&leadsStage, "stage", "", "filter by stage")
	leadsCmd.PersistentFlags().IntVar(&leadsLimit, "limit", 0, "maximum number of leads")

	leadsExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, json or xlsx")
	leadsExportCmd.Flags().StringVar(&exportOut, "out", "leads.csv", "output file path")

	leadsCmd.AddCommand(leadsListCmd, leadsExportCmd, leadsSyncCmd)
	rootCmd.AddCommand(leadsCmd)
}
