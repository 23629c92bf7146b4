package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/audit"
	"plp-bookstore/internal/db"
)

const defaultAuditCollection = "audit_logs"

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Work with the mutation audit trail",
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print audit entries not exported yet and mark them exported",
	Long: `Print audit entries not exported yet and mark them exported.

Entries are written by the query sequence when --audit-collection (or
AUDIT_COLLECTION) is set. Without either, audit_logs is read.`,
	Args: cobra.NoArgs,
	RunE: runAuditExport,
}

func init() {
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	collName := cfg.AuditCollection
	if collName == "" {
		collName = defaultAuditCollection
	}

	logger := newLogger(cfg.LogLevel)
	return withClient(cmd.Context(), cfg, logger, func(ctx context.Context, client *mongo.Client) error {
		exporter := audit.Exporter{
			Coll: db.GetCollection(client, cfg.DBName, collName),
			Out:  cmd.OutOrStdout(),
		}
		n, err := exporter.ExportPending(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d audit entries\n", n)
		return nil
	})
}
