package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Import-AF/pipedream-libs/pkg/config"
	"github.com/Import-AF/pipedream-libs/pkg/logger"
	"github.com/Import-AF/pipedream-libs/pkg/mapping"
	"github.com/Import-AF/pipedream-libs/pkg/monday"
	"github.com/Import-AF/pipedream-libs/pkg/qbo"
	"github.com/Import-AF/pipedream-libs/pkg/retry"
	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	configPath  string
	invoicePath string
	itemName    string
	itemID      string
	boardID     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qbo2monday",
		Short: "Push QuickBooks Online invoices to a Monday.com board",
		Long: `qbo2monday reads a QuickBooks Online invoice document and writes it to a
Monday.com board, matching mapping-configuration keys against tags embedded
in the board's column descriptions.`,
		SilenceUsage: true,
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update a board item from an invoice JSON document",
		RunE:  runSync,
	}
	syncCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (JSON or YAML)")
	syncCmd.Flags().StringVarP(&invoicePath, "invoice", "i", "", "Path to the invoice JSON document")
	syncCmd.Flags().StringVar(&itemName, "item-name", "", "Item name (defaults to the invoice DocNumber)")
	syncCmd.Flags().StringVar(&itemID, "item-id", "", "Existing item ID to update instead of creating")
	syncCmd.Flags().StringVar(&boardID, "board-id", "", "Board ID (overrides the configured board)")
	_ = syncCmd.MarkFlagRequired("invoice")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qbo2monday %s\n", version)
		},
	}

	rootCmd.AddCommand(syncCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.New()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	targetBoard := cfg.BoardID
	if boardID != "" {
		targetBoard = boardID
	}

	invoiceData, err := os.ReadFile(invoicePath)
	if err != nil {
		return fmt.Errorf("failed to read invoice file: %w", err)
	}

	invoice, err := qbo.ParseInvoice(invoiceData)
	if err != nil {
		return err
	}

	name := itemName
	if name == "" {
		name = invoice.DocNumber
	}
	if name == "" {
		name = invoice.ID
	}

	client := monday.NewClient(cfg.Monday.APIToken,
		monday.WithEndpoint(cfg.Monday.Endpoint),
		monday.WithAPIVersion(cfg.Monday.APIVersion),
		monday.WithTimeout(time.Duration(cfg.Monday.RequestTimeoutSeconds)*time.Second),
		monday.WithLogger(log),
	)
	mapper := mapping.NewMapper(client, log)

	retryManager := retry.NewManager(
		cfg.Retry.MaxAttempts,
		time.Duration(cfg.Retry.BaseDelayMs)*time.Millisecond,
		time.Duration(cfg.Retry.MaxDelayMs)*time.Millisecond,
		retry.IsTransient,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Info("Received interrupt signal. Shutting down...")
		cancel()
	}()

	log.Infof("Syncing invoice %s to board %s", invoice.DocNumber, targetBoard)
	record := invoice.ToRecord()

	var result *monday.ItemResult
	err = retryManager.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = mapper.CreateOrUpdateItem(ctx, targetBoard, cfg.Mapping, record, name, itemID)
		return opErr
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Infof("Synced invoice %s to item %s (%s)", invoice.DocNumber, result.ID, result.Name)
	return nil
}
