package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coldstore/backend/internal/application/reconcile"
	"github.com/coldstore/backend/internal/infrastructure/config"
	"github.com/coldstore/backend/internal/infrastructure/event"
	"github.com/coldstore/backend/internal/infrastructure/logger"
	"github.com/coldstore/backend/internal/infrastructure/notify"
	"github.com/coldstore/backend/internal/infrastructure/persistence"
	"github.com/coldstore/backend/internal/infrastructure/sheet"
	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		timeout  time.Duration
	)

	flag.StringVar(&filePath, "file", "", "Path to the xlsx workbook to import")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum time for the import transaction")
	flag.Parse()

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: importer -file <workbook.xlsx>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log, filePath, timeout); err != nil {
		var validationErr *sheet.ValidationError
		if errors.As(err, &validationErr) {
			printValidationErrors(validationErr)
			os.Exit(1)
		}
		log.Error("Import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, filePath string, timeout time.Duration) error {
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	rows, err := sheet.ReadWorkbook(file)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	log.Info("Workbook read",
		zap.String("file", filePath),
		zap.Int("rows", len(rows)),
	)

	notifier := notify.NewLogNotifier(log)
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(notify.NewEventNotifier(notifier))
	scope := persistence.NewGormReconcileTransactionScope(db.DB)

	service := reconcile.NewService(scope, log)
	service.SetEventPublisher(bus)
	service.SetNotifier(notifier)
	service.SetMaxErrors(cfg.Import.MaxErrors)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := service.ReconcileBatch(ctx, rows)
	if err != nil {
		return err
	}

	printSummary(result)
	return nil
}

func printSummary(result *reconcile.Result) {
	fmt.Println("Import completed:")
	fmt.Printf("  rows processed:         %d\n", result.TotalRows)
	fmt.Printf("  vendors created:        %d\n", result.VendorsCreated)
	fmt.Printf("  materials created:      %d\n", result.MaterialsCreated)
	fmt.Printf("  material orders:        %d\n", result.MaterialOrdersCreated)
	fmt.Printf("  productions recorded:   %d\n", result.ProductionsCreated)
	fmt.Printf("  stock records created:  %d\n", result.RecordsCreated)
	fmt.Printf("  stock rows merged:      %d\n", result.StockRowsMerged)
	fmt.Printf("  dispatches applied:     %d\n", result.DispatchesApplied)
}

func printValidationErrors(validationErr *sheet.ValidationError) {
	fmt.Fprintf(os.Stderr, "Import rejected: %d error(s), nothing was applied\n", validationErr.Total)
	for _, detail := range validationErr.Details {
		if detail.Column != "" {
			fmt.Fprintf(os.Stderr, "  %s row %d [%s]: %s\n", detail.Sheet, detail.Row, detail.Column, detail.Message)
		} else {
			fmt.Fprintf(os.Stderr, "  %s row %d: %s\n", detail.Sheet, detail.Row, detail.Message)
		}
	}
	if len(validationErr.Details) < validationErr.Total {
		fmt.Fprintf(os.Stderr, "  ... and %d more\n", validationErr.Total-len(validationErr.Details))
	}
}
