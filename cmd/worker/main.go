package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qrattendance/internal/config"
	"qrattendance/internal/metrics"
	"qrattendance/internal/queue"
	"qrattendance/internal/sheets"
	"qrattendance/internal/store"
)

// Worker consumes mirror jobs and appends accepted attendance rows to the
// spreadsheet. Failures are logged and dropped; the database row is already
// committed, so the sheet is at-least-once and may lag or miss rows.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.SheetsSpreadsheetID == "" || cfg.SheetsCredentialsFile == "" {
		log.Fatal("sheets mirroring not configured (SHEETS_SPREADSHEET_ID / SHEETS_CREDENTIALS_FILE required)")
	}
	sheetLogger, err := sheets.NewLogger(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsWorksheet)
	if err != nil {
		log.Fatalf("sheets client init failed: %v", err)
	}
	if err := sheetLogger.EnsureHeader(ctx); err != nil {
		log.Printf("WARNING: could not ensure sheet header: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "qrattendance:mirror")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("mirror worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeMirror {
			continue
		}

		var row sheets.MirrorRow
		if err := json.Unmarshal(msg.Body, &row); err != nil {
			log.Printf("decode mirror job failed: %v", err)
			metrics.MirrorFailures.Inc()
			continue
		}

		if err := sheetLogger.Append(ctx, row); err != nil {
			log.Printf("mirror append failed for roll %s: %v", row.RollNumber, err)
			metrics.MirrorFailures.Inc()
			continue
		}
		log.Printf("mirrored attendance for roll %s", row.RollNumber)
	}

	log.Println("worker stopped")
}
