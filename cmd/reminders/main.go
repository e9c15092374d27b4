// Command reminders executes one reminder pass and exits. Meant for
// setups that prefer an external cron over the in-process scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aguilarm/mobiliario/internal/config"
	"github.com/aguilarm/mobiliario/internal/db"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/reminder"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		slog.Error("invalid time zone", "zone", cfg.TimeZone, "error", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var m mailer.Mailer = mailer.Log{}
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			slog.Error("failed to set up SMTP", "error", err)
			os.Exit(1)
		}
		m = smtp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sum, err := reminder.Run(ctx, database, m, time.Now().In(loc))
	if err != nil {
		slog.Error("reminder run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("matched %d, sent %d, skipped %d, failed %d\n",
		sum.Matched, sum.Sent, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
