package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

// cmdRemind runs one batch reminder pass: query the database once, walk the
// records sequentially, and fire one alert per overdue or due-tomorrow task.
// Scheduling is the caller's problem (cron, systemd timer).
func cmdRemind(args []string) {
	fs := flag.NewFlagSet("remind", flag.ExitOnError)
	envFile := fs.String("env", "", "path to .env file (default: ./.env if present)")
	fs.Parse(args)

	cfg := loadConfig(*envFile)
	if err := cfg.requireRemind(); err != nil {
		logError("config invalid", "error", err)
		os.Exit(1)
	}

	ids, err := newIdentityMap(cfg.Mentions)
	if err != nil {
		logError("identity map invalid", "error", err)
		os.Exit(1)
	}

	ctx := withTraceID(context.Background(), newTraceID("remind"))
	source := newNotionClient(cfg)
	notifier := newWebhookNotifier(cfg.WebhookURL)

	if err := runReminders(ctx, source, notifier, ids, time.Now()); err != nil {
		logErrorCtx(ctx, "reminder run failed", "error", err)
		os.Exit(1)
	}
}

// runReminders is the batch path: one fetch, then a strictly sequential loop.
// A fetch failure skips the whole run; a send failure skips only that task.
func runReminders(ctx context.Context, source taskSource, notifier Notifier, ids *IdentityMap, now time.Time) error {
	records, err := source.QueryTasks(ctx)
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}

	today := dateOnly(now)
	overdue, dueTomorrow := 0, 0
	for _, props := range records {
		task := extractTask(props)
		switch classifyTask(task, today) {
		case BucketOverdue:
			if sendDueAlert(ctx, notifier, task, true, ids) {
				overdue++
			}
		case BucketDueTomorrow:
			if sendDueAlert(ctx, notifier, task, false, ids) {
				dueTomorrow++
			}
		}
	}

	logInfoCtx(ctx, "reminder run complete",
		"records", len(records), "overdue", overdue, "dueTomorrow", dueTomorrow)
	return nil
}

func sendDueAlert(ctx context.Context, notifier Notifier, task Task, overdue bool, ids *IdentityMap) bool {
	if err := notifier.Send(formatDueAlert(task, overdue, ids)); err != nil {
		logErrorCtx(ctx, "alert send failed", "channel", notifier.Name(), "task", task.Name, "error", err)
		return false
	}
	return true
}
