package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const version = "0.2.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "remind":
		cmdRemind(os.Args[2:])
	case "bot":
		cmdBot(os.Args[2:])
	case "doctor":
		cmdDoctor(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Println("taskherald " + version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `taskherald - Notion task reminders for Discord

Usage:
  taskherald remind [-env FILE]   run one reminder pass (fire from cron)
  taskherald bot    [-env FILE]   run the interactive Discord bot
  taskherald doctor [-env FILE]   check config and task-source connectivity
  taskherald version              print version
  taskherald help                 show this help
`)
}

// cmdBot starts the Discord Gateway bot and blocks until SIGINT/SIGTERM.
func cmdBot(args []string) {
	fs := flag.NewFlagSet("bot", flag.ExitOnError)
	envFile := fs.String("env", "", "path to .env file (default: ./.env if present)")
	fs.Parse(args)

	cfg := loadConfig(*envFile)
	if err := cfg.requireBot(); err != nil {
		logError("config invalid", "error", err)
		os.Exit(1)
	}

	ids, err := newIdentityMap(cfg.Mentions)
	if err != nil {
		logError("identity map invalid", "error", err)
		os.Exit(1)
	}
	logInfo("starting task bot", "registered", ids.Size())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot := newTaskBot(cfg, newNotionClient(cfg), ids)
	bot.Run(ctx)
	logInfo("task bot stopped")
}

// cmdDoctor validates the configuration and probes the task source without
// sending any alerts.
func cmdDoctor(args []string) {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	envFile := fs.String("env", "", "path to .env file (default: ./.env if present)")
	fs.Parse(args)

	cfg := loadConfig(*envFile)

	check := func(label string, ok bool) {
		mark := "ok"
		if !ok {
			mark = "MISSING"
		}
		fmt.Printf("  %-24s %s\n", label, mark)
	}

	fmt.Println("Configuration:")
	check("NOTION_API_KEY", cfg.NotionAPIKey != "")
	check("DATABASE_ID", cfg.DatabaseID != "")
	check("DISCORD_WEBHOOK_URL", cfg.WebhookURL != "")
	check("DISCORD_BOT_TOKEN", cfg.BotToken != "")
	fmt.Printf("  %-24s %d configured\n", "DISCORD_ID_* mentions", len(cfg.Mentions))

	if err := cfg.requireCore(); err != nil {
		fmt.Println("\nSkipping task-source probe:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	records, err := newNotionClient(cfg).QueryTasks(ctx)
	if err != nil {
		fmt.Println("\nTask source: UNREACHABLE:", err)
		os.Exit(1)
	}
	fmt.Printf("\nTask source: ok, %d record(s)\n", len(records))
}
