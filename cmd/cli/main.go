package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smsspend/internal/app"
	"github.com/dvloznov/smsspend/internal/config"
	"github.com/dvloznov/smsspend/internal/domain"
	"github.com/dvloznov/smsspend/internal/extraction"
	"github.com/dvloznov/smsspend/internal/history"
	"github.com/dvloznov/smsspend/internal/logger"
	"github.com/dvloznov/smsspend/internal/stats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.NewWithOptions(logger.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: "cli",
		Out:       os.Stderr,
	})

	switch os.Args[1] {
	case "add":
		runAdd(cfg, log)
	case "delete":
		runDelete(cfg, log)
	case "list":
		runList(cfg, log)
	case "stats":
		runStats(cfg, log)
	case "history":
		runHistory(cfg, log)
	case "import":
		runImport(cfg, log)
	case "samples":
		runSamples()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SMS Spend CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  add       Add a transaction manually")
	fmt.Println("  delete    Delete a transaction by ID")
	fmt.Println("  list      List transactions, newest first")
	fmt.Println("  stats     Show totals and the 7-day trend")
	fmt.Println("  history   Show transactions grouped by date")
	fmt.Println("  import    Extract a transaction from an SMS with Gemini")
	fmt.Println("  samples   Print sample SMS messages to try with import")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func open(cfg *config.Config, log zerolog.Logger) (*app.App, context.Context) {
	a, err := app.Open(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	return a, logger.WithContext(context.Background(), log)
}

func runAdd(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.String("amount", "", "Amount spent, e.g. 12.50 or 12,50")
	merchant := fs.String("merchant", "", "Merchant name")
	category := fs.String("category", "", "Category (default "+domain.DefaultManualCategory+")")
	date := fs.String("date", "", "Date as YYYY-MM-DD (default today)")
	fs.Parse(os.Args[2:])

	a, ctx := open(cfg, log)
	defer a.Close()

	tx, err := a.Tracker.AddManual(ctx, domain.ManualEntry{
		Amount:   *amount,
		Merchant: *merchant,
		Category: *category,
		Date:     *date,
	})
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		for _, f := range validation.Fields {
			fmt.Fprintf(os.Stderr, "  --%s %s\n", f.Field, f.Message)
		}
		a.Close()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add transaction")
	}

	fmt.Printf("Added %s: %.2f at %s on %s (%s)\n", tx.ID, tx.Amount, tx.Merchant, tx.Date, tx.Category)
}

func runDelete(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Transaction ID to delete")
	fs.Parse(os.Args[2:])

	if *id == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	a, ctx := open(cfg, log)
	defer a.Close()

	if err := a.Tracker.DeleteTransaction(ctx, *id); err != nil {
		log.Fatal().Err(err).Msg("Failed to delete transaction")
	}
	fmt.Printf("Deleted %s\n", *id)
}

func runList(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	limit := fs.Int("limit", 0, "Show at most this many transactions (0 for all)")
	fs.Parse(os.Args[2:])

	a, _ := open(cfg, log)
	defer a.Close()

	txs := a.Tracker.GetTransactions()
	if *limit > 0 && len(txs) > *limit {
		txs = txs[:*limit]
	}

	if *asJSON {
		printJSON(txs)
		return
	}
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	printTransactions(os.Stdout, txs)
}

func runStats(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON instead of text")
	fs.Parse(os.Args[2:])

	a, _ := open(cfg, log)
	defer a.Close()

	d := a.Tracker.GetDashboardStats()
	if *asJSON {
		printJSON(d)
		return
	}
	printDashboard(os.Stdout, d)
}

func runHistory(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON instead of text")
	fs.Parse(os.Args[2:])

	a, _ := open(cfg, log)
	defer a.Close()

	buckets := a.Tracker.GetGroupedHistory()
	if *asJSON {
		printJSON(buckets)
		return
	}
	if len(buckets) == 0 {
		fmt.Println("No transactions yet.")
		return
	}
	printHistory(os.Stdout, buckets)
}

func runImport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	text := fs.String("text", "", "SMS text (reads stdin when empty)")
	sample := fs.Int("sample", 0, "Use sample message N (1-based) instead of --text")
	fs.Parse(os.Args[2:])

	sms := *text
	switch {
	case *sample > 0:
		samples := extraction.SampleMessages()
		if *sample > len(samples) {
			log.Fatal().Int("sample", *sample).Int("available", len(samples)).Msg("No such sample")
		}
		sms = samples[*sample-1]
	case sms == "":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		sms = string(data)
	}

	a, ctx := open(cfg, log)
	defer a.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	tx, err := a.Tracker.ImportFromText(ctx, sms)
	switch {
	case errors.Is(err, extraction.ErrIncomplete):
		fmt.Fprintln(os.Stderr, "Could not extract valid transaction details. Please try again or enter manually.")
		a.Close()
		os.Exit(2)
	case errors.Is(err, extraction.ErrServiceUnavailable):
		log.Error().Err(err).Msg("Extraction service unavailable")
		a.Close()
		os.Exit(3)
	case err != nil:
		log.Fatal().Err(err).Msg("Import failed")
	case tx == nil:
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Printf("Imported %s: %.2f at %s on %s (%s)\n", tx.ID, tx.Amount, tx.Merchant, tx.Date, tx.Category)
}

func runSamples() {
	for i, s := range extraction.SampleMessages() {
		fmt.Printf("%d. %s\n", i+1, s)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func printTransactions(out io.Writer, txs []domain.Transaction) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAMOUNT\tMERCHANT\tCATEGORY\tSOURCE\tID")
	for _, tx := range txs {
		source := "manual"
		if tx.Extracted() {
			source = "sms"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%s\n", tx.Date, tx.Amount, tx.Merchant, tx.Category, source, tx.ID)
	}
	w.Flush()
}

func printDashboard(out io.Writer, d stats.Dashboard) {
	fmt.Fprintf(out, "As of %s\n", d.Today)
	fmt.Fprintf(out, "  Total spent:   %.2f\n", d.TotalSpent)
	fmt.Fprintf(out, "  Today:         %.2f\n", d.TodaySpent)
	fmt.Fprintf(out, "  Transactions:  %d\n", d.TransactionCount)

	fmt.Fprintln(out, "\nLast 7 days:")
	peak := 0.0
	for _, p := range d.WeeklySeries {
		if p.Amount > peak {
			peak = p.Amount
		}
	}
	for _, p := range d.WeeklySeries {
		bar := 0
		if peak > 0 {
			bar = int(p.Amount / peak * 30)
		}
		fmt.Fprintf(out, "  %s  %8.2f  %s\n", p.Label, p.Amount, strings.Repeat("#", bar))
	}

	if len(d.Categories) > 0 {
		fmt.Fprintln(out, "\nBy category:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range d.Categories {
			fmt.Fprintf(w, "  %s\t%.2f\t(%d)\n", c.Category, c.Amount, c.Count)
		}
		w.Flush()
	}
}

func printHistory(out io.Writer, buckets []history.Bucket) {
	for i, b := range buckets {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  (%.2f)\n", b.Date, b.Total)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, tx := range b.Transactions {
			fmt.Fprintf(w, "  %.2f\t%s\t%s\t%s\n", tx.Amount, tx.Merchant, tx.Category, tx.ID)
		}
		w.Flush()
	}
}
