// cable-quote CLI - Adaptive catalogue reconciliation and quotation engine
//
// Usage:
//
//	cablequote upload --file prices.csv [--intent "these are test prices"]
//	cablequote match --voltage 11 --area 240 --conductor Copper
//	cablequote quote --line HT-CU-11-240-3C:500 --services
//	cablequote modify --breakdown quote.json --instruction "set total to 500000"
//	cablequote serve --port 8080
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	httpapi "cable-quote/api"
	"cable-quote/db/clickhouse"
	"cable-quote/internal/embedding"
	"cable-quote/internal/engine"
	"cable-quote/pkg/api"
	"cable-quote/pkg/money"
	"cable-quote/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "cablequote",
		Usage:   "Adaptive schema reconciliation and spec-matching quotation engine",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"CABLEQUOTE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "embed-provider",
				Value:   "lexical",
				Usage:   "Embedding backend (lexical, ollama)",
				EnvVars: []string{"CABLEQUOTE_EMBED_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "ollama-endpoint",
				Value:   "http://localhost:11434",
				Usage:   "Ollama server endpoint",
				EnvVars: []string{"OLLAMA_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "ollama-model",
				Value:   "embeddinggemma",
				Usage:   "Ollama embedding model",
				EnvVars: []string{"OLLAMA_MODEL"},
			},
			&cli.BoolFlag{
				Name:    "snapshots",
				Usage:   "Persist uploads and quotations to ClickHouse",
				EnvVars: []string{"CABLEQUOTE_SNAPSHOTS"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "cablequote",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			uploadCommand(),
			matchCommand(),
			quoteCommand(),
			modifyCommand(),
			compareCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine wires the engine from global flags.
func buildEngine(c *cli.Context, logger *slog.Logger) (*engine.Engine, error) {
	embedder, err := embedding.New(embedding.Config{
		Provider:       c.String("embed-provider"),
		OllamaEndpoint: c.String("ollama-endpoint"),
		OllamaModel:    c.String("ollama-model"),
	})
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{}
	if c.Bool("snapshots") {
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot store unavailable: %w", err)
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithSnapshotter(store))
	}

	return engine.New(embedder, logger, opts...), nil
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Reconcile an uploaded table into the session override store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Path to delimited table", Required: true},
			&cli.StringFlag{Name: "intent", Usage: "Free-text description of the data"},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}

			path := c.String("file")
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", path, err)
			}

			result := eng.Upload(c.Context, api.UploadRequest{
				TableText: string(content),
				Filename:  path,
				Intent:    c.String("intent"),
			})
			if c.String("format") == "json" {
				return printJSON(result)
			}

			if !result.Accepted {
				fmt.Printf("Upload rejected: %s\n", result.Error)
				if len(result.DetectedHeaders) > 0 {
					fmt.Printf("Detected headers: %s\n", strings.Join(result.DetectedHeaders, ", "))
					fmt.Println("Hint: re-run with --intent describing the data, e.g. --intent \"these are test prices\"")
				}
				return nil
			}
			fmt.Printf("Accepted as %q (%.0f%% via %s), %d rows\n",
				result.RecordType, result.Confidence*100, result.Method, result.RowCount)
			for canonical, original := range result.Mapping.Mapping {
				fmt.Printf("  %-16s <- %-20s (%.2f)\n", canonical, original, result.Mapping.Confidence[canonical])
			}
			for _, missing := range result.Mapping.UnmappedCanonical {
				fmt.Printf("  %-16s <- (unmapped)\n", missing)
			}
			return nil
		},
	}
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Rank catalogue entries against a structured requirement",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "voltage", Usage: "Rated voltage in kV"},
			&cli.Float64Flag{Name: "area", Usage: "Cross-section area in sqmm"},
			&cli.Float64Flag{Name: "cores", Usage: "Number of cores"},
			&cli.StringFlag{Name: "conductor", Usage: "Conductor material (Copper, Aluminium)"},
			&cli.StringFlag{Name: "insulation", Usage: "Insulation type (XLPE, PVC)"},
			&cli.StringFlag{Name: "armoured", Usage: "Armoured (yes/no)"},
			&cli.Float64Flag{Name: "temp", Usage: "Temperature rating in °C"},
			&cli.StringFlag{Name: "standard", Usage: "Manufacturing standard"},
			&cli.IntFlag{Name: "top", Value: 3, Usage: "Number of matches to return"},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}

			req := api.RequirementSpec{}
			if c.IsSet("voltage") {
				req.VoltageKV = api.Float(c.Float64("voltage"))
			}
			if c.IsSet("area") {
				req.AreaSqmm = api.Float(c.Float64("area"))
			}
			if c.IsSet("cores") {
				req.Cores = api.Float(c.Float64("cores"))
			}
			if c.IsSet("conductor") {
				req.Conductor = api.Str(c.String("conductor"))
			}
			if c.IsSet("insulation") {
				req.Insulation = api.Str(c.String("insulation"))
			}
			if c.IsSet("armoured") {
				req.Armoured = api.Bool(strings.EqualFold(c.String("armoured"), "yes"))
			}
			if c.IsSet("temp") {
				req.TempRatingC = api.Float(c.Float64("temp"))
			}
			if c.IsSet("standard") {
				req.Standard = api.Str(c.String("standard"))
			}

			matches := eng.FindTopMatches(req, c.Int("top"))
			if c.String("format") == "json" {
				return printJSON(matches)
			}

			fmt.Printf("%-20s %5s  %-10s %s\n", "SKU", "SCORE", "PRICE", "NAME")
			for _, m := range matches {
				fmt.Printf("%-20s %5d  %-10s %s\n",
					m.SKU, m.Score, money.FormatINR(m.Entry.UnitPrice), m.Entry.Name)
				if len(m.PartialAttributes) > 0 {
					fmt.Printf("  partial: %s\n", strings.Join(m.PartialAttributes, ", "))
				}
				if len(m.UnmatchedAttributes) > 0 {
					fmt.Printf("  unmatched: %s\n", strings.Join(m.UnmatchedAttributes, ", "))
				}
			}
			return nil
		},
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Compute an itemized quotation breakdown",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "line", Aliases: []string{"l"}, Usage: "SKU:QTY pair, repeatable", Required: true},
			&cli.BoolFlag{Name: "services", Usage: "Include ancillary service line items"},
			&cli.StringFlag{Name: "tax-rate", Usage: "Tax rate override, e.g. 0.18"},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}

			req := api.QuoteRequest{
				IncludeServices: c.Bool("services"),
				TaxRate:         c.String("tax-rate"),
			}
			for _, pair := range c.StringSlice("line") {
				sku, qtyStr, found := strings.Cut(pair, ":")
				if !found {
					return fmt.Errorf("invalid --line %q, expected SKU:QTY", pair)
				}
				qty, err := strconv.ParseFloat(qtyStr, 64)
				if err != nil {
					return fmt.Errorf("invalid quantity in --line %q", pair)
				}
				req.Lines = append(req.Lines, api.QuoteLine{SKU: sku, Quantity: qty})
			}

			breakdown, err := eng.Quote(c.Context, req)
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return printJSON(breakdown)
			}
			printBreakdown(breakdown)
			return nil
		},
	}
}

func modifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "modify",
		Usage: "Apply a natural-language instruction to a saved breakdown",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "breakdown", Aliases: []string{"b"}, Usage: "Path to breakdown JSON", Required: true},
			&cli.StringFlag{Name: "instruction", Aliases: []string{"i"}, Usage: "Amendment instruction", Required: true},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(c.String("breakdown"))
			if err != nil {
				return err
			}
			var b api.QuotationBreakdown
			if err := json.Unmarshal(content, &b); err != nil {
				return fmt.Errorf("invalid breakdown JSON: %w", err)
			}

			result := eng.Modify(c.String("instruction"), b)
			if c.String("format") == "json" {
				return printJSON(result)
			}

			if !result.Success {
				fmt.Printf("Not applied: %s\n", result.Error)
				fmt.Println("Try phrasings like:")
				for _, ex := range result.Examples {
					fmt.Printf("  %q\n", ex)
				}
				return nil
			}
			for _, change := range result.Changes {
				fmt.Println(change)
			}
			printBreakdown(result.Breakdown)
			return nil
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Diff the active override against the built-in default",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Value: "pricing", Usage: "Record type (pricing, testing)"},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}
			return printJSON(eng.CompareWithDefault(api.RecordType(c.String("type"))))
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Listen port", EnvVars: []string{"PORT"}},
		},
		Action: func(c *cli.Context) error {
			logger := platform.InitLogger()
			eng, err := buildEngine(c, logger)
			if err != nil {
				return err
			}
			cfg := httpapi.DefaultConfig()
			cfg.Port = c.Int("port")
			return httpapi.NewServer(eng, cfg, logger).Start()
		},
	}
}

func printBreakdown(b *api.QuotationBreakdown) {
	fmt.Printf("%-20s %-36s %8s %12s %6s %14s\n", "SKU", "DESCRIPTION", "QTY", "UNIT", "DISC", "TOTAL")
	for _, item := range b.LineItems {
		disc := ""
		if item.DiscountPct > 0 {
			disc = fmt.Sprintf("%.0f%%", item.DiscountPct)
		}
		fmt.Printf("%-20s %-36s %8.0f %12s %6s %14s\n",
			item.SKU, item.Description, item.Quantity,
			money.FormatINR(item.UnitPrice), disc, money.FormatINR(item.NetTotal))
	}
	fmt.Printf("%78s %14s\n", "Subtotal:", money.FormatINR(b.Subtotal))
	fmt.Printf("%78s %14s\n", fmt.Sprintf("Tax (%s%%):", b.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0)), money.FormatINR(b.TaxAmount))
	fmt.Printf("%78s %14s\n", "Grand Total:", money.FormatINR(b.GrandTotal))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
