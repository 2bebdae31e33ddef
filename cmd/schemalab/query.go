package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/schemalab/config"
	"github.com/c360studio/schemalab/dataset"
	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/insight"
	"github.com/c360studio/schemalab/query"
	"github.com/c360studio/schemalab/schema"
)

func queryCmd() *cobra.Command {
	var (
		configPath  string
		withInsight bool
		showIntent  bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Parse and execute a natural-language query",
		Long: `Parse the query text into a structured intent and execute it
against the configured dataset. Queries that match no known pattern
fall back to a customer overview.

Examples:
  schemalab query "show me customers who placed orders for more than 2 items in the last 30 days"
  schemalab query "find customers with total order value greater than $500"
  schemalab query --insight "which categories have average price above $100"

Run without arguments to list the example query templates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printTemplates()
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			intent := query.Parse(text)

			if showIntent {
				fmt.Printf("Intent: %s\n", intent.Kind)
			}
			for _, param := range intent.Defaulted {
				fmt.Fprintf(os.Stderr, "Note: %s not found in query, using default\n", param)
			}

			ds, err := loadQueryDataset(cfg)
			if err != nil {
				return err
			}

			result, err := engine.Execute(intent, ds, time.Now())
			if err != nil {
				return err
			}

			printResult(result)

			if withInsight {
				return generateInsight(cmd.Context(), cfg, text, result)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().BoolVar(&withInsight, "insight", false, "Generate LLM insights for the result")
	cmd.Flags().BoolVar(&showIntent, "show-intent", false, "Print the parsed intent kind")

	return cmd
}

func printTemplates() {
	names := make([]string, 0, len(query.Templates))
	for name := range query.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Example query templates:")
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, query.Templates[name])
	}
	w.Flush()
}

func loadQueryDataset(cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.Dataset.Fixture != "" {
		return dataset.Load(cfg.Dataset.Fixture)
	}
	return dataset.Generate(dataset.GenerateConfig{
		Seed:      cfg.Dataset.Seed,
		Customers: cfg.Dataset.Customers,
		Products:  cfg.Dataset.Products,
		Orders:    cfg.Dataset.Orders,
	}), nil
}

func printResult(result *engine.Result) {
	if result.Len() == 0 {
		fmt.Println("No rows matched.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(result.Columns, "\t")))
	for i := 0; i < result.Len(); i++ {
		cells := result.Cells(i)
		parts := make([]string, len(cells))
		for j, cell := range cells {
			parts[j] = fmt.Sprintf("%v", cell)
		}
		fmt.Fprintln(w, strings.Join(parts, "\t"))
	}
	w.Flush()
	fmt.Printf("\n%d rows\n", result.Len())
}

func generateInsight(ctx context.Context, cfg *config.Config, queryText string, result *engine.Result) error {
	if len(cfg.Insight.Endpoints) == 0 {
		return fmt.Errorf("no insight endpoints configured")
	}

	s, err := activeSchema(cfg)
	if err != nil {
		return err
	}

	client := insight.NewClient(cfg.Insight.Endpoints,
		insight.WithTemperature(cfg.Insight.Temperature))

	ctx, cancel := context.WithTimeout(ctx, cfg.Insight.Timeout)
	defer cancel()

	fmt.Println("\nGenerating insights...")
	text, err := client.Generate(ctx, s, queryText, result)
	if err != nil {
		fmt.Println(text)
		return err
	}

	fmt.Println(text)
	return nil
}

// activeSchema compiles the configured schema file, or the built-in
// example when none is configured.
func activeSchema(cfg *config.Config) (*schema.Schema, error) {
	if cfg.Schema.Path != "" {
		return schema.CompileFile(cfg.Schema.Path)
	}
	return schema.Compile(schema.DefaultText)
}
