package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/schemalab/graph"
	"github.com/c360studio/schemalab/schema"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Compile and analyze schema files",
	}

	cmd.AddCommand(schemaCompileCmd())
	cmd.AddCommand(schemaAnalyzeCmd())
	cmd.AddCommand(schemaCheckCmd())
	cmd.AddCommand(schemaWatchCmd())

	return cmd
}

func schemaCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a schema file and print its structure",
		Long: `Compile a schema file and print its nodes, edges, and properties.
Without a file argument the built-in example schema is compiled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, source, err := compileArg(args)
			if err != nil {
				return err
			}

			fmt.Printf("Compiled %s: %d nodes, %d edges\n\n", source, s.NodeCount(), s.EdgeCount())

			fmt.Println("Nodes:")
			for _, node := range s.Nodes {
				fmt.Printf("  %s\n", node)
			}

			fmt.Println("\nEdges:")
			for _, edge := range s.Edges {
				fmt.Printf("  %s\n", edge)
			}

			rows := s.PropertyRows()
			if len(rows) > 0 {
				fmt.Println("\nProperties:")
				w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "  ENTITY\tPROPERTY\tTYPE")
				for _, row := range rows {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", row.Entity, row.Property, row.Type)
				}
				w.Flush()
			}
			return nil
		},
	}
}

func schemaAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze schema graph structure",
		Long: `Build the schema graph and report connectivity, degree centrality,
and any integrity warnings. Without a file argument the built-in
example schema is analyzed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, source, err := compileArg(args)
			if err != nil {
				return err
			}

			g, warnings := graph.Build(s)
			stats := graph.Analyze(g)

			fmt.Printf("Schema: %s\n", source)
			fmt.Printf("Nodes: %d  Edges: %d\n", stats.NodeCount, stats.EdgeCount)
			fmt.Printf("Weakly connected: %v\n", stats.WeaklyConnected)

			if stats.HasCentrality {
				fmt.Printf("Most central: %s\n\n", stats.MostCentral)
				w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NODE\tDEGREE CENTRALITY")
				for _, node := range g.Nodes() {
					fmt.Fprintf(w, "%s\t%.3f\n", node, stats.DegreeCentrality[node])
				}
				w.Flush()
			}

			printWarnings(warnings)
			return nil
		},
	}
}

func schemaCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <pattern>...",
		Short: "Check schema files for errors and warnings",
		Long: `Compile every schema file matched by the given path or glob
patterns (doublestar globs like schemas/**/*.yaml are supported) and
report syntax errors and graph integrity warnings. Exits non-zero when
any file fails to compile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := schema.ResolveFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no schema files matched %s", strings.Join(args, " "))
			}

			failures := 0
			for _, file := range files {
				s, err := schema.CompileFile(file)
				if err != nil {
					failures++
					fmt.Printf("✗ %s: %v\n", file, err)
					continue
				}

				_, warnings := graph.Build(s)
				if len(warnings) == 0 {
					fmt.Printf("✓ %s (%d nodes, %d edges)\n", file, s.NodeCount(), s.EdgeCount())
					continue
				}

				fmt.Printf("⚠ %s (%d nodes, %d edges)\n", file, s.NodeCount(), s.EdgeCount())
				for _, w := range warnings {
					fmt.Printf("    %s\n", w)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d schema files failed to compile", failures, len(files))
			}
			return nil
		},
	}
}

func schemaWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a schema file and re-analyze on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher, err := schema.NewWatcher(schema.WatcherConfig{Path: args[0]})
			if err != nil {
				return err
			}
			defer watcher.Stop()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := watcher.Start(ctx); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case event := <-watcher.Events():
					if event.Error != nil {
						fmt.Printf("✗ %s: %v\n", event.Path, event.Error)
						continue
					}
					g, warnings := graph.Build(event.Schema)
					stats := graph.Analyze(g)
					fmt.Printf("✓ %s: %d nodes, %d edges, connected=%v\n",
						event.Path, stats.NodeCount, stats.EdgeCount, stats.WeaklyConnected)
					printWarnings(warnings)
				}
			}
		},
	}
}

// compileArg compiles the file named in args, or the built-in example
// when no argument was given.
func compileArg(args []string) (*schema.Schema, string, error) {
	if len(args) == 0 {
		s, err := schema.Compile(schema.DefaultText)
		return s, "built-in example", err
	}
	s, err := schema.CompileFile(args[0])
	return s, args[0], err
}

func printWarnings(warnings []graph.Warning) {
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}
