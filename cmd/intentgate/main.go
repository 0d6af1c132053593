package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/engine"
)

var (
	configFile string
	debugFlag  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intentgate",
		Short: "Hybrid intent classification and query routing engine",
		Long: `Intentgate classifies free-form developer commands into typed routing
decisions: which backend service a query targets (source control, CI/CD,
ticketing, graph queries, monitoring, code operations) and which specific
sub-action within it, with extracted parameters.

Classification is hybrid: fast deterministic pattern rules arbitrated
against a generative model chain, with a last-resort fallback provider
chain. Without any API keys it degrades to pattern-only classification.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to engine config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func classifyCmd() *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "classify [query]",
		Short: "Classify a natural-language query into a routing decision",
		Long: `Runs the full hybrid pipeline on the query and prints the resulting
routing decision as JSON, or as a human-readable summary with --explain.

Classification never fails: a query nothing matches resolves to the
chat fallback at the default confidence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			eng := engine.New(createAdapters(cfg), cfg.Engine, engine.WithDebug(debugFlag))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			decision := eng.Classify(ctx, query)

			if explain {
				fmt.Printf("Top level:   %s (%.2f, %s)\n", decision.TopLevel, decision.TopLevelConfidence, decision.Method)
				fmt.Printf("Sub action:  %s (%.2f)\n", decision.SubAction, decision.SubActionConfidence)
				fmt.Printf("Agreement:   %v\n", decision.Agreement)
				if len(decision.Systems) > 0 {
					parts := make([]string, len(decision.Systems))
					for i, s := range decision.Systems {
						parts[i] = string(s)
					}
					fmt.Printf("Systems:     %s\n", strings.Join(parts, ", "))
				}
				fmt.Printf("Trace:       %s\n", strings.Join(decision.Trace, " -> "))
				for k, v := range decision.Parameters {
					if k == "query" {
						continue
					}
					fmt.Printf("  %-14s %s\n", k+":", v)
				}
				return nil
			}

			out, err := json.MarshalIndent(decision, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "print a human-readable summary instead of JSON")
	return cmd
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the pattern rule tables in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			eng := engine.New(createAdapters(cfg), cfg.Engine)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRIORITY\tKIND\tRULE\tCONFIDENCE\tPATTERN")
			priority := 1
			for _, table := range eng.Rules() {
				for _, rule := range table.Rules {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n", priority, table.Kind, rule.Name, rule.Confidence, rule.Expr.String())
					priority++
				}
			}
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured adapters and models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters := createAdapters(cfg)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADAPTER\tMODEL\tSTATUS")
			for _, name := range []string{"anthropic", "openai", "google", "enterprise"} {
				status := "not configured"
				if a, ok := adapters[name]; ok {
					status = "ready"
					for _, model := range a.Models() {
						fmt.Fprintf(w, "%s\t%s\t%s\n", name, model, status)
					}
					continue
				}
				fmt.Fprintf(w, "%s\t-\t%s\n", name, status)
			}
			return w.Flush()
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadWithEngineFile(configFile)
	}
	return config.Load()
}

// createAdapters builds an adapter for every configured credential.
// Missing credentials are not an error: the engine degrades to its
// pattern stage and chat fallback.
func createAdapters(cfg *config.Config) map[string]adapter.Adapter {
	adapters := make(map[string]adapter.Adapter)

	if cfg.HasAdapter("anthropic") {
		if a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.HasAdapter("openai") {
		if a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.HasAdapter("google") {
		if a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.HasAdapter("enterprise") {
		if a, err := adapter.NewEnterpriseAdapter(cfg.EnterpriseURL, cfg.EnterpriseAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}

	return adapters
}
