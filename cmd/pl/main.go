package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/config"
	"planline/internal/gemini"
	"planline/internal/planner"
	"planline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "pl",
	Short: "Planline CLI",
	Long: `Planline breaks free-text goals into actionable task plans.
It probes the configured Gemini models in order and falls back to a
deterministic plan generator when the remote service is unavailable, so a
breakdown request always succeeds. Set GEMINI_API_KEY to enable remote
generation; without it every request is answered by the fallback.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PLANLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// The generation credential keeps its upstream name.
	_ = viper.BindEnv("gemini-api-key", "GEMINI_API_KEY")
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to planline.yml")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func registerCommands() {
	rootCmd.AddCommand(breakdownCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(configCmd())
}

// loadConfig resolves the effective config: planline.yml (explicit path or
// working directory) over the built-in defaults, credential from the
// environment. Built exactly once per invocation and passed by reference.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := viper.GetString("config"); path != "" {
		cfg, err = config.FromFile(path)
	} else {
		cfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return nil, err
	}
	cfg.API.Key = viper.GetString("gemini-api-key")
	return cfg, nil
}

func newPlanner(cfg *config.Config) (planner.Planner, *gemini.Client) {
	client := gemini.New(cfg)
	return planner.New(client, cfg.Models, cfg.Fallback.DefaultBudgetHours), client
}

func breakdownCmd() *cobra.Command {
	var goal, timeframe string
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Break a goal into tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(goal) == "" {
				return fmt.Errorf("--goal is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, _ := newPlanner(cfg)
			breakdown := p.BreakDown(cmd.Context(), strings.TrimSpace(goal), strings.TrimSpace(timeframe))
			if viper.GetBool("json") {
				return printJSON(breakdown)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Hours", "Priority"})
			for _, t := range breakdown.Tasks {
				tw.AppendRow(table.Row{t.ID, t.Title, t.EstimatedHours, t.Priority})
			}
			tw.AppendFooter(table.Row{"", "Total", breakdown.TotalEstimatedHours, ""})
			tw.Render()
			fmt.Println(breakdown.Reasoning)
			return nil
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "goal to break down")
	cmd.Flags().StringVar(&timeframe, "timeframe", "", "timeframe hint (e.g. \"2 weeks\")")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, client := newPlanner(cfg)
			handler, err := server.New(server.Config{
				Planner:  p,
				Models:   client,
				BasePath: basePath,
				Auth:     server.AuthConfig{JWTSecret: viper.GetString("jwt-secret")},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Planline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List reachable generation models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := gemini.New(cfg)
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(models)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Name", "Supports"})
			for _, m := range models {
				tw.AppendRow(table.Row{m.Name, strings.Join(m.SupportedGenerationMethods, ", ")})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect effective config",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Never echo the credential.
			shown := *cfg
			shown.API.Key = ""
			return printJSON(shown)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
