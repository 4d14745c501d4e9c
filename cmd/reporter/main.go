package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autopay/backend/internal/ai"
	"github.com/autopay/backend/internal/auth"
	"github.com/autopay/backend/internal/config"
	"github.com/autopay/backend/internal/logger"
	"github.com/autopay/backend/internal/services"
	"github.com/autopay/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "reporter",
		Short: "AutoPay operations CLI",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(hashKeyCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a transaction report for the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, _ := cmd.Flags().GetDuration("window")
			asJSON, _ := cmd.Flags().GetBool("json")
			noAI, _ := cmd.Flags().GetBool("no-ai")
			out, _ := cmd.Flags().GetString("out")
			return runReport(cmd.Context(), window, asJSON, noAI, out)
		},
	}

	cmd.Flags().Duration("window", 24*time.Hour, "Reporting window")
	cmd.Flags().BoolP("json", "j", false, "Print metrics as JSON and exit")
	cmd.Flags().Bool("no-ai", false, "Skip the AI narrative")
	cmd.Flags().StringP("out", "o", "", "Write the report to this file")

	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print a bcrypt hash for MONITORING_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashMonitoringKey(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func runReport(ctx context.Context, window time.Duration, asJSON, noAI bool, out string) error {
	cfg := config.Load()
	log := logger.New(cfg.Env, "reporter")
	slog.SetDefault(log)

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var analyzer services.ReportAnalyzer
	if !noAI && cfg.GeminiAPIKey != "" {
		analyzer = ai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	svc := services.NewReportService(st.Repos.Transactions, analyzer)

	txs, err := svc.WindowTransactions(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	metrics := svc.Metrics(txs)

	if asJSON {
		b, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	if len(txs) == 0 {
		fmt.Printf("No transactions found in the last %s.\n", window)
		return nil
	}

	printMetrics(metrics)

	if analyzer == nil {
		return nil
	}

	report, err := svc.Narrative(ctx, txs)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println()
	fmt.Println(report)

	if out != "" {
		if err := os.WriteFile(out, []byte(report+"\n"), 0o644); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		log.Info("report saved", "path", out)
	}
	return nil
}

func printMetrics(m services.ReportMetrics) {
	line := strings.Repeat("=", 50)
	fmt.Println(line)
	fmt.Println("BASIC TRANSACTION METRICS")
	fmt.Println(line)
	fmt.Printf("Total Transactions: %d\n", m.TotalCount)
	fmt.Printf("Total Amount: $%.2f\n", m.TotalAmount)
	fmt.Printf("Average Amount: $%.2f\n", m.AverageAmount)
	fmt.Printf("Successful Transactions: %d\n", m.SuccessfulCount)
	fmt.Printf("Pending Transactions: %d\n", m.PendingCount)
	fmt.Printf("Success Rate: %.1f%%\n", m.SuccessRate)
	fmt.Println(line)
}
