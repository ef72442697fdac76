package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/infrastructure/logger"
	"github.com/iho/paycore/internal/infrastructure/postgres"
)

// migration runners are swapped in tests
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

type apiClient struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	api := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "paycore-cli",
		Short:         "Paycore CLI tool",
		Long:          `A command line interface for operating the Paycore ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&api.baseURL, "url", "http://localhost:8080", "Base URL of the Paycore API")
	rootCmd.PersistentFlags().DurationVar(&api.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		ledgerCmd(api),
		reportCmd(api),
		settlementCmd(api),
		fxCmd(api),
		migrateCmd(),
	)

	return rootCmd
}

func ledgerCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that account balances match posted entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := api.do(http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}

			var result dto.ConsistencyResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return apiError(status, body)
			}

			out := cmd.OutOrStdout()
			if !result.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED\n")
				printJSON(out, body)
				return fmt.Errorf("ledger inconsistent: difference %s", result.Difference)
			}

			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Total balance: %s\n", result.TotalBalance)
			fmt.Fprintf(out, "Total entries: %s\n", result.TotalEntries)
			return nil
		},
	})

	return cmd
}

func reportCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Accounting reports",
	}

	var date string
	eod := &cobra.Command{
		Use:   "eod",
		Short: "End-of-day report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/reports/eod"
			if date != "" {
				path += "?date=" + url.QueryEscape(date)
			}
			return api.getAndPrint(cmd.OutOrStdout(), path)
		},
	}
	eod.Flags().StringVar(&date, "date", "", "Report date as YYYY-MM-DD (default today)")

	cmd.AddCommand(
		eod,
		&cobra.Command{
			Use:   "reconcile",
			Short: "Reconcile every account against its entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return api.getAndPrint(cmd.OutOrStdout(), "/api/v1/reports/reconciliation")
			},
		},
		&cobra.Command{
			Use:   "trial-balance",
			Short: "Debit and credit totals per account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return api.getAndPrint(cmd.OutOrStdout(), "/api/v1/reports/trial-balance")
			},
		},
	)

	return cmd
}

func settlementCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settlement operations",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List settlements by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.getAndPrint(cmd.OutOrStdout(), "/api/v1/settlements?status="+url.QueryEscape(strings.ToUpper(status)))
		},
	}
	list.Flags().StringVar(&status, "status", "PENDING", "PENDING, COMPLETED or FAILED")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Process one batch of due settlements",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				status, body, err := api.do(http.MethodPost, "/api/v1/settlements/process", nil)
				if err != nil {
					return err
				}
				if status != http.StatusOK {
					return apiError(status, body)
				}

				var res dto.BatchResultResponse
				if err := json.Unmarshal(body, &res); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed: %d  Succeeded: %d  Failed: %d  Skipped: %d\n",
					res.Processed, res.Succeeded, res.Failed, res.Skipped)
				for _, d := range res.Details {
					line := fmt.Sprintf("  %s  %-15s  %s", d.SettlementID, d.Outcome, d.Status)
					if d.Error != "" {
						line += "  " + truncate(d.Error, 60)
					}
					fmt.Fprintln(out, line)
				}
				return nil
			},
		},
		list,
	)

	return cmd
}

func fxCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Currency conversion",
	}

	var from, to, amount, tier string
	rate := &cobra.Command{
		Use:   "rate",
		Short: "Quote a currency pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("from", strings.ToUpper(from))
			q.Set("to", strings.ToUpper(to))
			if amount != "" {
				q.Set("amount", amount)
			}
			if tier != "" {
				q.Set("tier", tier)
			}
			return api.getAndPrint(cmd.OutOrStdout(), "/api/v1/fx/rates?"+q.Encode())
		},
	}
	rate.Flags().StringVar(&from, "from", "", "Source currency")
	rate.Flags().StringVar(&to, "to", "", "Target currency")
	rate.Flags().StringVar(&amount, "amount", "", "Volume to price the spread for")
	rate.Flags().StringVar(&tier, "tier", "", "Customer tier")
	_ = rate.MarkFlagRequired("from")
	_ = rate.MarkFlagRequired("to")

	cmd.AddCommand(rate)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (default $DATABASE_URL)")

	resolve := func() (string, error) {
		if databaseURL != "" {
			return databaseURL, nil
		}
		if v := os.Getenv("DATABASE_URL"); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("--database-url or DATABASE_URL is required")
	}

	run := func(done string, fn func(string, zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			dbURL, err := resolve()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
			if err := fn(dbURL, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run("migrations applied", func(u string, l zerolog.Logger) error { return migrateUp(u, l) }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE:  run("migrations rolled back", func(u string, l zerolog.Logger) error { return migrateDown(u, l) }),
		},
	)

	return cmd
}

func (c *apiClient) do(method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("error reading response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *apiClient) getAndPrint(out io.Writer, path string) error {
	status, body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	printJSON(out, body)
	return nil
}

func apiError(status int, body []byte) error {
	var e dto.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("request failed (status %d): %s: %s", status, e.Error, e.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", status, e.Error)
	}
	return fmt.Errorf("request failed (status %d): %s", status, truncate(string(body), 200))
}

func printJSON(out io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(out, string(body))
		return
	}
	fmt.Fprintln(out, buf.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
