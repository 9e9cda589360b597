package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/VaitaR/chainscan/pkg/aggregator"
	"github.com/VaitaR/chainscan/pkg/chains"
	"github.com/VaitaR/chainscan/pkg/client"
	"github.com/VaitaR/chainscan/pkg/common/config"
	"github.com/VaitaR/chainscan/pkg/common/logger"
	"github.com/VaitaR/chainscan/pkg/infra"
	"github.com/VaitaR/chainscan/pkg/ratelimiter"
	"github.com/VaitaR/chainscan/pkg/scanner"
)

var (
	flagProvider string
	flagVersion  string
	flagChain    string
	flagAPIKey   string
	flagConfig   string
	flagDebug    bool
)

func main() {
	root := &cobra.Command{
		Use:   "chainscan",
		Short: "Query EVM blockchain explorer APIs through one interface",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagDebug {
				level = slog.LevelDebug
			}
			logger.Init(&logger.Options{Level: level, TimeFormat: time.TimeOnly})
		},
	}
	root.PersistentFlags().StringVar(&flagProvider, "provider", "etherscan", "provider name")
	root.PersistentFlags().StringVar(&flagVersion, "version", "v2", "provider version")
	root.PersistentFlags().StringVar(&flagChain, "chain", "ethereum", "chain id, name or alias")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "provider API key")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging")

	root.AddCommand(chainsCmd(), balanceCmd(), txsCmd(), harvestCmd())

	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadConfig() *config.Config {
	if flagConfig == "" {
		return &config.Config{}
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		logger.Fatal("cannot load config", "path", flagConfig, "error", err)
	}
	return cfg
}

func newClient(cfg *config.Config) *client.Client {
	apiKey := flagAPIKey
	pc := cfg.Provider(flagProvider)
	if apiKey == "" {
		apiKey = pc.APIKey
	}

	opts := []client.Option{
		client.WithTelemetry(infra.SlogTelemetry{Logger: logger.L()}),
	}
	if pc.RPS > 0 {
		burst := pc.Burst
		if burst == 0 {
			burst = pc.RPS
		}
		opts = append(opts, client.WithRateLimiter(ratelimiter.Shared(flagProvider, pc.RPS, burst)))
	}
	if cfg.Cache.Directory != "" {
		cache, err := infra.NewBadgerCache(cfg.Cache.Directory, flagProvider)
		if err != nil {
			logger.Fatal("cannot open cache", "dir", cfg.Cache.Directory, "error", err)
		}
		ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
		if ttl == 0 {
			ttl = 10 * time.Minute
		}
		opts = append(opts, client.WithCache(cache, ttl))
	}

	c, err := client.New(flagProvider, flagVersion, flagChain, apiKey, opts...)
	if err != nil {
		logger.Fatal("cannot create client", "provider", flagProvider, "chain", flagChain, "error", err)
	}
	return c
}

func chainsCmd() *cobra.Command {
	var provider string
	var testnets bool
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List known chains",
		Run: func(cmd *cobra.Command, args []string) {
			f := chains.Filter{Provider: provider}
			if !testnets {
				mainnet := false
				f.Testnet = &mainnet
			}
			for _, c := range chains.List(f) {
				fmt.Printf("%-10d %-12s %-24s %s\n", c.ChainID, c.Name, c.DisplayName, c.Currency)
			}
		},
	}
	cmd.Flags().StringVar(&provider, "supported-by", "", "only chains supported by this provider")
	cmd.Flags().BoolVar(&testnets, "testnets", false, "include testnets")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Native-currency balance of an address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()
			c := newClient(loadConfig())
			defer c.Close()

			wei, err := c.Balance(ctx, args[0])
			if err != nil {
				logger.Fatal("balance query failed", "error", err)
			}
			d, err := decimal.NewFromString(wei)
			if err != nil {
				logger.Fatal("unparseable balance", "raw", wei, "error", err)
			}
			ether := d.Shift(-18)
			fmt.Printf("%s %s (%s wei)\n", ether.String(), c.Chain().Currency, wei)
		},
	}
}

func txsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "txs <address>",
		Short: "Recent transactions of an address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()
			c := newClient(loadConfig())
			defer c.Close()

			result, err := c.Call(ctx, scanner.AccountTransactions, map[string]any{
				"address": args[0],
				"page":    1,
				"offset":  limit,
				"sort":    "desc",
			})
			if err != nil {
				logger.Fatal("transaction query failed", "error", err)
			}
			records, err := client.Records(result)
			if err != nil {
				logger.Fatal("unexpected response shape", "error", err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "number of transactions")
	return cmd
}

func harvestCmd() *cobra.Command {
	var (
		startBlock uint64
		endBlock   uint64
		workers    int
		pageSize   int
		lenient    bool
		method     string
	)
	cmd := &cobra.Command{
		Use:   "harvest <address>",
		Short: "Collect every record for an address over a block interval",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()
			cfg := loadConfig()
			c := newClient(cfg)
			defer c.Close()

			m, ok := map[string]scanner.Method{
				"txs":      scanner.AccountTransactions,
				"internal": scanner.AccountInternalTxs,
				"erc20":    scanner.AccountERC20Transfers,
				"logs":     scanner.EventLogs,
			}[method]
			if !ok {
				logger.Fatal("unknown harvest method", "method", method)
			}
			if workers == 0 {
				workers = cfg.Harvest.MaxConcurrent
			}
			if pageSize == 0 {
				pageSize = cfg.Harvest.PageSize
			}

			var tel infra.Telemetry = infra.SlogTelemetry{Logger: logger.L()}
			if cfg.Telemetry.NATSURL != "" {
				nt, err := infra.NewNATSTelemetry(cfg.Telemetry.NATSURL, cfg.Telemetry.SubjectPrefix)
				if err != nil {
					logger.Fatal("cannot connect telemetry", "url", cfg.Telemetry.NATSURL, "error", err)
				}
				defer nt.Close()
				tel = nt
			}

			report, err := aggregator.FetchAll(ctx, c, aggregator.Options{
				Method:        m,
				Address:       args[0],
				StartBlock:    startBlock,
				EndBlock:      endBlock,
				MaxConcurrent: workers,
				PageSize:      pageSize,
				Lenient:       lenient || cfg.Harvest.Lenient,
				Telemetry:     tel,
			})
			if err != nil {
				partial := 0
				if report != nil {
					partial = len(report.Records)
				}
				logger.Error("harvest incomplete", "error", err, "records", partial)
				os.Exit(1)
			}
			logger.Info("harvest complete",
				"records", report.Stats.Records,
				"requests", report.Stats.Requests,
				"splits", report.Stats.RangesSplit,
				"failed_ranges", report.Stats.RangesFailed,
			)
			enc := json.NewEncoder(os.Stdout)
			_ = enc.Encode(report.Records)
		},
	}
	cmd.Flags().Uint64Var(&startBlock, "start", 0, "start block (inclusive)")
	cmd.Flags().Uint64Var(&endBlock, "end", 0, "end block (inclusive, 0 = chain head)")
	cmd.Flags().IntVar(&workers, "workers", 0, "max concurrent requests")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "provider page ceiling")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "skip failed ranges instead of aborting")
	cmd.Flags().StringVar(&method, "method", "txs", "txs, internal, erc20 or logs")
	return cmd
}
