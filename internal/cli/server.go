package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opendeed/deedd/external/externalmock"
	"github.com/opendeed/deedd/internal/audit/postgres"
	"github.com/opendeed/deedd/internal/audit/sqlite"
	"github.com/opendeed/deedd/internal/config"
	"github.com/opendeed/deedd/internal/external"
	grpcserver "github.com/opendeed/deedd/internal/grpc"
	"github.com/opendeed/deedd/internal/ledgercore"
	"github.com/opendeed/deedd/internal/logging"
	"github.com/opendeed/deedd/internal/metrics"
	"github.com/opendeed/deedd/internal/rpc"
	"github.com/opendeed/deedd/internal/settlement"
	"github.com/opendeed/deedd/internal/storage"
	"github.com/opendeed/deedd/internal/storage/auditindex"
	"github.com/opendeed/deedd/internal/storage/database"
	"github.com/opendeed/deedd/internal/storage/database/pebble"
	"github.com/opendeed/deedd/internal/storage/leveldb"
)

// serverCmd starts the settlement engine with its JSON-RPC, websocket
// event-feed, and gRPC front ends, restoring from the configured storage
// backend's last snapshot if one exists.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the deedd settlement engine with its RPC, websocket, and gRPC front ends",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error { return runServer(cmd, args) }
}

func openStorage(cfg config.StorageConfig) (database.DB, error) {
	switch cfg.Backend {
	case "leveldb":
		return leveldb.Open(cfg.Path)
	case "pebble", "":
		return pebble.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("server: unsupported storage backend %q", cfg.Backend)
	}
}

func openAudit(cfg config.AuditConfig) (settlement.Sink, error) {
	switch cfg.Backend {
	case "postgres":
		return postgres.Open(cfg.DSN)
	case "sqlite", "":
		return sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("server: unsupported audit backend %q", cfg.Backend)
	}
}

func parseAccountHex(s string) (ledgercore.AccountID, error) {
	var a ledgercore.AccountID
	if err := a.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return a, err
	}
	return a, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	log := logging.New("server")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	db, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("server: open storage: %w", err)
	}

	store := storage.New(db)
	state, err := store.Load(context.Background())
	if err != nil {
		return fmt.Errorf("server: load snapshot: %w", err)
	}
	if state == nil {
		log.Info("no snapshot found, starting from genesis state")
	}

	auditSink, err := openAudit(cfg.Audit)
	if err != nil {
		return fmt.Errorf("server: open audit sink: %w", err)
	}

	feed := rpc.NewEventFeed()
	sink := settlement.MultiSink{auditSink, feed}

	var historyIndex *auditindex.Index
	var historyManager *pebble.Manager
	if cfg.Storage.HistoryPath != "" {
		historyManager = pebble.NewManager(cfg.Storage.HistoryPath)
		historyDB, err := historyManager.OpenDB("events")
		if err != nil {
			return fmt.Errorf("server: open account history index: %w", err)
		}
		historyIndex = auditindex.New(historyDB)
		sink = append(sink, historyIndex)
	}

	treasury, err := parseAccountHex(cfg.Market.TreasuryAccount)
	if err != nil {
		return fmt.Errorf("server: market.treasury_account: %w", err)
	}

	regions, err := external.NewCachedRegions(externalmock.NewRegions(), cfg.Market.RegionCacheSize)
	if err != nil {
		return fmt.Errorf("server: region cache: %w", err)
	}

	eng := settlement.NewEngine(settlement.Config{
		Params: settlement.Params{
			FeePercent:            cfg.Market.FeePercent,
			ListingDepositPercent: cfg.Market.ListingDepositPercent,
			MinTokens:             cfg.Market.MinTokens,
			MaxTokens:             cfg.Market.MaxTokens,
		},
		Whitelist: externalmock.NewWhitelist(),
		Regions:   regions,
		Token:     externalmock.NewPropertyToken(),
		Clock:     settlement.NewBlockClock(0),
		Sink:      sink,
		Treasury:  treasury,
	})
	if state != nil {
		eng.Restore(state)
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	rpcServer := rpc.NewServer(eng, 30*time.Second)
	if historyIndex != nil {
		rpcServer.SetHistoryReader(historyIndex)
	}
	grpcSrv := grpcserver.NewServer(grpcserver.DefaultServerConfig(), rpcServer)

	mux := http.NewServeMux()
	mux.Handle("/", rpc.AuthMiddleware(rpcServer))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpServer := &http.Server{Addr: cfg.Server.RPCAddr, Handler: mux}
	wsServer := &http.Server{Addr: cfg.Server.WSAddr, Handler: feed}

	grpcLis, err := grpcserver.Listen(cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gCtx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("rpc listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := grpcSrv.Serve(grpcLis); err != nil {
			return fmt.Errorf("grpc listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if err := store.Save(context.Background(), eng.State()); err != nil {
					log.Error(fmt.Sprintf("periodic snapshot failed: %v", err))
				}
			}
		}
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
			log.Info("shutting down")
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		wsServer.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return nil
	})

	log.Info(fmt.Sprintf("listening rpc=%s ws=%s grpc=%s", cfg.Server.RPCAddr, cfg.Server.WSAddr, cfg.Server.GRPCAddr))

	runErr := g.Wait()

	finalCtx, finalCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finalCancel()
	if err := store.Save(finalCtx, eng.State()); err != nil && runErr == nil {
		runErr = err
	}
	if closer, ok := db.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if historyManager != nil {
		if err := historyManager.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}
