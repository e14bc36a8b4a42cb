package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/blockindex"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/blockstore"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/extract"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/join"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/metrics"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	rpcclient2 "github.com/goodnatureofminers/chainverify7000-backend/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/script"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/service/pipeline"
	"github.com/goodnatureofminers/chainverify7000-backend/internal/service/verifier"
	"github.com/goodnatureofminers/chainverify7000-backend/pkg/batcher"
)

type config struct {
	BlockStoreDir      string        `long:"block-store-dir" env:"CHAIN_VERIFY_BLOCK_STORE_DIR" description:"directory holding the chunked block store and index" required:"true"`
	DataDir            string        `long:"data-dir" env:"CHAIN_VERIFY_DATA_DIR" description:"directory for pipeline artifacts" required:"true"`
	Network            model.Network `long:"network" env:"CHAIN_VERIFY_NETWORK" default:"mainnet" description:"network name"`
	StartHeight        uint32        `long:"start-height" env:"CHAIN_VERIFY_START_HEIGHT" default:"0" description:"first height to process"`
	EndHeight          uint32        `long:"end-height" env:"CHAIN_VERIFY_END_HEIGHT" default:"0" description:"process heights below this; 0 means through the index's contiguous tip"`
	ProgressInterval   uint32        `long:"progress-interval" env:"CHAIN_VERIFY_PROGRESS_INTERVAL" default:"10000" description:"blocks between progress log lines"`
	Workers            int           `long:"workers" env:"CHAIN_VERIFY_WORKERS" default:"0" description:"verification workers, 0 means GOMAXPROCS"`
	SortChunkRecords   int           `long:"sort-chunk-records" env:"CHAIN_VERIFY_SORT_CHUNK_RECORDS" default:"0" description:"records sorted in memory before spilling, 0 means the sorter default"`
	RPCURL             string        `long:"rpc-url" env:"CHAIN_VERIFY_RPC_URL" description:"bitcoind RPC URL for index gap backfill"`
	RPCUser            string        `long:"rpc-user" env:"CHAIN_VERIFY_RPC_USER" description:"bitcoind RPC username"`
	RPCPassword        string        `long:"rpc-password" env:"CHAIN_VERIFY_RPC_PASSWORD" description:"bitcoind RPC password"`
	RPCRPS             int           `long:"rpc-rps" env:"CHAIN_VERIFY_RPC_RPS" default:"4" description:"oracle calls per second"`
	ClickhouseDSN      string        `long:"clickhouse-dsn" env:"CHAIN_VERIFY_CLICKHOUSE_DSN" description:"ClickHouse DSN, empty disables reporting"`
	MetricsAddr        string        `long:"metrics-addr" env:"CHAIN_VERIFY_METRICS_ADDR" default:":2112" description:"address for metrics server"`
	FailureSampleEvery int           `long:"failure-sample-every" env:"CHAIN_VERIFY_FAILURE_SAMPLE_EVERY" default:"100" description:"report every Nth verification failure"`

	Args struct {
		Command string `positional-arg-name:"command" description:"extract-inputs | sort-inputs | extract-outputs | sort-outputs | join | sort-joined | verify | all | status | clean"`
	} `positional-args:"true" required:"true"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("chain verifier failed", zap.Error(err))
	}
}

// needsBlocks reports whether a subcommand reads blocks and therefore needs
// the index built through to the configured range.
func needsBlocks(command string) bool {
	switch command {
	case "extract-inputs", "extract-outputs", "verify", "all":
		return true
	}
	return false
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	pipelineMetrics := metrics.NewPipeline(cfg.Network)
	pipelineCfg := pipeline.Config{
		DataDir:     cfg.DataDir,
		Network:     cfg.Network,
		StartHeight: cfg.StartHeight,
		EndHeight:   cfg.EndHeight,
	}

	command := cfg.Args.Command
	if command == "clean" {
		p := pipeline.New(pipelineCfg, nil, nil, nil, nil, nil, nil, pipelineMetrics, logger)
		return p.Clean()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	params, err := script.Params(cfg.Network)
	if err != nil {
		return err
	}

	store, err := blockstore.Open(cfg.BlockStoreDir, logger)
	if err != nil {
		return fmt.Errorf("open block store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close block store", zap.Error(err))
		}
	}()

	ix, err := openIndex(ctx, cfg, store, params.GenesisHash, logger)
	if err != nil {
		return err
	}

	if cfg.EndHeight == 0 {
		tip, ok := ix.MaxContiguousHeight()
		if !ok && needsBlocks(command) {
			return errors.New("index is empty, nothing to process")
		}
		pipelineCfg.EndHeight = tip + 1
	}

	repo, sink, err := newReporting(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Stop()
	}

	reader := blockindex.NewReader(ix, store)
	extractor := extract.New(reader, metrics.NewExtractor(), logger, cfg.ProgressInterval)
	sorter := pipeline.NewFileSorter(cfg.SortChunkRecords, filepath.Join(cfg.DataDir, pipeline.SortTempDir), logger)
	joiner := join.New(metrics.NewJoiner(), logger, 0)
	verify := verifier.New(verifier.Config{
		Network:            cfg.Network,
		Workers:            cfg.Workers,
		FailureSampleEvery: cfg.FailureSampleEvery,
		FailureLogPath:     filepath.Join(cfg.DataDir, pipeline.FailureLogFile),
		ProgressEvery:      cfg.ProgressInterval,
	}, reader, failureSink(sink), metrics.NewVerifier(cfg.Network), logger)

	p := pipeline.New(pipelineCfg, extractor, sorter, joiner, verify, reporter(repo), ix, pipelineMetrics, logger)

	switch command {
	case "extract-inputs":
		return p.ExtractInputs(ctx)
	case "sort-inputs":
		return p.SortInputs(ctx)
	case "extract-outputs":
		return p.ExtractOutputs(ctx)
	case "sort-outputs":
		return p.SortOutputs(ctx)
	case "join":
		return p.Join(ctx)
	case "sort-joined":
		return p.SortJoined(ctx)
	case "verify":
		return p.Verify(ctx)
	case "all":
		return p.All(ctx)
	case "status":
		return printStatus(ctx, p, logger)
	}
	return fmt.Errorf("unknown command %q", command)
}

// openIndex builds the index through the oracle for block-reading commands
// and loads the persisted snapshot for everything else.
func openIndex(ctx context.Context, cfg config, store *blockstore.Store, genesis *chainhash.Hash, logger *zap.Logger) (*blockindex.Index, error) {
	if !needsBlocks(cfg.Args.Command) {
		ix, err := blockindex.Load(filepath.Join(cfg.BlockStoreDir, blockindex.IndexFileName))
		if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}
		return ix, nil
	}

	var oracle blockindex.ChainOracle
	if cfg.RPCURL != "" {
		client, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
		if err != nil {
			return nil, fmt.Errorf("init rpc client: %w", err)
		}
		defer func() {
			client.Shutdown()
			client.WaitForShutdown()
		}()
		oracle = rpcclient2.NewObservedClient(client, metrics.NewRPCClient(cfg.Network))
	} else {
		logger.Warn("no rpc url configured, index gaps will not be backfilled")
	}

	builder := blockindex.NewBuilder(blockindex.Config{
		Dir:          cfg.BlockStoreDir,
		GenesisHash:  *genesis,
		RPCRateLimit: cfg.RPCRPS,
	}, store.Meta(), store.Missing(), oracle, metrics.NewBlockIndex(), logger)

	ix, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return ix, nil
}

// newReporting wires the optional ClickHouse sink: the repository itself plus
// a batcher so verification workers never block on the network.
func newReporting(ctx context.Context, cfg config, logger *zap.Logger) (*clickhouse.Repository, *batcher.Batcher[model.ScriptFailure], error) {
	if cfg.ClickhouseDSN == "" {
		logger.Info("no clickhouse dsn configured, running without durable reporting")
		return nil, nil, nil
	}

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, nil, fmt.Errorf("init repository: %w", err)
	}

	sink := batcher.New(logger, repo.InsertScriptFailures, 1000, 5*time.Second, 2)
	sink.Start(ctx)
	return repo, sink, nil
}

// failureSink and reporter convert possibly-nil concrete types into the
// pipeline's nil interfaces, so the disabled state stays a plain nil check.
func failureSink(sink *batcher.Batcher[model.ScriptFailure]) verifier.FailureSink {
	if sink == nil {
		return nil
	}
	return sink
}

func reporter(repo *clickhouse.Repository) pipeline.Reporter {
	if repo == nil {
		return nil
	}
	return repo
}

func printStatus(ctx context.Context, p *pipeline.Pipeline, logger *zap.Logger) error {
	st, err := p.Status(ctx)
	if err != nil {
		return err
	}

	for _, a := range st.Artifacts {
		if !a.Exists {
			logger.Info("artifact absent", zap.String("artifact", a.Name))
			continue
		}
		fields := []zap.Field{
			zap.String("artifact", a.Name),
			zap.Int64("bytes", a.SizeBytes),
		}
		if a.Records >= 0 {
			fields = append(fields, zap.Int64("records", a.Records))
		}
		logger.Info("artifact present", fields...)
	}
	if st.IndexKnown {
		logger.Info("index contiguous", zap.Uint32("through_height", st.IndexedHeight))
	} else {
		logger.Info("index is empty")
	}
	if st.HasReporter {
		logger.Info("last reported run", zap.Uint32("end_height", st.ReportedEndHeight))
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
