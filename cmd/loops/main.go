package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/protocaas/protocaas/cmd/loops/recurring"
	kserver "github.com/protocaas/protocaas/pkg/configs/server"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	kpg "github.com/protocaas/protocaas/pkg/domain/protocaas/db/postgres"
	"github.com/protocaas/protocaas/pkg/metrics"
	"github.com/protocaas/protocaas/pkg/utils/args"
	"github.com/protocaas/protocaas/pkg/utils/filewatch"
	"github.com/protocaas/protocaas/pkg/utils/retry"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pconfig := flag.String("config", os.Getenv("PROTOCAAS_CONFIG"), "path to config file")
	loopType := args.Parser(AsLoopType)
	flag.Var(loopType, "type", "loop type. integrity|housekeeping")
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = sweep again and again, waiting COOLDOWN between rounds.`+
			` "backlog" = sweep once.`,
	)
	pnodeTTL := flag.Duration("node-ttl", 24*time.Hour, "housekeeping forgets nodes silent longer than this")
	ptolerant := flag.Bool("tolerate-errors", false, "log errors of steps and go on, instead of exiting")
	pmetrics := flag.String("metrics-addr", "", "address to serve /metrics. empty = not served")
	flag.Parse()

	if !loopType.IsSet() {
		logger.Fatal("-type is required")
	}
	if !policy.IsSet() {
		logger.Fatal("-policy is required")
	}

	{
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer wcancel()
		ctx = wctx
	}

	conf := try.To(kserver.LoadConfig(*pconfig)).OrFatal(logger)
	if conf.Database().InMemory() {
		logger.Fatal("loops need a database shared with protocaasd. set database.url.")
	}
	db := try.To(retry.Blocking(
		ctx, retry.Limited(10, retry.ExponentialBackoff(time.Second, 2, 30*time.Second)),
		func() (dbInterface.Database, error) {
			db, err := kpg.New(ctx, conf.Database().URL())
			if err != nil {
				logger.Printf("can not connect to the database (will retry): %s", err)
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return db, nil
		},
	)).OrFatal(logger)
	defer db.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if addr := *pmetrics; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Printf("metrics server stopped: %s", err)
			}
		}()
	}

	p := policy.Value()
	if *ptolerant {
		p = recurring.ReportErrors(p, func(err error) { logger.Printf("step failed: %s", err) })
	} else {
		p = recurring.UntilError(p)
	}

	logger.Printf(`start loop "%s" /w policy "%s"`, loopType.Value(), p)
	err := StartLoop(ctx, logger, db, m, LoopManifest{
		Type:    loopType.Value(),
		Policy:  p,
		NodeTTL: *pnodeTTL,
	})
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Fatal(err, " (loop context is cancelled by: ", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}
