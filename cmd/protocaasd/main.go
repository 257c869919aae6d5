package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	binderr "github.com/protocaas/protocaas/pkg/api-types-binding/errors"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/buildtime"
	kserver "github.com/protocaas/protocaas/pkg/configs/server"
	"github.com/protocaas/protocaas/pkg/gateway"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/metrics"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/signature"
	"github.com/protocaas/protocaas/pkg/utils/echoutil"
	"github.com/protocaas/protocaas/pkg/utils/filewatch"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pconfig := flag.String("config", os.Getenv("PROTOCAAS_CONFIG"), "path to config file")
	ploglevel := flag.String("loglevel", "", "log level. debug|info|warn|error|off (default: logLevel in config)")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	logger.Printf("protocaasd %s", buildtime.VersionString())
	conf := try.To(kserver.LoadConfig(*pconfig)).OrFatal(logger)

	e := echo.New()
	loglevel := conf.LogLevel()
	if *ploglevel != "" {
		loglevel = *ploglevel
	}
	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = binderr.ErrorHandler(e)
	e.Use(echoutil.LogHandlerFunc)

	{
		// the supervisor restarts us with the new config.
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatalf("can not watch configuration: %s", err)
		}
		defer wcancel()
		ctx = wctx
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	db := try.To(connectDatabase(ctx, conf.Database(), logger)).OrFatal(logger)
	defer db.Close()

	if v, err := db.Schema().Version(ctx); err != nil {
		logger.Fatalf("can not read schema version: %s", err)
	} else if latest, err := db.Schema().Latest(); err != nil {
		logger.Fatalf("can not read schema repository: %s", err)
	} else if v != latest {
		logger.Printf("WARNING: schema version is %d, but %d is expected. run `protocaasctl schema upgrade`.", v, latest)
	}

	keys := try.To(keySource(ctx, conf.Signing().MasterKey(), logger)).OrFatal(logger)
	signer := signature.New(keys)

	engineOpts := []lifecycle.Option{
		lifecycle.WithMetrics(m),
		lifecycle.WithOutputs(try.To(outputs(conf.Outputs())).OrFatal(logger)),
		lifecycle.WithDefaultComputeResource(conf.DefaultComputeResource()),
	}
	gatewayOpts := []gateway.Option{
		gateway.WithMetrics(m),
		gateway.WithRegistrationWindow(conf.Signing().RegistrationWindow()),
	}
	if pub := try.To(publisher(conf.Pubsub())).OrFatal(logger); pub != nil {
		logger.Printf("job events are published to %s", pub.Name())
		if c, ok := pub.(io.Closer); ok {
			defer c.Close()
		}
		engineOpts = append(engineOpts, lifecycle.WithNotifier(pubsub.BestEffort(pub, logger, m)))
		gatewayOpts = append(gatewayOpts, gateway.WithSubscriptions(pub))
	}

	sessions := auth.NewSessionCache(
		auth.GitHub{BaseURL: conf.Sessions().GithubAPI(), Client: &http.Client{Timeout: 10 * time.Second}},
		auth.WithTTL(conf.Sessions().TTL()),
	)

	routes(e, core{
		engine:           lifecycle.New(db, engineOpts...),
		gateway:          gateway.New(db, signer, gatewayOpts...),
		schema:           db.Schema(),
		users:            auth.NewUsers(sessions),
		computeResources: auth.NewComputeResources(signer),
		jobKeys:          auth.NewJobKeys(db.Jobs()),
		metrics:          m,
		gatherer:         reg,
	})

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	context.AfterFunc(ctx, func() {
		logger.Printf("shutting down: %v", context.Cause(ctx))
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Printf("error on shutdown: %s", err)
		}
	})

	addr := fmt.Sprintf(":%d", conf.Port())
	var err error
	if cert, key := *pcert, *pkey; cert != "" && key != "" {
		err = e.StartTLS(addr, cert, key)
	} else {
		err = e.Start(addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
