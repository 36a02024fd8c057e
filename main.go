package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/estafette/estafette-jenkins-exporter/pkg/clients/jenkinsapi"
	"github.com/estafette/estafette-jenkins-exporter/pkg/registry"
	"github.com/estafette/estafette-jenkins-exporter/pkg/services/snapshot"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerprom "github.com/uber/jaeger-lib/metrics/prometheus"
)

var (
	version   string
	branch    string
	revision  string
	buildDate string
	goVersion = runtime.Version()
)

var (
	// flags
	listenPort = kingpin.Flag("listen-port", "The port to listen on for scrape requests.").Envar("VIRTUAL_PORT").Default("9118").Int()

	jenkinsURL                   = kingpin.Flag("jenkins-url", "The base url of the jenkins server api.").Envar("JENKINS_SERVER").Default("http://jenkins:8080").String()
	jenkinsUsername              = kingpin.Flag("jenkins-user", "The username for basic authentication against the jenkins api.").Envar("JENKINS_USER").String()
	jenkinsPassword              = kingpin.Flag("jenkins-password", "The password for basic authentication against the jenkins api.").Envar("JENKINS_PASSWORD").String()
	jenkinsAllowInsecure         = kingpin.Flag("jenkins-allow-insecure", "Allow insecure connections towards the jenkins api.").Envar("JENKINS_ALLOW_INSECURE").Bool()
	jenkinsRequestTimeoutSeconds = kingpin.Flag("jenkins-request-timeout-seconds", "The timeout for a single request towards the jenkins api.").Envar("JENKINS_REQUEST_TIMEOUT_SECONDS").Default("10").Int()
	jenkinsRequestRetries        = kingpin.Flag("jenkins-request-retries", "The number of retries for a failing request towards the jenkins api.").Envar("JENKINS_REQUEST_RETRIES").Default("0").Int()
	jenkinsBuildStatuses         = kingpin.Flag("jenkins-build-statuses", "Comma-separated list of build status selectors to export per job.").Envar("JENKINS_BUILD_STATUSES").Default(strings.Join(api.BuildStatuses, ",")).String()
	jenkinsCollectRunTotals      = kingpin.Flag("jenkins-collect-run-totals", "Count successful and failed runs over all recorded builds per job.").Envar("JENKINS_COLLECT_RUN_TOTALS").Default("true").Bool()

	scrapeDeadlineSeconds      = kingpin.Flag("scrape-deadline-seconds", "The deadline for one full collect pass.").Envar("SCRAPE_DEADLINE_SECONDS").Default("30").Int()
	scrapeMaxConcurrentFetches = kingpin.Flag("scrape-max-concurrent-fetches", "The maximum number of concurrent build detail fetches within one collect pass.").Envar("SCRAPE_MAX_CONCURRENT_FETCHES").Default("10").Int()
	serveStaleOnFailure        = kingpin.Flag("serve-stale-on-failure", "Serve the last successful snapshot when a collect pass fails instead of returning an error status.").Envar("SERVE_STALE_ON_FAILURE").Default("true").Bool()

	// collectDurationSummary keeps track of time spent collecting from jenkins
	collectDurationSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "jenkins_collector_collect_seconds",
		Help: "Time spent to collect metrics from Jenkins.",
	})
)

func init() {
	// Metrics have to be registered to be exposed:
	prometheus.MustRegister(collectDurationSummary)
}

func main() {

	// parse command line parameters
	kingpin.Parse()

	// configure json logging
	initLogging()

	// configure the global opentracing tracer from JAEGER_* environment variables
	closer := initJaeger("estafette-jenkins-exporter")
	defer closer.Close()

	config := buildConfig()

	// define channel to gracefully shutdown the application
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// handle scrape requests
	srv := handleRequests(config)

	// wait for graceful shutdown to finish
	<-sigs
	log.Debug().Msg("Shutting down...")

	// shut down gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Graceful server shutdown failed")
	}

	log.Info().Msg("Server gracefully stopped")
}

func initLogging() {

	// log as severity for stackdriver logging to recognize the level
	zerolog.LevelFieldName = "severity"

	// set some default fields added to all logs
	log.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("app", "estafette-jenkins-exporter").
		Str("version", version).
		Logger()

	// use zerolog for any logs sent via standard log library
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	// log startup message
	log.Info().
		Str("branch", branch).
		Str("revision", revision).
		Str("buildDate", buildDate).
		Str("goVersion", goVersion).
		Msg("Starting estafette-jenkins-exporter...")
}

func initJaeger(service string) io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger config from environment variables failed")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = service
	}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName, jaegercfg.Metrics(jaegerprom.New()))
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger tracer failed")
	}

	return closer
}

func buildConfig() *api.APIConfig {

	config := &api.APIConfig{
		Jenkins: &api.JenkinsConfig{
			ServerURL:             *jenkinsURL,
			Username:              *jenkinsUsername,
			Password:              *jenkinsPassword,
			AllowInsecure:         *jenkinsAllowInsecure,
			RequestTimeoutSeconds: *jenkinsRequestTimeoutSeconds,
			RequestRetries:        *jenkinsRequestRetries,
		},
		Scrape: &api.ScrapeConfig{
			DeadlineSeconds:      *scrapeDeadlineSeconds,
			MaxConcurrentFetches: *scrapeMaxConcurrentFetches,
			ServeStaleOnFailure:  *serveStaleOnFailure,
			BuildStatuses:        strings.Split(*jenkinsBuildStatuses, ","),
			CollectRunTotals:     *jenkinsCollectRunTotals,
		},
	}

	config.SetDefaults()
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Validating configuration failed")
	}

	return config
}

func handleRequests(config *api.APIConfig) *http.Server {

	jenkinsapiClient := jenkinsapi.NewClient(config)
	jenkinsapiClient = jenkinsapi.NewMetricsClient(jenkinsapiClient, api.NewRequestCounter("jenkinsapi"), api.NewRequestHistogram("jenkinsapi"))
	jenkinsapiClient = jenkinsapi.NewLoggingClient(jenkinsapiClient)
	jenkinsapiClient = jenkinsapi.NewTracingClient(jenkinsapiClient)

	metricsRegistry := registry.NewRegistry()

	snapshotService := snapshot.NewService(config, jenkinsapiClient, metricsRegistry)
	snapshotService = snapshot.NewMetricsService(snapshotService, api.NewRequestCounter("snapshot"), api.NewRequestHistogram("snapshot"))
	snapshotService = snapshot.NewLoggingService(snapshotService)
	snapshotService = snapshot.NewTracingService(snapshotService)

	jenkinsRegistry := prometheus.NewRegistry()
	jenkinsRegistry.MustRegister(registry.NewCollector(metricsRegistry))

	// create and init router
	router := configureGinGonic(config, snapshotService, jenkinsRegistry)

	apiAddress := fmt.Sprintf(":%v", *listenPort)
	log.Debug().
		Str("port", apiAddress).
		Msg("Serving scrape requests...")

	// instantiate servers instead of using router.Run in order to handle graceful shutdown
	srv := &http.Server{
		Addr:           apiAddress,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   time.Duration(config.Scrape.DeadlineSeconds+30) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Starting gin router failed")
		}
	}()

	return srv
}

func configureGinGonic(config *api.APIConfig, snapshotService snapshot.Service, jenkinsRegistry *prometheus.Registry) *gin.Engine {

	// run gin in release mode and other defaults
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Logger
	gin.DisableConsoleColor()

	// Creates a router without any middleware by default
	router := gin.New()

	// Logging middleware
	router.Use(api.ZeroLogMiddleware())

	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())

	// Opentracing middleware
	router.Use(api.OpenTracingMiddleware())

	// Gzip middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// liveness and readiness
	router.GET("/liveness", func(c *gin.Context) {
		c.String(200, "I'm alive!")
	})
	router.GET("/readiness", func(c *gin.Context) {
		c.String(200, "I'm ready!")
	})

	// serve the committed snapshot and the exporter's own series on one endpoint
	metricsHandler := promhttp.HandlerFor(prometheus.Gatherers{jenkinsRegistry, prometheus.DefaultGatherer}, promhttp.HandlerOpts{})

	router.GET("/metrics", func(c *gin.Context) {

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(config.Scrape.DeadlineSeconds)*time.Second)
		defer cancel()

		start := time.Now()
		err := snapshotService.Collect(ctx)
		collectDurationSummary.Observe(time.Since(start).Seconds())

		if err != nil {
			log.Error().Err(err).Msg("Collect pass failed")
			if !config.Scrape.ServeStaleOnFailure {
				c.String(http.StatusBadGateway, "Collecting metrics from Jenkins failed")
				return
			}
		}

		metricsHandler.ServeHTTP(c.Writer, c.Request)
	})

	return router
}
