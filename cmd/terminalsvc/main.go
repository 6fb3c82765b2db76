package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	natsgo "github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/terminal-services/configs"
	"github.com/avvvet/terminal-services/internal/comm"
	nats "github.com/avvvet/terminal-services/internal/nats"
	"github.com/avvvet/terminal-services/internal/terminalsvc/broker"
	"github.com/avvvet/terminal-services/internal/terminalsvc/codec"
	svcconfig "github.com/avvvet/terminal-services/internal/terminalsvc/config"
	handlers "github.com/avvvet/terminal-services/internal/terminalsvc/handlers"
	"github.com/avvvet/terminal-services/internal/terminalsvc/metrics"
	"github.com/avvvet/terminal-services/internal/terminalsvc/service"
	"github.com/avvvet/terminal-services/internal/terminalsvc/store"
)

const SERVICE_NAME = "terminal"

// set via ldflags
var Version = "dev"

func main() {
	port := flag.String("p", "", "tcp binding port (default from TERMINAL_SERVICE_PORT or 8080)")
	logFile := flag.String("l", "", "log file name, - for stderr (default .l_g/terminal.log)")
	showVersion := flag.Bool("V", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(os.Stderr, "%s: REST Server %s\n", os.Args[0], Version)
		os.Exit(0)
	}

	config.Logging(SERVICE_NAME+"_service", *logFile)
	config.LoadEnv(SERVICE_NAME)
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)

	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	terminalStore := store.NewTerminalStore(cfg.Limits)
	terminalCodec := codec.NewTerminalCodec(terminalStore)
	m := metrics.New()
	terminalService := service.NewTerminalService(terminalStore, terminalCodec, m)

	// Connect to NATS, optional
	var b *broker.Broker
	n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken, SERVICE_NAME+"_service_"+instanceId)
	switch {
	case errors.Is(err, nats.ErrNotConfigured):
		log.Info("NATS_URL not set, running without messaging")
	case err != nil:
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	default:
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		// publish before bootstrap so seed terminals are announced too
		b = broker.NewBroker(n.Conn, terminalService)
		terminalService.SetPublisher(b)
	}

	// seed the registry before serving
	if err := terminalService.Bootstrap(cfg.BootstrapFile); err != nil {
		log.Fatalf("Failed to bootstrap terminals: %v", err)
	}
	log.Infof("%d terminals loaded", terminalService.Count())

	var sub *natsgo.Subscription
	if b != nil {
		sub, err = b.QueueSubscribe(comm.SubjectTerminalService, SERVICE_NAME)
		if err != nil {
			log.Fatalf("Error: unable to subscribe to queue %v", err)
		}
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(terminalService)
	h.SetRoutes(r, m)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if sub != nil {
		sub.Unsubscribe()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
