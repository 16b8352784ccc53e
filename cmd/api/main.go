package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"jobdesk.org/internal/apps"
	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/httpapi"
	"jobdesk.org/internal/identity"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/recommend"
	"jobdesk.org/internal/store/pg"
)

// Overridden at build time via -ldflags.
var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	// Local development reads .env; absence is fine in production.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("JOBDESK_AUTH_SECRET")
	tokens, err := identity.NewTokens(secret)
	if err != nil {
		log.Fatalf("auth secret: %v", err)
	}

	// With a DSN the stores are Postgres-backed; without one the API runs
	// fully in memory, which is enough for demos and local frontend work.
	var (
		probe     httpapi.ReadyProbe
		users     identity.UserStore
		jobsStore catalog.Store
		appsStore apps.Store
		closeDB   func() error
	)
	if dsn := os.Getenv("JOBDESK_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		probe = httpapi.ReadyProbe{DB: store.DB()}
		users = store.Users()
		jobsStore = store.Jobs()
		appsStore = store.Applications()
		closeDB = store.Close
	} else {
		log.Println("JOBDESK_PG_DSN not set; using in-memory stores")
		users = identity.NewInMemory()
		jobsStore = catalog.NewInMemory()
		appsStore = apps.NewInMemory()
	}

	ident, err := identity.NewService(users, tokens)
	if err != nil {
		log.Fatalf("identity service: %v", err)
	}

	api := httpapi.New(probe, version,
		ident,
		catalog.NewService(jobsStore),
		apps.NewService(appsStore, jobsStore, users),
		recommend.NewService(appsStore, jobsStore),
	)

	// Several replicas behind one load balancer share a Redis budget;
	// otherwise each process rate-limits on its own.
	if addr := os.Getenv("JOBDESK_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		api.UseLimiter(httpapi.NewRedisLimiter(client, 600, time.Minute))
		log.Printf("rate limiting via redis at %s", addr)
	}

	addr := os.Getenv("JOBDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting jobdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if closeDB != nil {
		_ = closeDB()
	}
	log.Println("Stopped")
}
