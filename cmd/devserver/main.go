package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/luisthe-dev/myinvite-go/internal/config"
	"github.com/luisthe-dev/myinvite-go/internal/devserver"
	"github.com/luisthe-dev/myinvite-go/internal/logging"
	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	host := flag.String("host", "localhost", "host for the dev backend to bind to")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	if sentryDSN == "" {
		sentryDSN = cfg.SentryDSN
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "myinvite-devserver",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	userPassword := os.Getenv("MYINVITE_DEV_USER_PASSWORD")
	if userPassword == "" {
		userPassword = "welcome1"
		log.Warnf("MYINVITE_DEV_USER_PASSWORD not set, seeded attendee password is [%s]", userPassword)
	}
	adminPassword := os.Getenv("MYINVITE_DEV_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "welcome1"
		log.Warnf("MYINVITE_DEV_ADMIN_PASSWORD not set, seeded admin password is [%s]", adminPassword)
	}

	userPasswordHash, err := pkg.HashPassword(userPassword)
	if err != nil {
		log.Fatalf("hash attendee password: %s", err)
	}
	adminPasswordHash, err := pkg.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %s", err)
	}

	redisPassword := os.Getenv("MYINVITE_REDIS_PASS")

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server := devserver.NewServer(devserver.Config{
		Host:          *host,
		Port:          cfg.Port,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: redisPassword,
		UserAccounts: []devserver.Account{
			{
				Identifier:   "mila@myinvite.co",
				PasswordHash: userPasswordHash,
				Principal: session.Principal{
					ID: 1, Role: "user", FullName: "Mila Okafor", Email: "mila@myinvite.co",
				},
			},
		},
		AdminAccounts: []devserver.Account{
			{
				Identifier:   "admin",
				PasswordHash: adminPasswordHash,
				Principal: session.Principal{
					ID: 900, Role: "admin", FullName: "MyInvite Admin", Email: "admin@myinvite.co",
				},
			},
		},
	})

	server.Serve(ctx)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
