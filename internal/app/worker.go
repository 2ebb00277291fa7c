package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-timesheet/internal/attendance"
	"go-timesheet/internal/biometric"
	"go-timesheet/internal/calendar"
	"go-timesheet/internal/exception"
	"go-timesheet/internal/exclusion"
	"go-timesheet/internal/identity"
	"go-timesheet/internal/ingest"
	"go-timesheet/internal/letter"
	"go-timesheet/internal/messaging/kafka"
	"go-timesheet/internal/messaging/kafka/producer"
	"go-timesheet/internal/notify"
	"go-timesheet/internal/payroll"
	"go-timesheet/internal/shared/connection"
	"go-timesheet/internal/user"

	"go.uber.org/zap"
)

const (
	ingestCycleInterval  = 10 * time.Minute
	calendarSyncInterval = 24 * time.Hour
	calendarSyncDays     = 30
)

// RunWorker hosts the scheduled jobs: the ingest cycle, the rolling
// calendar sync, and the outbox publisher.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	userRepo := user.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	factRepo := attendance.NewRepository(gormDB)
	exceptionRepo := exception.NewRepository(gormDB)
	exclusionRepo := exclusion.NewRepository(gormDB)
	letterRepo := letter.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	cursorRepo := ingest.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	vendorClient := biometric.NewClient(biometricConfigFromEnv())
	syncSource := calendar.NewHTTPSyncSource(os.Getenv("CALENDAR_SYNC_URL"), 15*time.Second)

	calendarService := calendar.NewService(calendarRepo, syncSource)
	resolver := identity.NewResolver(userRepo, vendorClient, redisClient)
	attendanceService := attendance.NewService(gormDB, factRepo, vendorClient, resolver, calendarService)
	exclusionService := exclusion.NewService(gormDB, exclusionRepo, redisClient)

	generator := payroll.NewGenerator(
		gormDB,
		payrollRepo,
		factRepo,
		calendarService,
		exceptionRepo,
		letterRepo,
		exclusionService,
	)
	notifier := notify.NewNotifier(outboxRepo)
	orchestrator := ingest.NewOrchestrator(
		gormDB,
		cursorRepo,
		attendanceService,
		generator,
		notifier,
		ingestConfigFromEnv(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, 3*time.Second)
	go runIngestLoop(ctx, orchestrator, logger)
	go runCalendarSyncLoop(ctx, calendarService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runIngestLoop(ctx context.Context, orchestrator ingest.Orchestrator, logger *zap.Logger) {
	log := logger.Named("ingest.loop")
	ticker := time.NewTicker(ingestCycleInterval)
	defer ticker.Stop()

	log.Info("ingest loop started", zap.Duration("interval", ingestCycleInterval))

	// First cycle runs immediately so a restart does not wait a full tick.
	runCycle(ctx, orchestrator, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("ingest loop stopped")
			return
		case <-ticker.C:
			runCycle(ctx, orchestrator, log)
		}
	}
}

func runCycle(ctx context.Context, orchestrator ingest.Orchestrator, log *zap.Logger) {
	result, err := orchestrator.RunCycle(ctx)
	if err != nil {
		log.Error("ingest cycle failed", zap.Error(err))
		return
	}
	if result.Outage {
		log.Warn("ingest cycle halted on outage", zap.String("reason", result.OutageReason))
	}
}

func runCalendarSyncLoop(ctx context.Context, calendarService calendar.Service, logger *zap.Logger) {
	log := logger.Named("calendar.sync")
	ticker := time.NewTicker(calendarSyncInterval)
	defer ticker.Stop()

	syncCalendar(ctx, calendarService, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("calendar sync stopped")
			return
		case <-ticker.C:
			syncCalendar(ctx, calendarService, log)
		}
	}
}

func syncCalendar(ctx context.Context, calendarService calendar.Service, log *zap.Logger) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, calendarSyncDays)

	updated, err := calendarService.SyncWindow(ctx, from, to)
	if err != nil {
		log.Error("calendar sync failed", zap.Error(err))
		return
	}
	log.Info("calendar window synced", zap.Int("days_updated", updated))
}
