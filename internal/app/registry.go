package app

import (
	"os"
	"strconv"
	"strings"
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
	"go-timesheet/internal/middleware"
	"go-timesheet/internal/notify"
	"go-timesheet/internal/payroll"
	"go-timesheet/internal/rbac"
	"go-timesheet/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	factRepo := attendance.NewRepository(gormDB)
	exceptionRepo := exception.NewRepository(gormDB)
	exclusionRepo := exclusion.NewRepository(gormDB)
	letterRepo := letter.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	cursorRepo := ingest.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- External sources ---
	vendorClient := biometric.NewClient(biometricConfigFromEnv())
	syncSource := calendar.NewHTTPSyncSource(os.Getenv("CALENDAR_SYNC_URL"), 15*time.Second)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	calendarService := calendar.NewService(calendarRepo, syncSource)
	resolver := identity.NewResolver(userRepo, vendorClient, rdb)
	attendanceService := attendance.NewService(gormDB, factRepo, vendorClient, resolver, calendarService)
	exclusionService := exclusion.NewService(gormDB, exclusionRepo, rdb)
	exceptionService := exception.NewService(gormDB, exceptionRepo)

	generator := payroll.NewGenerator(
		gormDB,
		payrollRepo,
		factRepo,
		calendarService,
		exceptionRepo,
		letterRepo,
		exclusionService,
	)
	ledger := payroll.NewLedger(gormDB, payrollRepo, userRepo, outboxRepo)
	notifier := notify.NewNotifier(outboxRepo)
	orchestrator := ingest.NewOrchestrator(
		gormDB,
		cursorRepo,
		attendanceService,
		generator,
		notifier,
		ingestConfigFromEnv(),
	)

	// --- Handlers ---
	payrollHandler := payroll.NewHandler(generator, ledger)
	ingestHandler := ingest.NewHandler(orchestrator)
	exceptionHandler := exception.NewHandler(exceptionService)
	exclusionHandler := exclusion.NewHandler(exclusionService)

	// --- Routes ---
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	{
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
		ingest.RegisterRoutes(api, ingestHandler, rbacService)
		exception.RegisterRoutes(api, exceptionHandler, rbacService)
		exclusion.RegisterRoutes(api, exclusionHandler, rbacService)
	}

	return nil
}

func biometricConfigFromEnv() biometric.Config {
	timeout, _ := time.ParseDuration(os.Getenv("BIOMETRIC_TIMEOUT"))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries, _ := strconv.Atoi(os.Getenv("BIOMETRIC_MAX_RETRIES"))
	if maxRetries <= 0 {
		maxRetries = 3
	}
	durationsInSeconds, _ := strconv.ParseBool(os.Getenv("BIOMETRIC_DURATIONS_IN_SECONDS"))

	return biometric.Config{
		BaseURL:            os.Getenv("BIOMETRIC_BASE_URL"),
		AccessToken:        os.Getenv("BIOMETRIC_ACCESS_TOKEN"),
		Timeout:            timeout,
		MaxRetries:         maxRetries,
		DurationsInSeconds: durationsInSeconds,
	}
}

func ingestConfigFromEnv() ingest.Config {
	source := os.Getenv("INGEST_SOURCE")
	if source == "" {
		source = "biometric"
	}

	var scopeCodes []string
	for _, code := range strings.Split(os.Getenv("INGEST_SCOPE_CODES"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			scopeCodes = append(scopeCodes, code)
		}
	}

	return ingest.Config{Source: source, ScopeCodes: scopeCodes}
}
