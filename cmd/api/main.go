package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "github.com/aivisualpro/devco-erp/internal/common/api"
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/database"
	"github.com/aivisualpro/devco-erp/internal/features/auth"
	"github.com/aivisualpro/devco-erp/internal/features/client"
	"github.com/aivisualpro/devco-erp/internal/features/email"
	"github.com/aivisualpro/devco-erp/internal/features/estimate"
	"github.com/aivisualpro/devco-erp/internal/features/file"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/features/quickbooks"
	"github.com/aivisualpro/devco-erp/internal/features/reporting"
	"github.com/aivisualpro/devco-erp/internal/features/schedule"
	"github.com/aivisualpro/devco-erp/internal/features/system"
	"github.com/aivisualpro/devco-erp/internal/features/user"
	"github.com/aivisualpro/devco-erp/internal/logger"
	"github.com/aivisualpro/devco-erp/internal/middleware"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	_ "github.com/aivisualpro/devco-erp/docs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer builds the app with the error handler that maps the error
// taxonomy onto HTTP statuses.
func NewFiberServer(cfg *config.Config) *fiber.App {
	utils.SetSecret(cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(apperr.StatusCode(err)).JSON(apperr.Body(err))
		},
	})

	app.Use(middleware.CORSMiddleware(cfg))
	return app
}

// AsRoute tags a constructor so Fx collects it into the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
					log.Fatalf("server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes creates the webhook-log TTL index in the background.
func InitializeIndexes(lc fx.Lifecycle, logs quickbooks.WebhookLogRepository, zlog *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := logs.EnsureIndexes(ctx); err != nil {
					zlog.Warn("failed to ensure webhook log indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// @title           DevCo ERP API
// @version         1.0
// @description     Internal ERP for construction and utility services.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			// Repositories
			user.NewUserRepository,
			permission.NewRoleRepository,
			permission.NewOverrideRepository,
			permission.NewAuditLogRepository,
			client.NewClientRepository,
			estimate.NewEstimateRepository,
			schedule.NewScheduleRepository,
			file.NewFileRepository,
			email.NewEmailRepository,
			quickbooks.NewProjectRepository,
			quickbooks.NewTokenRepository,
			quickbooks.NewWebhookLogRepository,

			// Permission resolution
			permission.NewCache,
			permission.NewChecker,

			// Interface adapters
			func(r user.UserRepository) permission.UserFinder { return r },
			func(r user.UserRepository) permission.RoleUsageCounter { return r },

			// QuickBooks pipeline
			quickbooks.NewOAuthManager,
			quickbooks.NewHTTPClient,
			quickbooks.NewEntityResolver,
			quickbooks.NewSyncer,
			quickbooks.NewWebhookProcessor,
			quickbooks.NewScheduler,
			quickbooks.NewExporter,

			// Infrastructure collaborators
			file.NewS3Storage,
			reporting.NewMirror,
			system.NewHub,

			// Services
			permission.NewPermissionService,
			user.NewUserService,
			auth.NewAuthService,
			client.NewClientService,
			estimate.NewEstimateService,
			schedule.NewLinkResolver,
			schedule.NewScheduleService,
			file.NewFileService,
			email.NewEmailService,
			quickbooks.NewQuickBooksService,
			reporting.NewReportingService,

			// Controllers
			permission.NewPermissionController,
			user.NewUserController,
			auth.NewAuthController,
			client.NewClientController,
			estimate.NewEstimateController,
			schedule.NewScheduleController,
			file.NewFileController,
			quickbooks.NewQuickBooksController,
			reporting.NewReportingController,
			system.NewSystemController,

			// Routes
			AsRoute(permission.NewPermissionApi),
			AsRoute(user.NewUserApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(client.NewClientApi),
			AsRoute(estimate.NewEstimateApi),
			AsRoute(schedule.NewScheduleApi),
			AsRoute(file.NewFileApi),
			AsRoute(quickbooks.NewQuickBooksApi),
			AsRoute(reporting.NewReportingApi),
			AsRoute(system.NewSystemApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			// Live activity feed rides on sync completions.
			func(webhook *quickbooks.WebhookProcessor, hub *system.Hub) {
				webhook.SetSyncNotifier(hub.NotifySync)
			},
			// Warehouse snapshot runs right after the nightly resync so the
			// mirror always reflects the fresh records.
			func(scheduler *quickbooks.Scheduler, reports reporting.ReportingService, log *zap.Logger) {
				scheduler.AddNightlyJob(func(ctx context.Context) {
					if _, err := reports.SnapshotToMirror(ctx); err != nil {
						if apperr.Is(err, apperr.KindValidation) {
							return // mirror not configured
						}
						log.Warn("nightly reporting snapshot failed", zap.Error(err))
					}
				})
			},
			func(lc fx.Lifecycle, scheduler *quickbooks.Scheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.Start()
					},
					OnStop: func(ctx context.Context) error {
						scheduler.Stop()
						return nil
					},
				})
			},
			func(lc fx.Lifecycle, mirror *reporting.Mirror) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						return mirror.Close()
					},
				})
			},
		),
	)

	app.Run()
}
