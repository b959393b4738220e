package main

import (
	"context"
	"os"
	"time"

	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/database"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/features/user"
	"github.com/aivisualpro/devco-erp/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed inserts the default roles and the initial super-admin account, then
// shuts the app down. Existing roles and users are left untouched so the
// command is safe to rerun.
func Seed(
	lc fx.Lifecycle,
	roleRepo permission.RoleRepository,
	userRepo user.UserRepository,
	log *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()

				var superAdminRole *permission.Role
				for _, role := range permission.DefaultRoles() {
					existing, err := roleRepo.FindByName(ctx, role.Name)
					if err == nil {
						log.Info("role exists, skipping", zap.String("name", role.Name))
						if role.Name == permission.RoleSuperAdmin {
							superAdminRole = existing
						}
						continue
					}

					r := role
					if err := roleRepo.Create(ctx, &r); err != nil {
						log.Error("role create failed", zap.String("name", r.Name), zap.Error(err))
						continue
					}
					log.Info("role created", zap.String("name", r.Name))
					if r.Name == permission.RoleSuperAdmin {
						superAdminRole = &r
					}
				}

				if superAdminRole == nil {
					log.Error("super admin role unavailable, skipping admin user")
					return
				}

				adminEmail := getenv("SEED_ADMIN_EMAIL", "admin@devco.local")
				if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
					log.Info("admin user exists, skipping", zap.String("email", adminEmail))
					return
				}

				password := getenv("SEED_ADMIN_PASSWORD", "changeme123")
				hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
				if err != nil {
					log.Error("password hash failed", zap.Error(err))
					return
				}

				now := time.Now()
				admin := &common_models.User{
					ID:           primitive.NewObjectID(),
					Email:        adminEmail,
					PasswordHash: string(hash),
					FirstName:    "System",
					LastName:     "Administrator",
					Status:       "active",
					RoleID:       superAdminRole.ID,
					RoleName:     superAdminRole.Name,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := userRepo.Create(ctx, admin); err != nil {
					log.Error("admin user create failed", zap.Error(err))
					return
				}
				log.Info("admin user created", zap.String("email", adminEmail))
			}()
			return nil
		},
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			permission.NewRoleRepository,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	).Run()
}
