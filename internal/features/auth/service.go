package auth

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/features/user"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *common_models.User, error)
	Me(ctx context.Context, userID string) (*common_models.User, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
}

func NewAuthService(userRepo user.UserRepository) AuthService {
	return &AuthServiceImpl{UserRepo: userRepo}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *common_models.User, error) {
	usr, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return "", nil, apperr.NotAuthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.NotAuthenticated("invalid credentials")
	}

	if usr.Status != "active" {
		return "", nil, apperr.NotAuthenticated("account " + usr.Status)
	}

	token, err := utils.GenerateToken(usr.ID, usr.Email, usr.RoleName)
	if err != nil {
		return "", nil, err
	}

	_ = s.UserRepo.Update(ctx, usr.ID.Hex(), bson.M{"last_login": time.Now()})

	return token, usr, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*common_models.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}
