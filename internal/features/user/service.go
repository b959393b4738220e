package user

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	RoleID     string `json:"role_id"`
}

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*common_models.User, error)
	GetUser(ctx context.Context, id string) (*common_models.User, error)
	ListUsers(ctx context.Context) ([]common_models.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	AssignRole(ctx context.Context, userID, roleID string) error
	DeleteUser(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	Repo     UserRepository
	RoleRepo permission.RoleRepository
	Checker  *permission.Checker
}

func NewUserService(repo UserRepository, roleRepo permission.RoleRepository, checker *permission.Checker) UserService {
	return &UserServiceImpl{
		Repo:     repo,
		RoleRepo: roleRepo,
		Checker:  checker,
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, req CreateUserRequest) (*common_models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	role, err := s.RoleRepo.FindByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	usr := &common_models.User{
		ID:           primitive.NewObjectID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Department:   req.Department,
		Status:       "active",
		RoleID:       role.ID,
		RoleName:     role.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, usr); err != nil {
		return nil, err
	}
	return usr, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*common_models.User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]common_models.User, error) {
	return s.Repo.List(ctx)
}

// UpdateUser handles profile fields. Role changes go through AssignRole so
// the permission cache is always invalidated with them.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	allowed := map[string]bool{
		"first_name": true, "last_name": true, "phone": true,
		"department": true, "status": true,
	}

	set := bson.M{}
	for k, v := range updates {
		if !allowed[k] {
			return apperr.Validation("field " + k + " cannot be updated here")
		}
		set[k] = v
	}
	if len(set) == 0 {
		return apperr.Validation("no updatable fields provided")
	}
	set["updated_at"] = time.Now()

	if err := s.Repo.Update(ctx, id, set); err != nil {
		return err
	}

	// Department feeds the department data scope, which lives in the
	// cached snapshot.
	if _, ok := set["department"]; ok {
		s.Checker.Invalidate(id)
	}
	return nil
}

func (s *UserServiceImpl) AssignRole(ctx context.Context, userID, roleID string) error {
	role, err := s.RoleRepo.FindByID(ctx, roleID)
	if err != nil {
		return err
	}

	err = s.Repo.Update(ctx, userID, bson.M{
		"role_id":    role.ID,
		"role_name":  role.Name,
		"updated_at": time.Now(),
	})
	if err != nil {
		return err
	}

	s.Checker.Invalidate(userID)
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Checker.Invalidate(id)
	return nil
}
