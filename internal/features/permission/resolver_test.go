package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeUserFinder struct {
	users map[string]*common_models.User
	err   error
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

type fakeRoleRepo struct {
	roles map[string]*Role
	err   error
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *Role) error { return nil }
func (f *fakeRoleRepo) FindByID(ctx context.Context, id string) (*Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.roles[id]; ok {
		return r, nil
	}
	return nil, apperr.NotFound("role not found")
}
func (f *fakeRoleRepo) FindByName(ctx context.Context, name string) (*Role, error) {
	return nil, apperr.NotFound("role not found")
}
func (f *fakeRoleRepo) List(ctx context.Context) ([]Role, error)              { return nil, nil }
func (f *fakeRoleRepo) Update(ctx context.Context, id string, r *Role) error  { return nil }
func (f *fakeRoleRepo) Delete(ctx context.Context, id string) error           { return nil }

type fakeOverrideRepo struct {
	overrides map[string][]UserPermissionOverride
	err       error
}

func (f *fakeOverrideRepo) Create(ctx context.Context, o *UserPermissionOverride) error { return nil }
func (f *fakeOverrideRepo) FindByUser(ctx context.Context, userID string) ([]UserPermissionOverride, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overrides[userID], nil
}
func (f *fakeOverrideRepo) FindByID(ctx context.Context, id string) (*UserPermissionOverride, error) {
	return nil, nil
}
func (f *fakeOverrideRepo) Delete(ctx context.Context, id string) error { return nil }

func boolPtr(b bool) *bool { return &b }

func newTestChecker(users *fakeUserFinder, roles *fakeRoleRepo, overrides *fakeOverrideRepo) *Checker {
	return NewChecker(&config.Config{}, users, roles, overrides, NewCache(), zap.NewNop())
}

func TestSuperAdminBypassesEverything(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleName: RoleSuperAdmin},
	}}
	// Role and override stores that would error if touched.
	roles := &fakeRoleRepo{err: errors.New("must not be called")}
	overrides := &fakeOverrideRepo{err: errors.New("must not be called")}

	checker := newTestChecker(users, roles, overrides)

	for _, m := range AllModules {
		for _, a := range AllActions {
			d, err := checker.Check(context.Background(), userID, m, a)
			if err != nil {
				t.Fatalf("Check(%s, %s) error: %v", m, a, err)
			}
			if !d.Allowed {
				t.Errorf("super admin denied for (%s, %s)", m, a)
			}
			if d.Scope != ScopeAll {
				t.Errorf("super admin scope = %q, want %q", d.Scope, ScopeAll)
			}
		}
	}
}

func TestDenyByDefault(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	roleID := primitive.NewObjectID()
	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleID: roleID, RoleName: "Office"},
	}}
	roles := &fakeRoleRepo{roles: map[string]*Role{
		roleID.Hex(): {
			ID:   roleID,
			Name: "Office",
			Permissions: map[ModuleKey]ModulePermission{
				ModuleClients: {Actions: map[ActionKey]ActionPermission{
					ActionView: {Allowed: true, Scope: ScopeAll},
				}},
			},
		},
	}}
	checker := newTestChecker(users, roles, &fakeOverrideRepo{})

	// Granted pair allows.
	d, err := checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if err != nil || !d.Allowed {
		t.Fatalf("granted pair denied: allowed=%v err=%v", d.Allowed, err)
	}

	// Same module, ungranted action denies.
	d, _ = checker.Check(context.Background(), userID, ModuleClients, ActionDelete)
	if d.Allowed {
		t.Error("ungranted action allowed, want deny-by-default")
	}

	// Absent module denies.
	d, _ = checker.Check(context.Background(), userID, ModuleFinancials, ActionView)
	if d.Allowed {
		t.Error("absent module allowed, want deny-by-default")
	}
}

func TestOverridePrecedence(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	roleID := primitive.NewObjectID()

	rolePerms := map[ModuleKey]ModulePermission{
		ModuleEstimates: {Actions: map[ActionKey]ActionPermission{
			ActionView:   {Allowed: true, Scope: ScopeDepartment},
			ActionDelete: {Allowed: false},
		}},
	}

	tests := []struct {
		name        string
		override    UserPermissionOverride
		module      ModuleKey
		action      ActionKey
		wantAllowed bool
		wantScope   DataScopeKey
	}{
		{
			name: "deny override beats role allow",
			override: UserPermissionOverride{
				Module: ModuleEstimates, Action: ActionView, Allow: boolPtr(false),
			},
			module: ModuleEstimates, action: ActionView,
			wantAllowed: false,
		},
		{
			name: "allow override beats role deny",
			override: UserPermissionOverride{
				Module: ModuleEstimates, Action: ActionDelete, Allow: boolPtr(true),
			},
			module: ModuleEstimates, action: ActionDelete,
			wantAllowed: true, wantScope: ScopeSelf,
		},
		{
			name: "override scope is authoritative even when broader",
			override: UserPermissionOverride{
				Module: ModuleEstimates, Action: ActionView, Scope: ScopeAll,
			},
			module: ModuleEstimates, action: ActionView,
			wantAllowed: true, wantScope: ScopeAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUserFinder{users: map[string]*common_models.User{
				userID: {RoleID: roleID, RoleName: "Office"},
			}}
			roles := &fakeRoleRepo{roles: map[string]*Role{
				roleID.Hex(): {ID: roleID, Name: "Office", Permissions: rolePerms},
			}}
			overrides := &fakeOverrideRepo{overrides: map[string][]UserPermissionOverride{
				userID: {tt.override},
			}}

			checker := newTestChecker(users, roles, overrides)
			d, err := checker.Check(context.Background(), userID, tt.module, tt.action)
			if err != nil {
				t.Fatalf("Check error: %v", err)
			}
			if d.Allowed != tt.wantAllowed {
				t.Errorf("allowed = %v, want %v", d.Allowed, tt.wantAllowed)
			}
			if tt.wantScope != "" && d.Scope != tt.wantScope {
				t.Errorf("scope = %q, want %q", d.Scope, tt.wantScope)
			}
		})
	}
}

func TestFieldOverridesMergeNotReplace(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	roleID := primitive.NewObjectID()

	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleID: roleID, RoleName: "Office"},
	}}
	roles := &fakeRoleRepo{roles: map[string]*Role{
		roleID.Hex(): {
			ID:   roleID,
			Name: "Office",
			Permissions: map[ModuleKey]ModulePermission{
				ModuleFinancials: {
					Actions:    map[ActionKey]ActionPermission{ActionView: {Allowed: true}},
					ViewFields: []string{"manual_original_contract", "manual_change_orders"},
				},
			},
		},
	}}
	// The override lifts one restriction and adds another; the role's other
	// restriction must survive.
	overrides := &fakeOverrideRepo{overrides: map[string][]UserPermissionOverride{
		userID: {{
			Module: ModuleFinancials,
			Action: ActionView,
			ViewFields: map[string]bool{
				"manual_original_contract": false,
				"customer":                 true,
			},
		}},
	}}

	checker := newTestChecker(users, roles, overrides)
	d, err := checker.Check(context.Background(), userID, ModuleFinancials, ActionView)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}

	if !d.FieldAllowed("manual_original_contract") {
		t.Error("lifted restriction still applies")
	}
	if d.FieldAllowed("customer") {
		t.Error("added restriction not applied")
	}
	if d.FieldAllowed("manual_change_orders") {
		t.Error("untouched role restriction was lost in the merge")
	}
}

func TestCacheInvalidation(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	roleID := primitive.NewObjectID()

	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleID: roleID, RoleName: "Office"},
	}}
	roles := &fakeRoleRepo{roles: map[string]*Role{
		roleID.Hex(): {
			ID:   roleID,
			Name: "Office",
			Permissions: map[ModuleKey]ModulePermission{
				ModuleClients: {Actions: map[ActionKey]ActionPermission{
					ActionView: {Allowed: true},
				}},
			},
		},
	}}
	overrides := &fakeOverrideRepo{overrides: map[string][]UserPermissionOverride{}}

	checker := newTestChecker(users, roles, overrides)

	d, _ := checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if !d.Allowed {
		t.Fatal("expected initial allow")
	}

	// New deny override appears; the stale snapshot still answers until
	// invalidated.
	overrides.overrides[userID] = []UserPermissionOverride{{
		Module: ModuleClients, Action: ActionView, Allow: boolPtr(false),
	}}

	d, _ = checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if !d.Allowed {
		t.Fatal("cached snapshot should still allow before invalidation")
	}

	checker.Invalidate(userID)

	d, _ = checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if d.Allowed {
		t.Error("check after invalidation still reflects the stale value")
	}
}

func TestStoreErrorsFailClosed(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	roleID := primitive.NewObjectID()

	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleID: roleID, RoleName: "Office"},
	}}
	roles := &fakeRoleRepo{err: errors.New("store down")}

	checker := newTestChecker(users, roles, &fakeOverrideRepo{})

	d, err := checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if err == nil {
		t.Fatal("expected resolution error")
	}
	if d.Allowed {
		t.Error("store error resolved to allow, must fail closed")
	}
}

func TestUserWithoutRoleIsDenied(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	users := &fakeUserFinder{users: map[string]*common_models.User{
		userID: {RoleName: "Field Crew"},
	}}

	checker := newTestChecker(users, &fakeRoleRepo{}, &fakeOverrideRepo{})

	d, err := checker.Check(context.Background(), userID, ModuleClients, ActionView)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if d.Allowed {
		t.Error("user with zero role id must be denied")
	}
}
