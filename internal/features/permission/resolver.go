package permission

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/config"

	"go.uber.org/zap"
)

// UserFinder is the slice of the user repository the resolver needs.
// Declared here to avoid a dependency cycle with the user feature.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*common_models.User, error)
}

// Checker computes effective permissions for a user by merging the role with
// per-user overrides, and answers single (module, action) checks.
// Store errors fail closed: the caller gets a deny.
type Checker struct {
	users     UserFinder
	roles     RoleRepository
	overrides OverrideRepository
	cache     *Cache
	log       *zap.Logger

	// devBypass honors the SKIP_AUTH development identity, which has no
	// backing user document. Never set in production.
	devBypass bool
}

func NewChecker(cfg *config.Config, users UserFinder, roles RoleRepository, overrides OverrideRepository, cache *Cache, log *zap.Logger) *Checker {
	return &Checker{
		users:     users,
		roles:     roles,
		overrides: overrides,
		cache:     cache,
		log:       log,
		devBypass: cfg.SkipAuth,
	}
}

// EffectiveFor returns the merged snapshot for a user, from cache when warm.
func (c *Checker) EffectiveFor(ctx context.Context, userID string) (*Effective, error) {
	if eff, ok := c.cache.Get(userID); ok {
		return eff, nil
	}

	eff, err := c.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.cache.Set(userID, eff)
	return eff, nil
}

// Check answers one permission question. On any resolution error the decision
// denies (fail closed) and the error is returned for diagnostics.
func (c *Checker) Check(ctx context.Context, userID string, module ModuleKey, action ActionKey) (Decision, error) {
	eff, err := c.EffectiveFor(ctx, userID)
	if err != nil {
		c.log.Warn("permission resolution failed, denying",
			zap.String("user_id", userID),
			zap.String("module", string(module)),
			zap.String("action", string(action)),
			zap.Error(err))
		return Decision{UserID: userID}, err
	}
	return eff.Decide(module, action), nil
}

// CheckField answers a field-level check for one (module, action, field).
func (c *Checker) CheckField(ctx context.Context, userID string, module ModuleKey, action ActionKey, field string) (bool, error) {
	decision, err := c.Check(ctx, userID, module, action)
	if err != nil {
		return false, err
	}
	return decision.FieldAllowed(field), nil
}

// Invalidate drops one user's cached snapshot. Fire-and-forget from mutation
// paths; a stale entry survives at most until the next lookup after this call.
func (c *Checker) Invalidate(userID string) {
	c.cache.Invalidate(userID)
}

// InvalidateAll drops every cached snapshot (role edits, bulk changes).
func (c *Checker) InvalidateAll() {
	c.cache.InvalidateAll()
}

func (c *Checker) compute(ctx context.Context, userID string) (*Effective, error) {
	usr, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, apperr.NotFound("user not found")
	}

	eff := &Effective{
		UserID:     userID,
		RoleName:   usr.RoleName,
		Department: usr.Department,
		Modules:    make(map[ModuleKey]EffectiveModule),
		ComputedAt: time.Now(),
	}

	// Super admin short-circuits before any role or override lookup.
	if usr.RoleName == RoleSuperAdmin {
		eff.SuperAdmin = true
		return eff, nil
	}

	// No role assigned means deny-by-default across the board.
	if usr.RoleID.IsZero() {
		return eff, nil
	}

	role, err := c.roles.FindByID(ctx, usr.RoleID.Hex())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			// Dangling role reference: treat as no grants rather than erroring
			// every request for this user.
			return eff, nil
		}
		return nil, err
	}

	for module, mp := range role.Permissions {
		eff.Modules[module] = EffectiveModule{
			Actions:    copyActions(mp.Actions),
			ViewFields: toSet(mp.ViewFields),
			EditFields: toSet(mp.EditFields),
		}
	}

	overrides, err := c.overrides.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range overrides {
		applyOverride(eff, &overrides[i])
	}

	return eff, nil
}

// applyOverride layers one sparse patch onto the snapshot. An override's
// allow/scope replace the role's values outright; field entries touch only
// the fields listed, leaving the role's restriction on other fields intact.
func applyOverride(eff *Effective, o *UserPermissionOverride) {
	mod, ok := eff.Modules[o.Module]
	if !ok {
		mod = EffectiveModule{
			Actions:    make(map[ActionKey]ActionPermission),
			ViewFields: make(map[string]struct{}),
			EditFields: make(map[string]struct{}),
		}
	}

	ap := mod.Actions[o.Action]
	if o.Allow != nil {
		ap.Allowed = *o.Allow
	}
	if o.Scope != "" {
		// The override scope is authoritative, narrower or broader.
		ap.Scope = o.Scope
	}
	mod.Actions[o.Action] = ap

	applyFieldPatch(mod.ViewFields, o.ViewFields)
	applyFieldPatch(mod.EditFields, o.EditFields)

	eff.Modules[o.Module] = mod
}

func applyFieldPatch(set map[string]struct{}, patch map[string]bool) {
	for field, restricted := range patch {
		if restricted {
			set[field] = struct{}{}
		} else {
			delete(set, field)
		}
	}
}

func copyActions(in map[ActionKey]ActionPermission) map[ActionKey]ActionPermission {
	out := make(map[ActionKey]ActionPermission, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toSet(fields []string) map[string]struct{} {
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
