package permission

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModuleKey is a closed enumeration of the functional areas subject to
// access control. Unknown keys are rejected at construction, not silently
// ignored at lookup.
type ModuleKey string

const (
	ModuleClients     ModuleKey = "clients"
	ModuleEstimates   ModuleKey = "estimates"
	ModuleSchedules   ModuleKey = "schedules"
	ModuleJobTickets  ModuleKey = "jobtickets"
	ModuleSafetyForms ModuleKey = "safetyforms"
	ModuleVendors     ModuleKey = "vendors"
	ModuleFinancials  ModuleKey = "financials"
	ModuleFiles       ModuleKey = "files"
	ModuleUsers       ModuleKey = "users"
	ModuleRoles       ModuleKey = "roles"
	ModuleSettings    ModuleKey = "settings"
	ModuleReports     ModuleKey = "reports"
)

// AllModules lists every valid module key, in display order.
var AllModules = []ModuleKey{
	ModuleClients, ModuleEstimates, ModuleSchedules, ModuleJobTickets,
	ModuleSafetyForms, ModuleVendors, ModuleFinancials, ModuleFiles,
	ModuleUsers, ModuleRoles, ModuleSettings, ModuleReports,
}

func ParseModuleKey(s string) (ModuleKey, error) {
	for _, m := range AllModules {
		if string(m) == s {
			return m, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("unknown module %q", s))
}

// ActionKey is an operation class within a module.
type ActionKey string

const (
	ActionView    ActionKey = "view"
	ActionCreate  ActionKey = "create"
	ActionUpdate  ActionKey = "update"
	ActionDelete  ActionKey = "delete"
	ActionExport  ActionKey = "export"
	ActionApprove ActionKey = "approve"
)

var AllActions = []ActionKey{
	ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionExport, ActionApprove,
}

func ParseActionKey(s string) (ActionKey, error) {
	for _, a := range AllActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("unknown action %q", s))
}

// DataScopeKey is the breadth of records a permission applies to.
type DataScopeKey string

const (
	ScopeSelf       DataScopeKey = "self"
	ScopeDepartment DataScopeKey = "department"
	ScopeAll        DataScopeKey = "all"
)

func ParseDataScopeKey(s string) (DataScopeKey, error) {
	switch DataScopeKey(s) {
	case ScopeSelf, ScopeDepartment, ScopeAll:
		return DataScopeKey(s), nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown data scope %q", s))
}

// RoleSuperAdmin is the sentinel role name that bypasses all permission
// computation. Checked before any role or override lookup so a broken
// roles collection can never lock the super admin out.
const RoleSuperAdmin = "Super Admin"

// ActionPermission is one action grant inside a module permission.
type ActionPermission struct {
	Allowed bool         `json:"allowed" bson:"allowed"`
	Scope   DataScopeKey `json:"scope,omitempty" bson:"scope,omitempty"`
}

// ModulePermission is what a role grants for one module. ViewFields and
// EditFields list RESTRICTED field keys: view restrictions strip fields from
// responses, edit restrictions reject writes touching them.
type ModulePermission struct {
	Actions    map[ActionKey]ActionPermission `json:"actions" bson:"actions"`
	ViewFields []string                       `json:"view_fields,omitempty" bson:"view_fields,omitempty"`
	EditFields []string                       `json:"edit_fields,omitempty" bson:"edit_fields,omitempty"`
}

// Role is mutable reference data holding per-module grants.
type Role struct {
	ID              primitive.ObjectID             `json:"id" bson:"_id,omitempty"`
	Name            string                         `json:"name" bson:"name"`
	Description     string                         `json:"description" bson:"description"`
	IsSystemDefault bool                           `json:"is_system_default" bson:"is_system_default"`
	Permissions     map[ModuleKey]ModulePermission `json:"permissions" bson:"permissions"`
	CreatedAt       time.Time                      `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at" bson:"updated_at"`
}

// Validate rejects invalid module, action, or scope keys at the boundary.
func (r *Role) Validate() error {
	if r.Name == "" {
		return apperr.Validation("role name is required")
	}
	for module, mp := range r.Permissions {
		if _, err := ParseModuleKey(string(module)); err != nil {
			return err
		}
		for action, ap := range mp.Actions {
			if _, err := ParseActionKey(string(action)); err != nil {
				return err
			}
			if ap.Scope != "" {
				if _, err := ParseDataScopeKey(string(ap.Scope)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// UserPermissionOverride is a sparse per-user patch layered on top of the
// user's role. Allow is a pointer so a fields-only override merges with the
// role grant instead of replacing it. The field maps carry field -> restricted;
// entries apply only to the fields listed, and a false value lifts the role's
// restriction on that field.
type UserPermissionOverride struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Module     ModuleKey          `json:"module" bson:"module"`
	Action     ActionKey          `json:"action" bson:"action"`
	Allow      *bool              `json:"allow,omitempty" bson:"allow,omitempty"`
	Scope      DataScopeKey       `json:"scope,omitempty" bson:"scope,omitempty"`
	ViewFields map[string]bool    `json:"view_fields,omitempty" bson:"view_fields,omitempty"`
	EditFields map[string]bool    `json:"edit_fields,omitempty" bson:"edit_fields,omitempty"`
	CreatedBy  primitive.ObjectID `json:"created_by" bson:"created_by"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

func (o *UserPermissionOverride) Validate() error {
	if o.UserID.IsZero() {
		return apperr.Validation("override user_id is required")
	}
	if _, err := ParseModuleKey(string(o.Module)); err != nil {
		return err
	}
	if _, err := ParseActionKey(string(o.Action)); err != nil {
		return err
	}
	if o.Scope != "" {
		if _, err := ParseDataScopeKey(string(o.Scope)); err != nil {
			return err
		}
	}
	if o.Allow == nil && o.Scope == "" && len(o.ViewFields) == 0 && len(o.EditFields) == 0 {
		return apperr.Validation("override must set allow, scope, or field rules")
	}
	return nil
}

// EffectiveModule is the computed grant for one module in a user snapshot.
// The restriction sets are maps for O(1) checks; MarshalJSON flattens them
// to sorted slices for clients.
type EffectiveModule struct {
	Actions    map[ActionKey]ActionPermission `json:"actions"`
	ViewFields map[string]struct{}            `json:"-"`
	EditFields map[string]struct{}            `json:"-"`
}

func (m EffectiveModule) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Actions              map[ActionKey]ActionPermission `json:"actions"`
		RestrictedViewFields []string                       `json:"restricted_view_fields,omitempty"`
		RestrictedEditFields []string                       `json:"restricted_edit_fields,omitempty"`
	}{m.Actions, sortedFieldSet(m.ViewFields), sortedFieldSet(m.EditFields)})
}

func sortedFieldSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Effective is the per-user merged snapshot of role + overrides. Cacheable;
// invalidated whenever the user's role or overrides change.
type Effective struct {
	UserID     string                        `json:"user_id"`
	SuperAdmin bool                          `json:"super_admin"`
	RoleName   string                        `json:"role_name"`
	Department string                        `json:"department,omitempty"`
	Modules    map[ModuleKey]EffectiveModule `json:"modules"`
	ComputedAt time.Time                     `json:"computed_at"`
}

// Compact returns the client-side quick-check form: "module:action" -> bool.
func (e *Effective) Compact() map[string]bool {
	out := make(map[string]bool)
	for _, m := range AllModules {
		for _, a := range AllActions {
			out[string(m)+":"+string(a)] = e.Decide(m, a).Allowed
		}
	}
	return out
}

// Decision is the answer to a single permission check.
type Decision struct {
	Allowed          bool
	Scope            DataScopeKey
	RestrictedFields map[string]struct{}
	// Department of the checked user, needed for department-scope filtering.
	Department string
	UserID     string
}

// Decide evaluates one (module, action) pair against the snapshot.
// Deny-by-default: absent module or action entries deny.
func (e *Effective) Decide(module ModuleKey, action ActionKey) Decision {
	if e.SuperAdmin {
		return Decision{Allowed: true, Scope: ScopeAll, UserID: e.UserID, Department: e.Department}
	}

	mod, ok := e.Modules[module]
	if !ok {
		return Decision{UserID: e.UserID}
	}
	ap, ok := mod.Actions[action]
	if !ok || !ap.Allowed {
		return Decision{UserID: e.UserID}
	}

	scope := ap.Scope
	if scope == "" {
		scope = ScopeSelf
	}

	restricted := mod.ViewFields
	if action == ActionCreate || action == ActionUpdate {
		restricted = mod.EditFields
	}

	return Decision{
		Allowed:          true,
		Scope:            scope,
		RestrictedFields: restricted,
		Department:       e.Department,
		UserID:           e.UserID,
	}
}

// PermissionAuditLog is an append-only record of a permission mutation
// (role edit, override creation or deletion). The application only ever
// inserts and lists; there is no update or delete path.
type PermissionAuditLog struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	RoleID        string             `json:"role_id,omitempty" bson:"role_id,omitempty"`
	ChangedBy     string             `json:"changed_by" bson:"changed_by"`
	Module        string             `json:"module,omitempty" bson:"module,omitempty"`
	Action        string             `json:"action,omitempty" bson:"action,omitempty"`
	PreviousValue interface{}        `json:"previous_value,omitempty" bson:"previous_value,omitempty"`
	NewValue      interface{}        `json:"new_value,omitempty" bson:"new_value,omitempty"`
	Timestamp     time.Time          `json:"timestamp" bson:"timestamp"`
}

// FieldAllowed reports whether a single field survives the decision's
// restriction set. Super-admin decisions restrict nothing.
func (d Decision) FieldAllowed(field string) bool {
	if !d.Allowed {
		return false
	}
	_, restricted := d.RestrictedFields[field]
	return !restricted
}
