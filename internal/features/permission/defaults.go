package permission

import "time"

func allow(scope DataScopeKey, actions ...ActionKey) map[ActionKey]ActionPermission {
	out := make(map[ActionKey]ActionPermission, len(actions))
	for _, a := range actions {
		out[a] = ActionPermission{Allowed: true, Scope: scope}
	}
	return out
}

// DefaultRoles are the system roles seeded on first boot. The Super Admin
// role carries no permission map at all; the sentinel name bypasses
// resolution entirely.
func DefaultRoles() []Role {
	now := time.Now()

	fullModule := func() ModulePermission {
		return ModulePermission{Actions: allow(ScopeAll, AllActions...)}
	}

	adminPerms := make(map[ModuleKey]ModulePermission, len(AllModules))
	for _, m := range AllModules {
		adminPerms[m] = fullModule()
	}

	officePerms := map[ModuleKey]ModulePermission{
		ModuleClients:   {Actions: allow(ScopeAll, ActionView, ActionCreate, ActionUpdate)},
		ModuleEstimates: {Actions: allow(ScopeDepartment, ActionView, ActionCreate, ActionUpdate, ActionExport)},
		ModuleSchedules: {Actions: allow(ScopeDepartment, ActionView, ActionCreate, ActionUpdate)},
		ModuleJobTickets: {
			Actions: allow(ScopeDepartment, ActionView, ActionCreate, ActionUpdate),
		},
		ModuleSafetyForms: {Actions: allow(ScopeDepartment, ActionView, ActionCreate)},
		ModuleVendors:     {Actions: allow(ScopeAll, ActionView)},
		ModuleFiles:       {Actions: allow(ScopeDepartment, ActionView, ActionCreate)},
		ModuleFinancials: {
			Actions: allow(ScopeDepartment, ActionView),
			// Office staff see job financials but not the manual contract knobs.
			ViewFields: []string{"manual_original_contract", "manual_change_orders"},
		},
		ModuleReports: {Actions: allow(ScopeDepartment, ActionView, ActionExport)},
	}

	crewPerms := map[ModuleKey]ModulePermission{
		ModuleSchedules:   {Actions: allow(ScopeSelf, ActionView)},
		ModuleJobTickets:  {Actions: allow(ScopeSelf, ActionView, ActionUpdate)},
		ModuleSafetyForms: {Actions: allow(ScopeSelf, ActionView, ActionCreate)},
		ModuleFiles:       {Actions: allow(ScopeSelf, ActionView, ActionCreate)},
	}

	return []Role{
		{
			Name:            RoleSuperAdmin,
			Description:     "Unconditional access to every module, action, field, and scope",
			IsSystemDefault: true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Name:            "Admin",
			Description:     "Full access across all modules",
			IsSystemDefault: true,
			Permissions:     adminPerms,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Name:            "Office",
			Description:     "Office staff: clients, estimates, scheduling, reporting",
			IsSystemDefault: true,
			Permissions:     officePerms,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			Name:            "Field Crew",
			Description:     "Field crew: own schedules, job tickets, and safety forms",
			IsSystemDefault: true,
			Permissions:     crewPerms,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}
