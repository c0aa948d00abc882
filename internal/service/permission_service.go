package service

import (
	"sync"

	"github.com/noah-isme/erp-access-api/internal/models"
)

// accessibleModuleGates is the canonical ordered module list consumed by
// navigation. The order is part of the contract and must not be sorted or
// rearranged; filtering preserves it.
var accessibleModuleGates = []struct {
	Module string
	Gate   func(*PermissionService) bool
}{
	{"companies", func(s *PermissionService) bool { return s.CanRead(models.ResourceCompany) }},
	{"customers", func(s *PermissionService) bool { return s.CanRead(models.ResourceCustomer) }},
	{"vendors", func(s *PermissionService) bool { return s.CanRead(models.ResourceVendor) }},
	{"inventory", func(s *PermissionService) bool { return s.CanRead(models.ResourceItem) }},
	{"sales", func(s *PermissionService) bool { return s.CanRead(models.ResourceSales) }},
	{"purchases", func(s *PermissionService) bool { return s.CanRead(models.ResourcePurchase) }},
	{"banks", func(s *PermissionService) bool { return s.CanRead(models.ResourceBank) }},
	{"taxes", func(s *PermissionService) bool { return s.CanRead(models.ResourceTax) }},
	{"users", func(s *PermissionService) bool { return s.CanRead(models.ResourceUser) }},
	{"roles", func(s *PermissionService) bool { return s.CanRead(models.ResourceRole) }},
	{"reports", func(s *PermissionService) bool { return s.CanViewReports() }},
	{"audit", func(s *PermissionService) bool { return s.CanViewAuditLogs() }},
	{"dashboard", func(s *PermissionService) bool { return s.CanViewDashboard() }},
	{"settings", func(s *PermissionService) bool { return s.CanRead(models.ResourceSettings) }},
}

// PermissionService is the single source of truth for "can the current
// session do X to resource Y". One instance holds one logical session's
// authorization state; the hosting application wires it per session rather
// than relying on a process-wide singleton, so tests can construct isolated
// instances. All queries on an empty state return false, never an error.
type PermissionService struct {
	mu          sync.RWMutex
	roles       []models.Role
	permissions []models.Permission
	permSet     map[models.Permission]struct{}
	roleSet     map[models.Role]struct{}
}

// NewPermissionService constructs an engine with an empty session state.
func NewPermissionService() *PermissionService {
	return &PermissionService{
		permSet: make(map[models.Permission]struct{}),
		roleSet: make(map[models.Role]struct{}),
	}
}

// PermissionServiceForRoles is a convenience constructor seeding the engine
// from a role list, as done per request from JWT claims.
func PermissionServiceForRoles(roles []models.Role) *PermissionService {
	s := NewPermissionService()
	s.SetUserRoles(roles)
	return s
}

// SetUserPermissions replaces the effective permission set wholesale.
// Unknown permission strings are kept as-is; they simply never match.
func (s *PermissionService) SetUserPermissions(permissions []models.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replacePermissions(permissions)
}

// SetUserRoles replaces the role list and recomputes the permission set as
// the deduplicated union of each role's statically configured permissions.
// Unknown role names contribute the empty set silently.
func (s *PermissionService) SetUserRoles(roles []models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles = append([]models.Role(nil), roles...)
	s.roleSet = make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		s.roleSet[r] = struct{}{}
	}

	var union []models.Permission
	seen := make(map[models.Permission]struct{})
	for _, r := range roles {
		for _, p := range models.RolePermissions[r] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			union = append(union, p)
		}
	}
	s.replacePermissions(union)
}

func (s *PermissionService) replacePermissions(permissions []models.Permission) {
	deduped := make([]models.Permission, 0, len(permissions))
	set := make(map[models.Permission]struct{}, len(permissions))
	for _, p := range permissions {
		if _, ok := set[p]; ok {
			continue
		}
		set[p] = struct{}{}
		deduped = append(deduped, p)
	}
	s.permissions = deduped
	s.permSet = set
}

// ClearPermissions resets both lists to empty; used on logout. Idempotent.
func (s *PermissionService) ClearPermissions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = nil
	s.permissions = nil
	s.permSet = make(map[models.Permission]struct{})
	s.roleSet = make(map[models.Role]struct{})
}

// UserPermissions returns a copy of the effective permission set.
func (s *PermissionService) UserPermissions() []models.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Permission(nil), s.permissions...)
}

// UserRoles returns a copy of the session's roles.
func (s *PermissionService) UserRoles() []models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Role(nil), s.roles...)
}

// HasPermission reports exact membership of the permission token.
func (s *PermissionService) HasPermission(p models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.permSet[p]
	return ok
}

// HasAnyPermission reports whether at least one listed permission is held.
// An empty list yields false.
func (s *PermissionService) HasAnyPermission(permissions ...models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range permissions {
		if _, ok := s.permSet[p]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every listed permission is held.
// An empty list yields true.
func (s *PermissionService) HasAllPermissions(permissions ...models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range permissions {
		if _, ok := s.permSet[p]; !ok {
			return false
		}
	}
	return true
}

// HasRole reports exact membership of the role.
func (s *PermissionService) HasRole(r models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roleSet[r]
	return ok
}

// HasAnyRole reports whether at least one listed role is held.
func (s *PermissionService) HasAnyRole(roles ...models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range roles {
		if _, ok := s.roleSet[r]; ok {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether every listed role is held.
func (s *PermissionService) HasAllRoles(roles ...models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range roles {
		if _, ok := s.roleSet[r]; !ok {
			return false
		}
	}
	return true
}

// CanAccess checks the "<resource>:<action>" permission.
func (s *PermissionService) CanAccess(resource models.Resource, action models.Action) bool {
	return s.HasPermission(models.PermissionFor(resource, action))
}

// Fixed-action convenience wrappers over CanAccess.

func (s *PermissionService) CanCreate(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionCreate)
}

func (s *PermissionService) CanRead(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionRead)
}

func (s *PermissionService) CanUpdate(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionUpdate)
}

func (s *PermissionService) CanDelete(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionDelete)
}

func (s *PermissionService) CanExport(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionExport)
}

func (s *PermissionService) CanImport(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionImport)
}

func (s *PermissionService) CanApprove(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionApprove)
}

func (s *PermissionService) CanReject(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionReject)
}

func (s *PermissionService) CanAssign(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionAssign)
}

func (s *PermissionService) CanManage(resource models.Resource) bool {
	return s.CanAccess(resource, models.ActionManage)
}

// GetAccessControl returns the full action matrix for a resource, evaluated
// at call time, never cached.
func (s *PermissionService) GetAccessControl(resource models.Resource) models.AccessControl {
	return models.AccessControl{
		CanCreate:  s.CanCreate(resource),
		CanRead:    s.CanRead(resource),
		CanUpdate:  s.CanUpdate(resource),
		CanDelete:  s.CanDelete(resource),
		CanExport:  s.CanExport(resource),
		CanImport:  s.CanImport(resource),
		CanApprove: s.CanApprove(resource),
		CanReject:  s.CanReject(resource),
		CanAssign:  s.CanAssign(resource),
		CanManage:  s.CanManage(resource),
	}
}

// GetPermissionsSummary is the batch form of GetAccessControl over the fixed
// summary resource list.
func (s *PermissionService) GetPermissionsSummary() map[models.Resource]models.AccessControl {
	summary := make(map[models.Resource]models.AccessControl, len(models.SummaryResources))
	for _, resource := range models.SummaryResources {
		summary[resource] = s.GetAccessControl(resource)
	}
	return summary
}

// IsSuperAdmin reports exact SUPER_ADMIN membership.
func (s *PermissionService) IsSuperAdmin() bool {
	return s.HasRole(models.RoleSuperAdmin)
}

// IsAdmin is a superset check: SUPER_ADMIN counts as an admin. It is not an
// exact-role check.
func (s *PermissionService) IsAdmin() bool {
	return s.HasAnyRole(models.RoleSuperAdmin, models.RoleAdmin)
}

// IsManager absorbs both admin tiers in addition to MANAGER itself.
func (s *PermissionService) IsManager() bool {
	return s.HasAnyRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager)
}

// IsAccountant absorbs the admin tiers in addition to ACCOUNTANT.
func (s *PermissionService) IsAccountant() bool {
	return s.HasAnyRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAccountant)
}

// The CanManageX family is permission-based, not role-based: a resource is
// manageable when any of create/update/delete is held. Keep these distinct
// from the IsX role predicates above.

func (s *PermissionService) canManageResource(resource models.Resource) bool {
	return s.HasAnyPermission(
		models.PermissionFor(resource, models.ActionCreate),
		models.PermissionFor(resource, models.ActionUpdate),
		models.PermissionFor(resource, models.ActionDelete),
	)
}

func (s *PermissionService) CanManageCompanies() bool {
	return s.canManageResource(models.ResourceCompany)
}

func (s *PermissionService) CanManageCustomers() bool {
	return s.canManageResource(models.ResourceCustomer)
}

func (s *PermissionService) CanManageVendors() bool {
	return s.canManageResource(models.ResourceVendor)
}

func (s *PermissionService) CanManageInventory() bool {
	return s.canManageResource(models.ResourceItem)
}

func (s *PermissionService) CanManageUsers() bool {
	return s.canManageResource(models.ResourceUser)
}

func (s *PermissionService) CanManageRoles() bool {
	return s.canManageResource(models.ResourceRole)
}

func (s *PermissionService) CanManageSettings() bool {
	return s.canManageResource(models.ResourceSettings)
}

// CanViewReports gates the reports module.
func (s *PermissionService) CanViewReports() bool {
	return s.CanRead(models.ResourceReport)
}

// CanViewAuditLogs gates the audit module.
func (s *PermissionService) CanViewAuditLogs() bool {
	return s.CanRead(models.ResourceAudit)
}

// CanViewDashboard gates the dashboard module.
func (s *PermissionService) CanViewDashboard() bool {
	return s.CanRead(models.ResourceDashboard)
}

// GetAccessibleModules evaluates the fixed ordered module gates and returns
// the subset currently readable, in canonical order.
func (s *PermissionService) GetAccessibleModules() []string {
	modules := make([]string, 0, len(accessibleModuleGates))
	for _, gate := range accessibleModuleGates {
		if gate.Gate(s) {
			modules = append(modules, gate.Module)
		}
	}
	return modules
}
