package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-access-api/internal/models"
)

func TestPermissionServiceEmptyStateDeniesEverything(t *testing.T) {
	svc := NewPermissionService()

	assert.False(t, svc.HasPermission(models.PermissionFor(models.ResourceSales, models.ActionRead)))
	assert.False(t, svc.CanAccess(models.ResourceSales, models.ActionRead))
	assert.False(t, svc.HasRole(models.RoleAdmin))
	assert.Empty(t, svc.UserPermissions())
	assert.Empty(t, svc.UserRoles())
	assert.Empty(t, svc.GetAccessibleModules())
}

func TestPermissionServiceSetUserRolesComputesUnion(t *testing.T) {
	svc := NewPermissionService()
	svc.SetUserRoles([]models.Role{models.RoleSalesUser, models.RoleViewer})

	// from SALES_USER
	assert.True(t, svc.CanCreate(models.ResourceCustomer))
	assert.True(t, svc.CanUpdate(models.ResourceSales))
	// from VIEWER only
	assert.True(t, svc.CanRead(models.ResourceBank))
	assert.True(t, svc.CanRead(models.ResourceReport))
	// neither role grants these
	assert.False(t, svc.CanDelete(models.ResourceCustomer))
	assert.False(t, svc.CanRead(models.ResourceUser))

	// shared grants appear once
	perms := svc.UserPermissions()
	seen := map[models.Permission]int{}
	for _, p := range perms {
		seen[p]++
	}
	for p, count := range seen {
		assert.Equalf(t, 1, count, "permission %s duplicated", p)
	}
}

func TestPermissionServiceUnknownRoleGrantsNothing(t *testing.T) {
	svc := NewPermissionService()
	svc.SetUserRoles([]models.Role{"INTERN"})

	assert.True(t, svc.HasRole("INTERN"))
	assert.Empty(t, svc.UserPermissions())
	assert.False(t, svc.CanRead(models.ResourceDashboard))
}

func TestPermissionServiceSetUserRolesReplacesPreviousState(t *testing.T) {
	svc := NewPermissionService()
	svc.SetUserRoles([]models.Role{models.RoleAdmin})
	require.True(t, svc.CanDelete(models.ResourceCompany))

	svc.SetUserRoles([]models.Role{models.RoleViewer})
	assert.False(t, svc.CanDelete(models.ResourceCompany))
	assert.False(t, svc.HasRole(models.RoleAdmin))
	assert.True(t, svc.CanRead(models.ResourceCompany))
}

func TestPermissionServiceSetUserPermissionsDeduplicates(t *testing.T) {
	svc := NewPermissionService()
	p := models.PermissionFor(models.ResourceItem, models.ActionRead)
	svc.SetUserPermissions([]models.Permission{p, p, "item:update"})

	assert.Len(t, svc.UserPermissions(), 2)
	assert.True(t, svc.HasPermission(p))
	assert.True(t, svc.CanUpdate(models.ResourceItem))
}

func TestPermissionServiceClearPermissions(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleSuperAdmin})
	require.NotEmpty(t, svc.UserPermissions())

	svc.ClearPermissions()
	assert.Empty(t, svc.UserPermissions())
	assert.Empty(t, svc.UserRoles())
	assert.False(t, svc.IsSuperAdmin())

	// idempotent
	svc.ClearPermissions()
	assert.Empty(t, svc.UserPermissions())
}

func TestPermissionServiceHasAnyAllEdgeCases(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleViewer})

	assert.False(t, svc.HasAnyPermission(), "empty any-check must deny")
	assert.True(t, svc.HasAllPermissions(), "empty all-check must allow")

	read := models.PermissionFor(models.ResourceSales, models.ActionRead)
	del := models.PermissionFor(models.ResourceSales, models.ActionDelete)
	assert.True(t, svc.HasAnyPermission(del, read))
	assert.False(t, svc.HasAllPermissions(read, del))
	assert.True(t, svc.HasAllPermissions(read))
}

func TestPermissionServiceRolePredicatesAreInclusive(t *testing.T) {
	super := PermissionServiceForRoles([]models.Role{models.RoleSuperAdmin})
	assert.True(t, super.IsSuperAdmin())
	assert.True(t, super.IsAdmin())
	assert.True(t, super.IsManager())
	assert.True(t, super.IsAccountant())

	admin := PermissionServiceForRoles([]models.Role{models.RoleAdmin})
	assert.False(t, admin.IsSuperAdmin())
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsManager())
	assert.True(t, admin.IsAccountant())

	manager := PermissionServiceForRoles([]models.Role{models.RoleManager})
	assert.False(t, manager.IsAdmin())
	assert.True(t, manager.IsManager())
	assert.False(t, manager.IsAccountant())

	accountant := PermissionServiceForRoles([]models.Role{models.RoleAccountant})
	assert.True(t, accountant.IsAccountant())
	assert.False(t, accountant.IsManager())
}

func TestPermissionServiceCanManageFamilyIsPermissionBased(t *testing.T) {
	// SALES_USER can create and update customers but not delete them; a
	// single mutating action is enough to manage.
	sales := PermissionServiceForRoles([]models.Role{models.RoleSalesUser})
	assert.True(t, sales.CanManageCustomers())
	assert.False(t, sales.CanManageVendors())
	assert.False(t, sales.CanManageUsers())

	viewer := PermissionServiceForRoles([]models.Role{models.RoleViewer})
	assert.False(t, viewer.CanManageCompanies())
	assert.False(t, viewer.CanManageInventory())
}

func TestPermissionServiceGetAccessControlMatrix(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleAccountant})

	bank := svc.GetAccessControl(models.ResourceBank)
	assert.True(t, bank.CanCreate)
	assert.True(t, bank.CanRead)
	assert.True(t, bank.CanUpdate)
	assert.False(t, bank.CanDelete)
	assert.True(t, bank.CanExport)
	assert.False(t, bank.CanImport)
	assert.False(t, bank.CanApprove)
	assert.False(t, bank.CanManage)

	unknown := svc.GetAccessControl("warehouse")
	assert.Equal(t, models.AccessControl{}, unknown)
}

func TestPermissionServiceGetPermissionsSummaryCoversFixedResources(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleViewer})
	summary := svc.GetPermissionsSummary()

	require.Len(t, summary, len(models.SummaryResources))
	for _, resource := range models.SummaryResources {
		_, ok := summary[resource]
		assert.Truef(t, ok, "summary missing resource %s", resource)
	}
	assert.True(t, summary[models.ResourceCompany].CanRead)
	assert.False(t, summary[models.ResourceCompany].CanUpdate)
}

func TestPermissionServiceAccessibleModulesKeepCanonicalOrder(t *testing.T) {
	super := PermissionServiceForRoles([]models.Role{models.RoleSuperAdmin})
	assert.Equal(t, []string{
		"companies", "customers", "vendors", "inventory", "sales",
		"purchases", "banks", "taxes", "users", "roles",
		"reports", "audit", "dashboard", "settings",
	}, super.GetAccessibleModules())

	sales := PermissionServiceForRoles([]models.Role{models.RoleSalesUser})
	assert.Equal(t, []string{"customers", "inventory", "sales", "dashboard"}, sales.GetAccessibleModules())

	accountant := PermissionServiceForRoles([]models.Role{models.RoleAccountant})
	assert.Equal(t, []string{
		"companies", "customers", "vendors", "sales",
		"purchases", "banks", "taxes", "reports", "dashboard",
	}, accountant.GetAccessibleModules())
}

func TestPermissionServiceReturnedSlicesAreCopies(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleViewer})

	perms := svc.UserPermissions()
	require.NotEmpty(t, perms)
	perms[0] = "tampered"
	assert.NotContains(t, svc.UserPermissions(), models.Permission("tampered"))

	roles := svc.UserRoles()
	roles[0] = "tampered"
	assert.Equal(t, []models.Role{models.RoleViewer}, svc.UserRoles())
}

func TestPermissionServiceConcurrentAccess(t *testing.T) {
	svc := PermissionServiceForRoles([]models.Role{models.RoleManager})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.SetUserRoles([]models.Role{models.RoleManager})
		}()
		go func() {
			defer wg.Done()
			_ = svc.CanRead(models.ResourceSales)
			_ = svc.GetAccessibleModules()
		}()
	}
	wg.Wait()

	assert.True(t, svc.CanRead(models.ResourceSales))
}
