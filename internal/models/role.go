package models

// Role is a named permission bundle assignable to users.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleAdmin            Role = "ADMIN"
	RoleManager          Role = "MANAGER"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleSalesManager     Role = "SALES_MANAGER"
	RolePurchaseManager  Role = "PURCHASE_MANAGER"
	RoleInventoryManager Role = "INVENTORY_MANAGER"
	RoleSalesUser        Role = "SALES_USER"
	RolePurchaseUser     Role = "PURCHASE_USER"
	RoleInventoryUser    Role = "INVENTORY_USER"
	RoleViewer           Role = "VIEWER"
)

func grant(resource Resource, actions ...Action) []Permission {
	perms := make([]Permission, 0, len(actions))
	for _, action := range actions {
		perms = append(perms, PermissionFor(resource, action))
	}
	return perms
}

func grantAll(sets ...[]Permission) []Permission {
	var perms []Permission
	for _, set := range sets {
		perms = append(perms, set...)
	}
	return perms
}

var fullBusinessActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport}

// RolePermissions is the static role to permission table. It is defined at
// build time and never mutated; the only runtime mutation anywhere is which
// roles a session holds.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: grantAll(
		grant(ResourceCompany, fullBusinessActions...),
		grant(ResourceCustomer, fullBusinessActions...),
		grant(ResourceVendor, fullBusinessActions...),
		grant(ResourceItem, fullBusinessActions...),
		grant(ResourceSales, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourcePurchase, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourceBank, fullBusinessActions...),
		grant(ResourceTax, fullBusinessActions...),
		grant(ResourceUser, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionManage),
		grant(ResourceRole, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionManage),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceAudit, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
		grant(ResourceSettings, ActionRead, ActionUpdate, ActionManage),
	),
	RoleAdmin: grantAll(
		grant(ResourceCompany, fullBusinessActions...),
		grant(ResourceCustomer, fullBusinessActions...),
		grant(ResourceVendor, fullBusinessActions...),
		grant(ResourceItem, fullBusinessActions...),
		grant(ResourceSales, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourcePurchase, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourceBank, fullBusinessActions...),
		grant(ResourceTax, fullBusinessActions...),
		grant(ResourceUser, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign),
		grant(ResourceRole, ActionRead, ActionUpdate, ActionAssign),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceAudit, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
		grant(ResourceSettings, ActionRead, ActionUpdate),
	),
	RoleManager: grantAll(
		grant(ResourceCompany, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceCustomer, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceVendor, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceItem, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceSales, ActionCreate, ActionRead, ActionUpdate, ActionExport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourcePurchase, ActionCreate, ActionRead, ActionUpdate, ActionExport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourceBank, ActionRead, ActionExport),
		grant(ResourceTax, ActionRead, ActionExport),
		grant(ResourceUser, ActionRead),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceAudit, ActionRead),
		grant(ResourceDashboard, ActionRead),
		grant(ResourceSettings, ActionRead),
	),
	RoleAccountant: grantAll(
		grant(ResourceCompany, ActionRead),
		grant(ResourceCustomer, ActionRead),
		grant(ResourceVendor, ActionRead),
		grant(ResourceSales, ActionRead, ActionExport),
		grant(ResourcePurchase, ActionRead, ActionExport),
		grant(ResourceBank, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceTax, ActionCreate, ActionRead, ActionUpdate, ActionExport),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
	),
	RoleSalesManager: grantAll(
		grant(ResourceCustomer, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport),
		grant(ResourceItem, ActionRead),
		grant(ResourceSales, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
	),
	RolePurchaseManager: grantAll(
		grant(ResourceVendor, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport),
		grant(ResourceItem, ActionRead),
		grant(ResourcePurchase, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionApprove, ActionReject, ActionAssign),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
	),
	RoleInventoryManager: grantAll(
		grant(ResourceItem, ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport, ActionImport),
		grant(ResourceVendor, ActionRead),
		grant(ResourceReport, ActionRead, ActionExport),
		grant(ResourceDashboard, ActionRead),
	),
	RoleSalesUser: grantAll(
		grant(ResourceCustomer, ActionCreate, ActionRead, ActionUpdate),
		grant(ResourceItem, ActionRead),
		grant(ResourceSales, ActionCreate, ActionRead, ActionUpdate),
		grant(ResourceDashboard, ActionRead),
	),
	RolePurchaseUser: grantAll(
		grant(ResourceVendor, ActionCreate, ActionRead, ActionUpdate),
		grant(ResourceItem, ActionRead),
		grant(ResourcePurchase, ActionCreate, ActionRead, ActionUpdate),
		grant(ResourceDashboard, ActionRead),
	),
	RoleInventoryUser: grantAll(
		grant(ResourceItem, ActionCreate, ActionRead, ActionUpdate),
		grant(ResourceDashboard, ActionRead),
	),
	RoleViewer: grantAll(
		grant(ResourceCompany, ActionRead),
		grant(ResourceCustomer, ActionRead),
		grant(ResourceVendor, ActionRead),
		grant(ResourceItem, ActionRead),
		grant(ResourceSales, ActionRead),
		grant(ResourcePurchase, ActionRead),
		grant(ResourceBank, ActionRead),
		grant(ResourceTax, ActionRead),
		grant(ResourceReport, ActionRead),
		grant(ResourceDashboard, ActionRead),
	),
}
