package models

// Resource identifies a domain noun that permissions apply to.
type Resource string

const (
	ResourceCompany   Resource = "company"
	ResourceCustomer  Resource = "customer"
	ResourceVendor    Resource = "vendor"
	ResourceItem      Resource = "item"
	ResourceSales     Resource = "sales"
	ResourcePurchase  Resource = "purchase"
	ResourceBank      Resource = "bank"
	ResourceTax       Resource = "tax"
	ResourceUser      Resource = "user"
	ResourceRole      Resource = "role"
	ResourceReport    Resource = "report"
	ResourceAudit     Resource = "audit"
	ResourceDashboard Resource = "dashboard"
	ResourceSettings  Resource = "settings"
)

// Action identifies an operation that can be performed on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionAssign  Action = "assign"
	ActionManage  Action = "manage"
)

// Permission is an opaque "<resource>:<action>" token. A permission is
// meaningful only as an exact member of the session's permission set; no
// wildcard or hierarchy matching is performed.
type Permission string

// PermissionFor builds the canonical permission token for a resource/action pair.
func PermissionFor(resource Resource, action Action) Permission {
	return Permission(string(resource) + ":" + string(action))
}

// AccessControl is the full action matrix for one resource, evaluated at a
// point in time. Consumers use it to drive enable/disable state in one shot
// instead of issuing individual permission queries.
type AccessControl struct {
	CanCreate  bool `json:"canCreate"`
	CanRead    bool `json:"canRead"`
	CanUpdate  bool `json:"canUpdate"`
	CanDelete  bool `json:"canDelete"`
	CanExport  bool `json:"canExport"`
	CanImport  bool `json:"canImport"`
	CanApprove bool `json:"canApprove"`
	CanReject  bool `json:"canReject"`
	CanAssign  bool `json:"canAssign"`
	CanManage  bool `json:"canManage"`
}

// SummaryResources is the fixed resource list covered by permission summaries.
var SummaryResources = []Resource{
	ResourceCompany,
	ResourceCustomer,
	ResourceVendor,
	ResourceItem,
	ResourceSales,
	ResourcePurchase,
	ResourceBank,
	ResourceTax,
	ResourceUser,
	ResourceRole,
	ResourceReport,
}
