package dto

import "github.com/noah-isme/erp-access-api/internal/models"

// PermissionCheckRequest asks whether the current user can perform one
// resource/action pair.
type PermissionCheckRequest struct {
	Resource models.Resource `json:"resource" binding:"required"`
	Action   models.Action   `json:"action" binding:"required"`
}

// PermissionCheckResponse echoes the checked pair with the decision.
type PermissionCheckResponse struct {
	Resource models.Resource `json:"resource"`
	Action   models.Action   `json:"action"`
	Allowed  bool            `json:"allowed"`
}

// BatchPermissionCheckRequest checks several pairs at once.
type BatchPermissionCheckRequest struct {
	Checks []PermissionCheckRequest `json:"checks" binding:"required,min=1,dive"`
}

// BatchPermissionCheckResponse carries per-pair decisions.
type BatchPermissionCheckResponse struct {
	Results []PermissionCheckResponse `json:"results"`
}

// AccessSummaryResponse is the full authorization state of the current user.
type AccessSummaryResponse struct {
	Roles             []models.Role                            `json:"roles"`
	Permissions       []models.Permission                      `json:"permissions"`
	Summary           map[models.Resource]models.AccessControl `json:"summary"`
	AccessibleModules []string                                 `json:"accessibleModules"`
}

// AccessControlResponse reports the per-resource matrix for one resource.
type AccessControlResponse struct {
	Resource models.Resource      `json:"resource"`
	Access   models.AccessControl `json:"access"`
}
