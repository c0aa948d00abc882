package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-access-api/internal/dto"
	"github.com/noah-isme/erp-access-api/internal/models"
	"github.com/noah-isme/erp-access-api/internal/service"
	appErrors "github.com/noah-isme/erp-access-api/pkg/errors"
	"github.com/noah-isme/erp-access-api/pkg/response"
)

// AccessHandler exposes the authorization state of the current user.
type AccessHandler struct {
	metrics *service.MetricsService
}

// NewAccessHandler creates a new handler.
func NewAccessHandler(metrics *service.MetricsService) *AccessHandler {
	return &AccessHandler{metrics: metrics}
}

// Summary returns roles, flat permissions, the per-resource matrix and the
// ordered accessible module list for the current user.
func (h *AccessHandler) Summary(c *gin.Context) {
	perms := permissionsFromContext(c)
	if perms == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res := dto.AccessSummaryResponse{
		Roles:             perms.UserRoles(),
		Permissions:       perms.UserPermissions(),
		Summary:           perms.GetPermissionsSummary(),
		AccessibleModules: perms.GetAccessibleModules(),
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Modules returns the ordered list of modules the user can open.
func (h *AccessHandler) Modules(c *gin.Context) {
	perms := permissionsFromContext(c)
	if perms == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"modules": perms.GetAccessibleModules()}, nil)
}

// Check evaluates one resource/action pair for the current user.
func (h *AccessHandler) Check(c *gin.Context) {
	perms := permissionsFromContext(c)
	if perms == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check payload"))
		return
	}

	allowed := perms.CanAccess(req.Resource, req.Action)
	if h.metrics != nil {
		h.metrics.ObservePermissionCheck(allowed)
	}

	response.JSON(c, http.StatusOK, dto.PermissionCheckResponse{
		Resource: req.Resource,
		Action:   req.Action,
		Allowed:  allowed,
	}, nil)
}

// CheckBatch evaluates several resource/action pairs in one round trip.
func (h *AccessHandler) CheckBatch(c *gin.Context) {
	perms := permissionsFromContext(c)
	if perms == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BatchPermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch check payload"))
		return
	}

	results := make([]dto.PermissionCheckResponse, 0, len(req.Checks))
	for _, check := range req.Checks {
		allowed := perms.CanAccess(check.Resource, check.Action)
		if h.metrics != nil {
			h.metrics.ObservePermissionCheck(allowed)
		}
		results = append(results, dto.PermissionCheckResponse{
			Resource: check.Resource,
			Action:   check.Action,
			Allowed:  allowed,
		})
	}

	response.JSON(c, http.StatusOK, dto.BatchPermissionCheckResponse{Results: results}, nil)
}

// Control returns the full access-control matrix for one resource.
func (h *AccessHandler) Control(c *gin.Context) {
	perms := permissionsFromContext(c)
	if perms == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resource := models.Resource(c.Param("resource"))
	if resource == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource is required"))
		return
	}

	response.JSON(c, http.StatusOK, dto.AccessControlResponse{
		Resource: resource,
		Access:   perms.GetAccessControl(resource),
	}, nil)
}
