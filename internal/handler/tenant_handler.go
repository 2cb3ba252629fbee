package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
	"github.com/prohmpiriya/tenant-service/internal/service"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/middleware"
	"github.com/prohmpiriya/tenant-service/pkg/response"
)

// TenantHandler handles tenant administration HTTP requests
type TenantHandler struct {
	tenantService service.TenantService
	log           *logger.Logger
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService, log *logger.Logger) *TenantHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TenantHandler{tenantService: tenantService, log: log}
}

// Create handles tenant creation
// POST /api/v1/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req dto.TenantDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.JSON(c, response.BadRequest(err.Error()))
		return
	}

	result, err := h.tenantService.Create(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, result)
}

// Update handles tenant update
// PUT /api/v1/tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := tenantIDParam(c)
	if !ok {
		return
	}

	var req dto.TenantDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.JSON(c, response.BadRequest(err.Error()))
		return
	}

	result, err := h.tenantService.Update(c.Request.Context(), callerFrom(c), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// GetByID handles retrieving the admin view of a tenant
// GET /api/v1/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := tenantIDParam(c)
	if !ok {
		return
	}

	result, err := h.tenantService.FindByID(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// List handles retrieving tenants with pagination
// GET /api/v1/tenants
func (h *TenantHandler) List(c *gin.Context) {
	var query dto.ListTenantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.JSON(c, response.BadRequest(err.Error()))
		return
	}

	result, err := h.tenantService.List(c.Request.Context(), callerFrom(c), &query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Paginated(result.Tenants, result.Page, result.PerPage, result.Total))
}

// GetBySubdomain handles the public lookup by subdomain
// GET /api/v1/tenants/public/:subdomain
func (h *TenantHandler) GetBySubdomain(c *gin.Context) {
	subdomain := c.Param("subdomain")
	if subdomain == "" {
		response.JSON(c, response.BadRequest("Subdomain is required"))
		return
	}

	var query dto.PublicTenantQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.JSON(c, response.BadRequest(err.Error()))
		return
	}

	result, err := h.tenantService.FindBySubdomain(c.Request.Context(), subdomain, query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// GetPublicByID handles the public lookup by id
// GET /api/v1/tenants/public/id/:id
func (h *TenantHandler) GetPublicByID(c *gin.Context) {
	id, ok := tenantIDParam(c)
	if !ok {
		return
	}

	result, err := h.tenantService.FindPublicByID(c.Request.Context(), id, c.Query("lang"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// GetCurrent resolves the tenant of the calling request
// GET /api/v1/tenants/public/current
func (h *TenantHandler) GetCurrent(c *gin.Context) {
	result, err := h.tenantService.ResolveCurrent(c.Request.Context(), c.Request, callerFrom(c), c.Query("lang"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// GetSingleDomain returns the main tenant in single-domain mode
// GET /api/v1/tenants/public/single
func (h *TenantHandler) GetSingleDomain(c *gin.Context) {
	result, err := h.tenantService.FindSingleDomainTenant(c.Request.Context(), c.Query("lang"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, response.Success(result))
}

// handleError maps service errors to response envelopes
func (h *TenantHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSubdomain):
		response.JSON(c, response.Error(response.ErrCodeDuplicateEntry, "Subdomain already in use"))
	case errors.Is(err, domain.ErrValidation):
		response.JSON(c, response.ValidationFailed(err.Error(), validationReason(err)))
	case errors.Is(err, domain.ErrAccessDenied):
		response.JSON(c, response.Forbidden("Not authorized"))
	case errors.Is(err, domain.ErrTenantNotFound):
		response.JSON(c, response.NotFound("Tenant not found"))
	case errors.Is(err, domain.ErrDataIntegrity):
		h.log.ErrorContext(c.Request.Context(), "stored tenant data is inconsistent", zap.Error(err))
		response.JSON(c, response.Error(response.ErrCodeDataIntegrity, "Stored tenant data is inconsistent"))
	default:
		h.log.ErrorContext(c.Request.Context(), "tenant request failed", zap.Error(err))
		response.JSON(c, response.InternalError(""))
	}
}

// validationReason names the rejected rule for clients that branch on it
func validationReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidLanguage):
		return "language"
	case errors.Is(err, domain.ErrInvalidSubdomain):
		return "subdomain"
	case errors.Is(err, domain.ErrIDMustBeNull):
		return "id"
	case errors.Is(err, domain.ErrInvalidSettings):
		return "settings"
	case errors.Is(err, domain.ErrFieldTooLong):
		return "length"
	default:
		return ""
	}
}

// callerFrom builds the caller from claims stored by the JWT middleware
func callerFrom(c *gin.Context) domain.Caller {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domain.Anonymous()
	}
	roles, _ := middleware.GetRoles(c)

	var tenantID *int64
	if id, ok := middleware.GetTenantID(c); ok {
		tenantID = &id
	}
	return domain.NewCaller(userID, roles, tenantID)
}

func tenantIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.JSON(c, response.BadRequest("Invalid tenant ID"))
		return 0, false
	}
	return id, true
}
