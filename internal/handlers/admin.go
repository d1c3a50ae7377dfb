package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/middleware"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

// TenantManager is the system-level tenant administration
type TenantManager interface {
	Create(ctx context.Context, req *models.CreateTenantRequest) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	RotateToken(ctx context.Context, id uuid.UUID, meta models.RequestMeta) (*models.Tenant, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, meta models.RequestMeta) (*models.Tenant, error)
}

// AuditLister reads a tenant's audit trail
type AuditLister interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter) ([]models.AuditLog, error)
}

type AdminHandler struct {
	tenants  TenantManager
	audit    AuditLister
	validate *validator.Validate
}

func NewAdminHandler(tenants TenantManager, audit AuditLister, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{tenants: tenants, audit: audit, validate: validate}
}

type tenantCredentials struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	APIToken string    `json:"apiToken"`
}

type tenantCredentialsResponse struct {
	Success bool              `json:"success"`
	Tenant  tenantCredentials `json:"tenant"`
}

type tenantResponse struct {
	Success bool           `json:"success"`
	Tenant  *models.Tenant `json:"tenant"`
}

type tenantListResponse struct {
	Success bool            `json:"success"`
	Tenants []models.Tenant `json:"tenants"`
}

type auditListResponse struct {
	Success bool              `json:"success"`
	Logs    []models.AuditLog `json:"logs"`
}

// CreateTenant registers a tenant; the token is only shown here and on rotation
func (h *AdminHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateTenantRequest
	if issues := decodeRequest(r, h.validate, &req); issues != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request", issues...)
		return
	}

	tenant, err := h.tenants.Create(ctx, &req)
	if err != nil {
		h.fail(w, err, "Failed to create tenant")
		return
	}
	writeJSON(w, http.StatusCreated, tenantCredentialsResponse{Success: true, Tenant: tenantCreds(tenant)})
}

// ListTenants returns every tenant without tokens
func (h *AdminHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list tenants")
		return
	}
	writeJSON(w, http.StatusOK, tenantListResponse{Success: true, Tenants: tenants})
}

// RotateTenantKey issues a new management token
func (h *AdminHandler) RotateTenantKey(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	tenant, err := h.tenants.RotateToken(r.Context(), id, middleware.RequestMeta(r))
	if err != nil {
		h.fail(w, err, "Failed to rotate tenant key")
		return
	}
	writeJSON(w, http.StatusOK, tenantCredentialsResponse{Success: true, Tenant: tenantCreds(tenant)})
}

// SetTenantStatus flips the tenant kill switch
func (h *AdminHandler) SetTenantStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req models.TenantStatusRequest
	if issues := decodeRequest(r, h.validate, &req); issues != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request", issues...)
		return
	}

	tenant, err := h.tenants.SetActive(r.Context(), id, *req.IsActive, middleware.RequestMeta(r))
	if err != nil {
		h.fail(w, err, "Failed to change tenant status")
		return
	}
	writeJSON(w, http.StatusOK, tenantResponse{Success: true, Tenant: tenant})
}

// ListAuditLogs returns a page of a tenant's audit trail, optionally for one action
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	filter := repository.AuditFilter{
		Action: r.URL.Query().Get("action"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	logs, err := h.audit.ListByTenant(r.Context(), id, filter)
	if err != nil {
		h.fail(w, err, "Failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, auditListResponse{Success: true, Logs: logs})
}

func (h *AdminHandler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrTenantNotFound):
		writeFailure(w, http.StatusNotFound, "Tenant not found")
	case errors.Is(err, services.ErrSlugTaken):
		writeFailure(w, http.StatusConflict, "Slug already in use")
	default:
		log.Error().Err(err).Msg(msg)
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func tenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid tenant id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v >= 0 {
		return v
	}
	return def
}

func tenantCreds(t *models.Tenant) tenantCredentials {
	return tenantCredentials{ID: t.ID, Name: t.Name, Slug: t.Slug, APIToken: t.APIToken}
}
