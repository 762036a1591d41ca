package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-search-service/internal/app/service"
	"game-search-service/internal/domain"
	"game-search-service/internal/policy"
	"game-search-service/internal/resilience"
	"game-search-service/internal/transport/httpserver/dto"
	"game-search-service/internal/validator"
)

// GuardAdmin exposes the external-call guard.
// Implementations: internal/resilience/guard.go
type GuardAdmin interface {
	Snapshot() resilience.Snapshot
	Reset()
}

// Syncer runs the enrichment sync on demand.
// Implementations: internal/app/service/sync_service.go
type Syncer interface {
	SyncLimit(ctx context.Context, limit int) service.SyncResult
}

// PolicyAdmin reads and reloads company policies.
// Implementations: internal/policy/filter.go
type PolicyAdmin interface {
	Book() *policy.Book
	Reload(ctx context.Context) error
}

// PolicyWriter stores a company policy.
// Implementations: internal/infra/postgres/policy_repository.go
type PolicyWriter interface {
	Save(ctx context.Context, p domain.CompanyPolicy) error
}

// CacheAdmin clears cached search results.
// Implementations: internal/app/service/search_service.go
type CacheAdmin interface {
	Clear(ctx context.Context) error
}

// AdminHandler handles operational endpoints. Any dependency may be nil, in
// which case its endpoints answer 503.
type AdminHandler struct {
	guard     GuardAdmin
	syncer    Syncer
	policies  PolicyAdmin
	writer    PolicyWriter
	cache     CacheAdmin
	validator *validator.Validator
	logger    *zap.Logger
}

// AdminDeps groups the AdminHandler collaborators.
type AdminDeps struct {
	Guard    GuardAdmin
	Syncer   Syncer
	Policies PolicyAdmin
	Writer   PolicyWriter
	Cache    CacheAdmin
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(deps AdminDeps, v *validator.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		guard:     deps.Guard,
		syncer:    deps.Syncer,
		policies:  deps.Policies,
		writer:    deps.Writer,
		cache:     deps.Cache,
		validator: v,
		logger:    logger,
	}
}

func unavailable(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Error: what + " is not configured",
		Code:  "UNAVAILABLE",
	})
}

// Resilience handles GET /api/v1/admin/resilience
func (h *AdminHandler) Resilience(c *fiber.Ctx) error {
	if h.guard == nil {
		return unavailable(c, "external catalog")
	}
	return c.JSON(h.guard.Snapshot())
}

// ResetResilience handles POST /api/v1/admin/resilience/reset
func (h *AdminHandler) ResetResilience(c *fiber.Ctx) error {
	if h.guard == nil {
		return unavailable(c, "external catalog")
	}
	h.guard.Reset()
	return c.JSON(h.guard.Snapshot())
}

// Sync handles POST /api/v1/admin/sync
func (h *AdminHandler) Sync(c *fiber.Ctx) error {
	if h.syncer == nil {
		return unavailable(c, "sync")
	}

	var req dto.SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "invalid request body",
				Code:  "INVALID_BODY",
			})
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	h.logger.Info("manual sync triggered", zap.Int("limit", req.Limit))
	res := h.syncer.SyncLimit(c.UserContext(), req.Limit)

	status := fiber.StatusOK
	if res.Error != nil {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(dto.FromSyncResult(res))
}

// Policies handles GET /api/v1/admin/policies
func (h *AdminHandler) Policies(c *fiber.Ctx) error {
	if h.policies == nil {
		return unavailable(c, "policy filter")
	}
	all := h.policies.Book().All()
	out := make([]dto.PolicyResponse, len(all))
	for i, p := range all {
		out[i] = dto.FromPolicy(p)
	}
	return c.JSON(fiber.Map{"policies": out})
}

// ReloadPolicies handles POST /api/v1/admin/policies/reload
func (h *AdminHandler) ReloadPolicies(c *fiber.Ctx) error {
	if h.policies == nil {
		return unavailable(c, "policy filter")
	}
	if err := h.policies.Reload(c.UserContext()); err != nil {
		h.logger.Error("policy reload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "policy reload failed",
			Code:  "RELOAD_FAILED",
		})
	}
	return c.JSON(fiber.Map{"policies": h.policies.Book().Len()})
}

// SavePolicy handles PUT /api/v1/admin/policies. The saved policy takes effect
// after an immediate reload.
func (h *AdminHandler) SavePolicy(c *fiber.Ctx) error {
	if h.writer == nil || h.policies == nil {
		return unavailable(c, "policy store")
	}

	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	p := req.ToDomain()
	if err := h.writer.Save(c.UserContext(), p); err != nil {
		h.logger.Error("saving policy failed", zap.String("company", p.Company), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "saving policy failed",
			Code:  "SAVE_FAILED",
		})
	}
	if err := h.policies.Reload(c.UserContext()); err != nil {
		h.logger.Warn("policy saved but reload failed", zap.String("company", p.Company), zap.Error(err))
	}

	h.logger.Info("company policy saved",
		zap.String("company", p.Company),
		zap.Stringer("level", p.Level),
	)
	return c.JSON(dto.FromPolicy(p))
}

// ClearCache handles DELETE /api/v1/admin/cache
func (h *AdminHandler) ClearCache(c *fiber.Ctx) error {
	if h.cache == nil {
		return unavailable(c, "result cache")
	}
	if err := h.cache.Clear(c.UserContext()); err != nil {
		h.logger.Error("clearing result cache failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "clearing cache failed",
			Code:  "CLEAR_FAILED",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
