package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/auth"
	"insadmin/internal/http/middleware"
	"insadmin/internal/service"
)

// RouterConfig carries the dependencies of the HTTP layer.
type RouterConfig struct {
	DB        *sql.DB
	Tokens    *auth.Tokens
	Auth      service.AuthService
	Admins    service.AdminService
	Customers service.CustomerService
	Policies  service.PolicyService

	// MaxFileSize bounds a single uploaded file; MaxFilesPerRequest bounds
	// the file count of one multipart request.
	MaxFileSize        int64
	MaxFilesPerRequest int
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate transport to service calls and stay free of business
// logic.
func RegisterRoutes(app *fiber.App, cfg RouterConfig) {
	// Health checks DB connectivity only; object storage degrades gracefully
	// and is not a liveness dependency.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := cfg.DB.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api")

	api.Post("/auth/login", Login(cfg.Auth))

	authed := api.Group("", middleware.Auth(cfg.Tokens))
	authed.Post("/auth/change-password", ChangePassword(cfg.Auth))

	admins := authed.Group("/admins", middleware.RequireSuperAdmin())
	admins.Post("/", CreateAdmin(cfg.Admins))
	admins.Get("/", ListAdmins(cfg.Admins))
	admins.Get("/stats", AdminStats(cfg.Admins))
	admins.Get("/:id", GetAdmin(cfg.Admins))
	admins.Put("/:id", UpdateAdmin(cfg.Admins))
	admins.Patch("/:id/active", SetAdminActive(cfg.Admins))
	admins.Post("/:id/reset-password", ResetAdminPassword(cfg.Admins))
	admins.Delete("/:id", DeleteAdmin(cfg.Admins))

	customers := authed.Group("/customers")
	customers.Post("/", CreateCustomer(cfg.Customers, cfg))
	customers.Get("/", ListCustomers(cfg.Customers))
	customers.Get("/stats", CustomerStats(cfg.Customers))
	customers.Get("/export", ExportCustomers(cfg.Customers))
	customers.Get("/deleted", middleware.RequireSuperAdmin(), ListDeletedCustomers(cfg.Customers))
	customers.Get("/:id", GetCustomer(cfg.Customers))
	customers.Put("/:id", UpdateCustomer(cfg.Customers, cfg))
	customers.Patch("/:id/active", SetCustomerActive(cfg.Customers))
	customers.Delete("/:id/documents/:slot/:docId", DeleteCustomerDocument(cfg.Customers))
	customers.Delete("/:id", middleware.RequireSuperAdmin(), HardDeleteCustomer(cfg.Customers))

	policies := authed.Group("/policies/:kind")
	policies.Post("/", CreatePolicy(cfg.Policies, cfg))
	policies.Get("/", ListPolicies(cfg.Policies))
	policies.Get("/stats", PolicyStats(cfg.Policies))
	policies.Get("/:id", GetPolicy(cfg.Policies))
	policies.Put("/:id", UpdatePolicy(cfg.Policies, cfg))
	policies.Patch("/:id/active", SetPolicyActive(cfg.Policies))
	policies.Delete("/:id/documents/:docId", DeletePolicyDocument(cfg.Policies))
	policies.Delete("/:id", middleware.RequireSuperAdmin(), HardDeletePolicy(cfg.Policies))
}

// serviceError maps service sentinel errors onto the standard error envelope.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, service.ErrAccountDisabled):
		return writeError(c, fiber.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient privileges")
	case errors.Is(err, service.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "email is already registered")
	case errors.Is(err, service.ErrMustBeInactive):
		return writeError(c, fiber.StatusBadRequest, "MUST_BE_INACTIVE", "entity must be deactivated before permanent deletion")
	case errors.Is(err, service.ErrInUse):
		return writeError(c, fiber.StatusConflict, "RESOURCE_IN_USE", "entity is referenced by other records")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
