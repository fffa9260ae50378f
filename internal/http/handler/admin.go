package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/http/middleware"
	"insadmin/internal/model"
	"insadmin/internal/service"
)

// CreateAdmin provisions a new admin account.
func CreateAdmin(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		admin, err := svc.Create(c.UserContext(), middleware.ClaimsFromCtx(c), service.CreateAdminInput{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Role:     model.Role(body.Role),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(admin)
	}
}

// ListAdmins returns a paginated list of admin accounts.
func ListAdmins(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svc.List(c.UserContext(), middleware.ClaimsFromCtx(c), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetAdmin returns one admin account by id.
func GetAdmin(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := svc.Get(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(admin)
	}
}

// SetAdminActive enables or disables an admin account.
func SetAdminActive(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Active bool `json:"active"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		admin, err := svc.SetActive(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id"), body.Active)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(admin)
	}
}

// UpdateAdmin changes the profile fields of a regular admin account.
func UpdateAdmin(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name  *string `json:"name"`
			Email *string `json:"email"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		admin, err := svc.Update(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id"), service.UpdateAdminInput{
			Name:  body.Name,
			Email: body.Email,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(admin)
	}
}

// ResetAdminPassword replaces the password of a regular admin account.
func ResetAdminPassword(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			NewPassword string `json:"new_password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		if err := svc.ResetPassword(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id"), body.NewPassword); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "password reset"})
	}
}

// DeleteAdmin permanently removes a regular admin account.
func DeleteAdmin(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AdminStats returns the dashboard counters for admin accounts.
func AdminStats(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext(), middleware.ClaimsFromCtx(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	}
}
