package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/http/middleware"
	"insadmin/internal/service"
)

var (
	customerDocumentFields = slotFields{
		retained: "retainedDocuments",
		deleted:  "deletedDocuments",
		files:    "newDocuments",
		discs:    "newDocumentKinds",
	}
	customerAdditionalFields = slotFields{
		retained: "retainedAdditionalDocuments",
		deleted:  "deletedAdditionalDocuments",
		files:    "newAdditionalDocuments",
		discs:    "newAdditionalDocumentNames",
	}
)

// parseCustomerForm reads the multipart body shared by create and update.
func parseCustomerForm(c *fiber.Ctx, cfg RouterConfig, closers *closerList) (service.CustomerMutationInput, error) {
	var in service.CustomerMutationInput
	var err error

	in.CustomerType = c.FormValue("customerType")
	if in.PersonalDetails, err = rawJSONField(c, "personalDetails"); err != nil {
		return in, err
	}
	if in.CorporateDetails, err = rawJSONField(c, "corporateDetails"); err != nil {
		return in, err
	}
	if in.FamilyDetails, err = rawJSONField(c, "familyDetails"); err != nil {
		return in, err
	}

	if in.Documents, err = parseSlotMutation(c, customerDocumentFields, cfg, closers); err != nil {
		return in, err
	}
	if in.AdditionalDocuments, err = parseSlotMutation(c, customerAdditionalFields, cfg, closers); err != nil {
		return in, err
	}
	if in.ProfilePhoto, err = parseSingleMutation(c, "profilePhoto", "deleteProfilePhoto", "deletedProfilePhotoUrl", cfg, closers); err != nil {
		return in, err
	}

	if claims := middleware.ClaimsFromCtx(c); claims != nil {
		in.ActorID = claims.AdminID
	}
	return in, nil
}

// CreateCustomer registers a customer with optional initial documents.
func CreateCustomer(svc service.CustomerService, cfg RouterConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		closers := &closerList{}
		defer closers.closeAll()

		in, err := parseCustomerForm(c, cfg, closers)
		if err != nil {
			return formError(c, err)
		}
		view, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// ListCustomers returns customers matching the query filters.
func ListCustomers(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svc.List(c.UserContext(), service.ListCustomersInput{
			Limit:           limit,
			Offset:          offset,
			SortBy:          c.Query("sort_by"),
			SortOrder:       c.Query("sort_order"),
			Search:          c.Query("search"),
			CustomerType:    c.Query("customer_type"),
			IncludeInactive: c.Query("include_inactive") == "true",
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListDeletedCustomers returns soft-deleted customers only.
func ListDeletedCustomers(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svc.ListDeleted(c.UserContext(), middleware.ClaimsFromCtx(c), service.ListCustomersInput{
			Limit:        limit,
			Offset:       offset,
			SortBy:       c.Query("sort_by"),
			SortOrder:    c.Query("sort_order"),
			Search:       c.Query("search"),
			CustomerType: c.Query("customer_type"),
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// CustomerStats returns the dashboard counters.
func CustomerStats(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	}
}

// ExportCustomers streams the CSV report.
func ExportCustomers(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ExportCSV(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="customers.csv"`)
		return c.Send(out)
	}
}

// GetCustomer returns one customer with freshly signed document URLs.
func GetCustomer(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// UpdateCustomer applies field changes and document slot mutations.
func UpdateCustomer(svc service.CustomerService, cfg RouterConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		closers := &closerList{}
		defer closers.closeAll()

		in, err := parseCustomerForm(c, cfg, closers)
		if err != nil {
			return formError(c, err)
		}
		view, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// SetCustomerActive soft-deletes or restores a customer.
func SetCustomerActive(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Active bool `json:"active"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		actorID := ""
		if claims := middleware.ClaimsFromCtx(c); claims != nil {
			actorID = claims.AdminID
		}
		view, err := svc.SetActive(c.UserContext(), c.Params("id"), body.Active, actorID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// DeleteCustomerDocument removes one record from a customer document slot.
func DeleteCustomerDocument(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := ""
		if claims := middleware.ClaimsFromCtx(c); claims != nil {
			actorID = claims.AdminID
		}
		view, err := svc.DeleteDocument(c.UserContext(), c.Params("id"), c.Params("slot"), c.Params("docId"), actorID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// HardDeleteCustomer permanently removes a customer and its blobs.
func HardDeleteCustomer(svc service.CustomerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.HardDelete(c.UserContext(), middleware.ClaimsFromCtx(c), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
