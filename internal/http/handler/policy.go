package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/http/middleware"
	"insadmin/internal/model"
	"insadmin/internal/service"
)

var policyDocumentFields = slotFields{
	retained: "retainedDocuments",
	deleted:  "deletedDocuments",
	files:    "newDocuments",
	discs:    "newDocumentNames",
}

// parsePolicyForm reads the multipart body shared by create and update.
func parsePolicyForm(c *fiber.Ctx, cfg RouterConfig, closers *closerList) (service.PolicyMutationInput, error) {
	var in service.PolicyMutationInput
	var err error

	in.PolicyNumber = c.FormValue("policyNumber")
	in.CustomerID = c.FormValue("customerId")
	if in.ClientDetails, err = rawJSONField(c, "clientDetails"); err != nil {
		return in, err
	}
	if in.InsuranceDetails, err = rawJSONField(c, "insuranceDetails"); err != nil {
		return in, err
	}
	if in.CommissionDetails, err = rawJSONField(c, "commissionDetails"); err != nil {
		return in, err
	}
	if in.ExtraDetails, err = rawJSONField(c, "extraDetails"); err != nil {
		return in, err
	}
	if in.Notes, err = rawJSONField(c, "notes"); err != nil {
		return in, err
	}

	if in.Documents, err = parseSlotMutation(c, policyDocumentFields, cfg, closers); err != nil {
		return in, err
	}
	if in.PolicyFile, err = parseSingleMutation(c, "policyFile", "deletePolicyFile", "deletedPolicyFileUrl", cfg, closers); err != nil {
		return in, err
	}

	if claims := middleware.ClaimsFromCtx(c); claims != nil {
		in.ActorID = claims.AdminID
	}
	return in, nil
}

func policyKind(c *fiber.Ctx) (model.PolicyKind, error) {
	kind := c.Params("kind")
	if !model.ValidPolicyKind(kind) {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "unknown policy kind")
	}
	return model.PolicyKind(kind), nil
}

// CreatePolicy registers a policy of the given kind.
func CreatePolicy(svc service.PolicyService, cfg RouterConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		closers := &closerList{}
		defer closers.closeAll()

		in, err := parsePolicyForm(c, cfg, closers)
		if err != nil {
			return formError(c, err)
		}
		view, err := svc.Create(c.UserContext(), kind, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// ListPolicies returns policies of one kind matching the query filters.
func ListPolicies(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svc.List(c.UserContext(), kind, service.ListPoliciesInput{
			Limit:           limit,
			Offset:          offset,
			SortBy:          c.Query("sort_by"),
			SortOrder:       c.Query("sort_order"),
			Search:          c.Query("search"),
			Company:         c.Query("company"),
			PolicyType:      c.Query("policy_type"),
			IncludeInactive: c.Query("include_inactive") == "true",
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// PolicyStats returns the counters for one policy line.
func PolicyStats(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		stats, err := svc.Stats(c.UserContext(), kind)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(stats)
	}
}

// GetPolicy returns one policy with freshly signed document URLs.
func GetPolicy(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		view, err := svc.Get(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// UpdatePolicy applies field changes and document slot mutations.
func UpdatePolicy(svc service.PolicyService, cfg RouterConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		closers := &closerList{}
		defer closers.closeAll()

		in, err := parsePolicyForm(c, cfg, closers)
		if err != nil {
			return formError(c, err)
		}
		view, err := svc.Update(c.UserContext(), kind, c.Params("id"), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// SetPolicyActive soft-deletes or restores a policy.
func SetPolicyActive(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
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
		view, err := svc.SetActive(c.UserContext(), kind, c.Params("id"), body.Active, actorID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// DeletePolicyDocument removes one record from the policy documents slot.
func DeletePolicyDocument(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		actorID := ""
		if claims := middleware.ClaimsFromCtx(c); claims != nil {
			actorID = claims.AdminID
		}
		view, err := svc.DeleteDocument(c.UserContext(), kind, c.Params("id"), c.Params("docId"), actorID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(view)
	}
}

// HardDeletePolicy permanently removes a policy and its blobs.
func HardDeletePolicy(svc service.PolicyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := policyKind(c)
		if err != nil {
			return err
		}
		if err := svc.HardDelete(c.UserContext(), middleware.ClaimsFromCtx(c), kind, c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
