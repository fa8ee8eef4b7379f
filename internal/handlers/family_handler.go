package handlers

import (
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/loyalty"
	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FamilyHandler struct {
	engine *loyalty.Engine
}

func NewFamilyHandler(engine *loyalty.Engine) *FamilyHandler {
	return &FamilyHandler{engine: engine}
}

// Link attaches the patient registered under memberMobile to headUserId's household.
func (h *FamilyHandler) Link(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	var req dto.LinkFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	res, err := h.engine.LinkFamilyMember(c.UserContext(), clinicID, req.HeadUserID, req.MemberMobile)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *FamilyHandler) LinkToMe(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.LinkFamilyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	res, err := h.engine.ClaimFamilyMember(c.UserContext(), clinicID, userID, req.MemberMobile)
	return respond(c, fiber.StatusOK, res, err)
}

func (h *FamilyHandler) AddMember(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	var req dto.AddFamilyMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	return h.addMember(c, clinicID, req)
}

func (h *FamilyHandler) AddMyMember(c *fiber.Ctx) error {
	clinicID, ok := tenant.GetClinicID(c)
	if !ok {
		return noClinic(c)
	}
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.AddFamilyMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.HeadUserID = userID
	return h.addMember(c, clinicID, req)
}

func (h *FamilyHandler) addMember(c *fiber.Ctx, clinicID uuid.UUID, req dto.AddFamilyMemberRequest) error {
	res, err := h.engine.AddFamilyMember(c.UserContext(), clinicID, req.HeadUserID, req.Name, req.Relation, req.Age)
	return respond(c, fiber.StatusCreated, res, err)
}
