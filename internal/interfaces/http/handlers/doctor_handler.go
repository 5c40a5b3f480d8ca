package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/application/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/middleware"
)

// DoctorHandler serves plan authoring and record review.
type DoctorHandler struct {
	plans  followup.PlanService
	logger logging.Logger
}

func NewDoctorHandler(plans followup.PlanService, logger logging.Logger) *DoctorHandler {
	return &DoctorHandler{plans: plans, logger: logger}
}

// CreatePlan handles POST /doctor/plans.
func (h *DoctorHandler) CreatePlan(c *gin.Context) {
	var in followup.CreatePlanInput
	if !bindBody(c, &in) {
		return
	}
	in.DoctorID = middleware.DoctorID(c)

	plan, err := h.plans.Create(c.Request.Context(), &in)
	if err != nil {
		fail(c, h.logger, "create plan", err)
		return
	}
	writeData(c, http.StatusCreated, plan)
}

// ListPlans handles GET /doctor/plans.
func (h *DoctorHandler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), middleware.DoctorID(c))
	if err != nil {
		fail(c, h.logger, "list plans", err)
		return
	}
	writeData(c, http.StatusOK, plans)
}

// GetPlan handles GET /doctor/plans/:id.
func (h *DoctorHandler) GetPlan(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "get plan", err)
		return
	}
	writeData(c, http.StatusOK, plan)
}

// DiscardPlan handles POST /doctor/plans/:id/discard.
func (h *DoctorHandler) DiscardPlan(c *gin.Context) {
	plan, err := h.plans.Discard(c.Request.Context(), middleware.DoctorID(c), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "discard plan", err)
		return
	}
	writeData(c, http.StatusOK, plan)
}

// Records handles GET /doctor/plans/:id/records.
func (h *DoctorHandler) Records(c *gin.Context) {
	subs, err := h.plans.Records(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "plan records", err)
		return
	}
	writeData(c, http.StatusOK, subs)
}

// PatientRecords handles GET /doctor/plans/:id/patients/:patientId/records.
func (h *DoctorHandler) PatientRecords(c *gin.Context) {
	subs, err := h.plans.PatientRecords(c.Request.Context(), c.Param("id"), c.Param("patientId"))
	if err != nil {
		fail(c, h.logger, "patient records", err)
		return
	}
	writeData(c, http.StatusOK, subs)
}
