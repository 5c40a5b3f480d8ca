package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/application/followup"
	domainFollowup "github.com/turtacn/followup-compliance/internal/domain/followup"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/interfaces/http/middleware"
)

// PatientHandler serves the patient-facing routes. Every route runs behind
// the patient identity middleware.
type PatientHandler struct {
	compliance  followup.ComplianceService
	bindings    followup.BindingService
	submissions followup.SubmissionService
	plans       followup.PlanService
	logger      logging.Logger
}

func NewPatientHandler(
	compliance followup.ComplianceService,
	bindings followup.BindingService,
	submissions followup.SubmissionService,
	plans followup.PlanService,
	logger logging.Logger,
) *PatientHandler {
	return &PatientHandler{
		compliance:  compliance,
		bindings:    bindings,
		submissions: submissions,
		plans:       plans,
		logger:      logger,
	}
}

// PlanView is the questionnaire page payload.
type PlanView struct {
	Plan    *domainFollowup.Plan    `json:"plan"`
	Binding *domainFollowup.Binding `json:"binding"`
}

// Compliance handles GET /patient/commitments.
func (h *PatientHandler) Compliance(c *gin.Context) {
	items, err := h.compliance.List(c.Request.Context(), middleware.PatientID(c))
	if err != nil {
		fail(c, h.logger, "compliance list", err)
		return
	}
	writeData(c, http.StatusOK, items)
}

// Bind handles POST /patient/commitments. A new binding answers 201, a
// re-bind of the same plan 200.
func (h *PatientHandler) Bind(c *gin.Context) {
	var in followup.BindInput
	if !bindBody(c, &in) {
		return
	}
	in.PatientID = middleware.PatientID(c)

	res, err := h.bindings.Bind(c.Request.Context(), &in)
	if err != nil {
		fail(c, h.logger, "bind", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeData(c, status, res)
}

// ListBindings handles GET /patient/commitments/all.
func (h *PatientHandler) ListBindings(c *gin.Context) {
	list, err := h.bindings.ListAll(c.Request.Context(), middleware.PatientID(c))
	if err != nil {
		fail(c, h.logger, "list bindings", err)
		return
	}
	writeData(c, http.StatusOK, list)
}

// BindingInfo handles GET /patient/commitments/:id. The data is null when
// the plan exists but was never bound.
func (h *PatientHandler) BindingInfo(c *gin.Context) {
	b, err := h.bindings.Info(c.Request.Context(), middleware.PatientID(c), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "binding info", err)
		return
	}
	writeData(c, http.StatusOK, b)
}

// UpdateBinding handles PUT /patient/commitments/:id.
func (h *PatientHandler) UpdateBinding(c *gin.Context) {
	var sup domainFollowup.Supplement
	if !bindBody(c, &sup) {
		return
	}
	b, err := h.bindings.Update(c.Request.Context(), middleware.PatientID(c), c.Param("id"), sup)
	if err != nil {
		fail(c, h.logger, "update binding", err)
		return
	}
	writeData(c, http.StatusOK, b)
}

// SetCurrent handles PUT /patient/commitments/:id/current.
func (h *PatientHandler) SetCurrent(c *gin.Context) {
	b, err := h.bindings.SetCurrent(c.Request.Context(), middleware.PatientID(c), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "set current", err)
		return
	}
	writeData(c, http.StatusOK, b)
}

// UnsetCurrent handles DELETE /patient/commitments/:id/current.
func (h *PatientHandler) UnsetCurrent(c *gin.Context) {
	b, err := h.bindings.UnsetCurrent(c.Request.Context(), middleware.PatientID(c), c.Param("id"))
	if err != nil {
		fail(c, h.logger, "unset current", err)
		return
	}
	writeData(c, http.StatusOK, b)
}

// History handles GET /patient/followups.
func (h *PatientHandler) History(c *gin.Context) {
	rows, err := h.submissions.History(c.Request.Context(), middleware.PatientID(c))
	if err != nil {
		fail(c, h.logger, "history", err)
		return
	}
	writeData(c, http.StatusOK, rows)
}

// PlanView handles GET /followups/plans/:id.
func (h *PatientHandler) PlanView(c *gin.Context) {
	ctx := c.Request.Context()
	plan, err := h.plans.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, h.logger, "plan view", err)
		return
	}
	b, err := h.bindings.Info(ctx, middleware.PatientID(c), plan.ID)
	if err != nil {
		fail(c, h.logger, "plan view", err)
		return
	}
	writeData(c, http.StatusOK, PlanView{Plan: plan, Binding: b})
}

// Submit handles POST /followups/records.
func (h *PatientHandler) Submit(c *gin.Context) {
	var in followup.SubmitInput
	if !bindBody(c, &in) {
		return
	}
	in.PatientID = middleware.PatientID(c)

	sub, err := h.submissions.Submit(c.Request.Context(), &in)
	if err != nil {
		fail(c, h.logger, "submit", err)
		return
	}
	writeData(c, http.StatusCreated, sub)
}
