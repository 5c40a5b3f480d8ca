package client

import (
	"context"
	"net/http"
	"net/url"
)

// PatientClient calls the patient endpoints as one patient.
type PatientClient struct {
	c  *Client
	id string
}

func (p *PatientClient) who() identity { return identity{PatientHeader, p.id} }

// Compliance returns the reduced schedule of the current plan.
func (p *PatientClient) Compliance(ctx context.Context) ([]ScheduleItem, error) {
	var out []ScheduleItem
	err := p.c.do(ctx, p.who(), http.MethodGet, "/patient/commitments", nil, &out)
	return out, err
}

// Bind commits the patient to a plan. Re-binding merges the non-empty fields.
func (p *PatientClient) Bind(ctx context.Context, req BindRequest) (*BindResult, error) {
	var out BindResult
	if err := p.c.do(ctx, p.who(), http.MethodPost, "/patient/commitments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PatientClient) Bindings(ctx context.Context) ([]BindingSummary, error) {
	var out []BindingSummary
	err := p.c.do(ctx, p.who(), http.MethodGet, "/patient/commitments/all", nil, &out)
	return out, err
}

// Binding looks id up as a binding id, then as a plan id. It returns nil
// without error for a plan the patient never bound.
func (p *PatientClient) Binding(ctx context.Context, id string) (*Binding, error) {
	var out *Binding
	if err := p.c.do(ctx, p.who(), http.MethodGet, "/patient/commitments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PatientClient) UpdateBinding(ctx context.Context, bindingID string, sup Supplement) (*Binding, error) {
	var out Binding
	if err := p.c.do(ctx, p.who(), http.MethodPut, "/patient/commitments/"+url.PathEscape(bindingID), sup, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PatientClient) SetCurrent(ctx context.Context, bindingID string) (*Binding, error) {
	return p.switchCurrent(ctx, http.MethodPut, bindingID)
}

func (p *PatientClient) UnsetCurrent(ctx context.Context, bindingID string) (*Binding, error) {
	return p.switchCurrent(ctx, http.MethodDelete, bindingID)
}

func (p *PatientClient) switchCurrent(ctx context.Context, method, bindingID string) (*Binding, error) {
	var out Binding
	if err := p.c.do(ctx, p.who(), method, "/patient/commitments/"+url.PathEscape(bindingID)+"/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists the patient's fills across plans, newest first.
func (p *PatientClient) History(ctx context.Context) ([]RecordSummary, error) {
	var out []RecordSummary
	err := p.c.do(ctx, p.who(), http.MethodGet, "/patient/followups", nil, &out)
	return out, err
}

func (p *PatientClient) Plan(ctx context.Context, planID string) (*PlanView, error) {
	var out PlanView
	if err := p.c.do(ctx, p.who(), http.MethodGet, "/followups/plans/"+url.PathEscape(planID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit records a questionnaire fill. It is never retried; a duplicate
// surfaces as an APIError with IsConflict.
func (p *PatientClient) Submit(ctx context.Context, req SubmitRequest) (*Submission, error) {
	var out Submission
	if err := p.c.do(ctx, p.who(), http.MethodPost, "/followups/records", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DoctorClient calls the plan authoring endpoints as one doctor.
type DoctorClient struct {
	c  *Client
	id string
}

func (d *DoctorClient) who() identity { return identity{DoctorHeader, d.id} }

func (d *DoctorClient) CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	var out Plan
	if err := d.c.do(ctx, d.who(), http.MethodPost, "/doctor/plans", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DoctorClient) ListPlans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	err := d.c.do(ctx, d.who(), http.MethodGet, "/doctor/plans", nil, &out)
	return out, err
}

func (d *DoctorClient) GetPlan(ctx context.Context, planID string) (*Plan, error) {
	var out Plan
	if err := d.c.do(ctx, d.who(), http.MethodGet, "/doctor/plans/"+url.PathEscape(planID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiscardPlan soft-deletes a plan the doctor created.
func (d *DoctorClient) DiscardPlan(ctx context.Context, planID string) (*Plan, error) {
	var out Plan
	if err := d.c.do(ctx, d.who(), http.MethodPost, "/doctor/plans/"+url.PathEscape(planID)+"/discard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *DoctorClient) Records(ctx context.Context, planID string) ([]Submission, error) {
	var out []Submission
	err := d.c.do(ctx, d.who(), http.MethodGet, "/doctor/plans/"+url.PathEscape(planID)+"/records", nil, &out)
	return out, err
}

func (d *DoctorClient) PatientRecords(ctx context.Context, planID, patientID string) ([]Submission, error) {
	var out []Submission
	path := "/doctor/plans/" + url.PathEscape(planID) + "/patients/" + url.PathEscape(patientID) + "/records"
	err := d.c.do(ctx, d.who(), http.MethodGet, path, nil, &out)
	return out, err
}
