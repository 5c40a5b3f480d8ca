package followup

// ResolveAnchor picks the date post-operative checkpoints are counted from.
//
// Precedence: the binding's surgery date, then its discharge date, then the
// earliest basic_surgery_date answered in the patient's submissions to the same
// plan. Unparseable values are skipped. It returns nil when nothing resolves.
func ResolveAnchor(b *Binding, past []*Submission) *Date {
	if b == nil {
		return nil
	}
	if d := ParseCalendarDatePtr(b.SurgeryDate); d != nil {
		return d
	}
	if d := ParseCalendarDatePtr(b.DischargeDate); d != nil {
		return d
	}

	var earliest *Date
	for _, s := range past {
		if s == nil || s.PlanID != b.PlanID || s.PatientID != b.PatientID {
			continue
		}
		d := ParseCalendarDatePtr(s.SurgeryDateAnswer())
		if d == nil {
			continue
		}
		// Repeat fills may disagree; the earliest date wins.
		if earliest == nil || d.Before(*earliest) {
			earliest = d
		}
	}
	return earliest
}
