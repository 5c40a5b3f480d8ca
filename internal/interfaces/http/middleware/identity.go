package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

// Role selects which caller identity a route group requires.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Identity headers set by the upstream gateway after authentication.
const (
	PatientHeader = "X-Patient-ID"
	DoctorHeader  = "X-Doctor-ID"
)

const (
	patientKey = "followup.patient_id"
	doctorKey  = "followup.doctor_id"
)

var identityPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]{1,128}$`)

// RequireIdentity rejects requests without a well-formed identity header for
// role and stores the id on the gin context.
func RequireIdentity(role Role, logger logging.Logger) gin.HandlerFunc {
	header, key := PatientHeader, patientKey
	if role == RoleDoctor {
		header, key = DoctorHeader, doctorKey
	}

	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(header))
		if id == "" {
			AbortWithError(c, errors.Unauthorized(string(role)+" identity is required").WithDetail(header))
			return
		}
		if !identityPattern.MatchString(id) {
			logger.WithContext(c.Request.Context()).Warn("malformed identity header",
				logging.String("header", header),
				logging.String("path", c.Request.URL.Path))
			AbortWithError(c, errors.InvalidParam("malformed identity").WithDetail(header))
			return
		}
		c.Set(key, id)
		c.Next()
	}
}

// PatientID returns the authenticated patient, or "".
func PatientID(c *gin.Context) string { return c.GetString(patientKey) }

// DoctorID returns the authenticated doctor, or "".
func DoctorID(c *gin.Context) string { return c.GetString(doctorKey) }
