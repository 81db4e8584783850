package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ayushant/skillspan-hub/internal/middleware"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
	"github.com/Ayushant/skillspan-hub/internal/response"
	"github.com/Ayushant/skillspan-hub/internal/service"
	"github.com/Ayushant/skillspan-hub/internal/validator"
)

// StudentManagementHandler handles university-admin student management:
// provisioning against licenses, listing, removal, and session resets.
type StudentManagementHandler struct {
	licenseService *service.LicenseService
	authService    *service.AuthService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(licenseService *service.LicenseService, authService *service.AuthService) *StudentManagementHandler {
	return &StudentManagementHandler{licenseService: licenseService, authService: authService}
}

// adminUniversity resolves the acting admin's university. Requests without a
// bound university are rejected before any service call.
func adminUniversity(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return model.Principal{}, uuid.Nil, false
	}
	if principal.UniversityID == nil {
		response.Fail(c, http.StatusForbidden, response.ErrRoleDenied)
		return model.Principal{}, uuid.Nil, false
	}
	return principal, *principal.UniversityID, true
}

// ListStudents godoc
// GET /api/v1/admin/students
// Lists the university's students with their license usernames, paginated.
func (h *StudentManagementHandler) ListStudents(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	students, total, err := h.licenseService.ListStudents(c.Request.Context(), universityID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students},
		response.NewPagination(page, perPage, total))
}

// CreateStudent godoc
// POST /api/v1/admin/students
// Provisions a student account, consuming one license seat atomically.
func (h *StudentManagementHandler) CreateStudent(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	var req model.ProvisionStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.licenseService.ProvisionStudent(c.Request.Context(), universityID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoLicensePackage):
			response.Fail(c, http.StatusConflict, response.ErrNoLicensePackage)
		case errors.Is(err, service.ErrLicensesExhausted):
			response.Fail(c, http.StatusConflict, response.ErrLicensesExhausted)
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		case errors.Is(err, service.ErrUsernameTaken):
			response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": profile})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:id
// Removes a student account and frees its license seat.
func (h *StudentManagementHandler) DeleteStudent(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.licenseService.RemoveStudent(c.Request.Context(), universityID, studentID); err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetStudentSession godoc
// POST /api/v1/admin/students/:id/reset-session
// Clears a student's login session, allowing them onto a new device.
func (h *StudentManagementHandler) ResetStudentSession(c *gin.Context) {
	if _, _, ok := adminUniversity(c); !ok {
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetStudentSession(c.Request.Context(), studentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student session reset successfully"})
}
