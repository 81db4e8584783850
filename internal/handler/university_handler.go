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

// UniversityHandler handles the super-admin university and licensing surface.
type UniversityHandler struct {
	universityService *service.UniversityService
	licenseService    *service.LicenseService
}

// NewUniversityHandler creates a new UniversityHandler.
func NewUniversityHandler(universityService *service.UniversityService, licenseService *service.LicenseService) *UniversityHandler {
	return &UniversityHandler{universityService: universityService, licenseService: licenseService}
}

// ListUniversities godoc
// GET /api/v1/super/universities
func (h *UniversityHandler) ListUniversities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	universities, total, err := h.universityService.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"universities": universities},
		response.NewPagination(page, perPage, total))
}

// GetUniversity godoc
// GET /api/v1/super/universities/:id
func (h *UniversityHandler) GetUniversity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	university, err := h.universityService.Get(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"university": university})
}

// CreateUniversity godoc
// POST /api/v1/super/universities
// Provisions a university with its admin account and first license package
// in one transaction.
func (h *UniversityHandler) CreateUniversity(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateUniversityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	university, err := h.universityService.Create(c.Request.Context(), principal.ID, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"university": university})
}

// UpdateUniversity godoc
// PUT /api/v1/super/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUniversityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	university, err := h.universityService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"university": university})
}

// DeleteUniversity godoc
// DELETE /api/v1/super/universities/:id
// Removes the university and everything under it.
func (h *UniversityHandler) DeleteUniversity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.universityService.Delete(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ListLicensePackages godoc
// GET /api/v1/super/universities/:id/licenses
func (h *UniversityHandler) ListLicensePackages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	packages, err := h.licenseService.ListPackages(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"packages": packages})
}

// IssueLicensePackage godoc
// POST /api/v1/super/universities/:id/licenses
// Grants the university a further block of seats.
func (h *UniversityHandler) IssueLicensePackage(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// The university must exist before seats are issued against it.
	if _, err := h.universityService.Get(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var req model.IssueLicensePackageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pkg, err := h.licenseService.IssuePackage(c.Request.Context(), id, principal.ID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"package": pkg})
}
