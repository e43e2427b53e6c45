package handlers

import (
	"errors"
	"net/http"
	"time"

	"restochain-backend/docstore"
	"restochain-backend/dtos"
	"restochain-backend/models"
	"restochain-backend/utils"

	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	Store docstore.Store
}

func (h *EmployeeHandler) branchEmployees(c *gin.Context, branchID string) ([]models.Employee, bool) {
	var list []models.Employee
	var err error
	if branchID == "" {
		err = h.Store.List(c.Request.Context(), docstore.Employees, &list)
	} else {
		err = h.Store.Where(c.Request.Context(), docstore.Employees, "branchId", branchID, &list)
	}
	if err != nil {
		storeFailure(c, "Failed to fetch employees", err)
		return nil, false
	}
	newestFirst(list, func(e models.Employee) time.Time { return e.CreatedAt })
	return list, true
}

// loadOwnEmployee fetches an employee of the given branch. Employees of other
// branches are reported as missing.
func (h *EmployeeHandler) loadOwnEmployee(c *gin.Context, branchID, id string) (models.Employee, bool) {
	var emp models.Employee
	err := h.Store.Get(c.Request.Context(), docstore.Doc(docstore.Employees, id), &emp)
	if err == nil && emp.BranchID != branchID {
		err = docstore.ErrNotFound
	}
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return emp, false
	}
	if err != nil {
		storeFailure(c, "Failed to fetch employee", err)
		return emp, false
	}
	return emp, true
}

// GetAllEmployees is the admin's read-only view, optionally for one branch.
func (h *EmployeeHandler) GetAllEmployees(c *gin.Context) {
	list, ok := h.branchEmployees(c, c.Query("branchId"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EmployeeHandler) GetMyEmployees(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	list, ok := h.branchEmployees(c, s.BranchID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	now := time.Now().UTC()
	emp := models.Employee{
		BranchID:  s.BranchID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Status:    req.Status,
		HiredDate: req.HiredDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if emp.Status == "" {
		emp.Status = models.EmployeeActive
	}

	id, err := h.Store.Create(c.Request.Context(), docstore.Employees, &emp)
	if err != nil {
		storeFailure(c, "Failed to create employee", err)
		return
	}
	emp.ID = id
	c.JSON(http.StatusCreated, emp)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var req dtos.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	id := c.Param("id")
	emp, ok := h.loadOwnEmployee(c, s.BranchID, id)
	if !ok {
		return
	}

	emp.Name = req.Name
	emp.Email = req.Email
	emp.Phone = req.Phone
	emp.Role = req.Role
	if req.Status != "" {
		emp.Status = req.Status
	}
	emp.HiredDate = req.HiredDate
	emp.UpdatedAt = time.Now().UTC()

	if err := h.Store.Set(c.Request.Context(), docstore.Doc(docstore.Employees, id), &emp); err != nil {
		storeFailure(c, "Failed to update employee", err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := h.loadOwnEmployee(c, s.BranchID, id); !ok {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), docstore.Doc(docstore.Employees, id)); err != nil {
		storeFailure(c, "Failed to delete employee", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}
