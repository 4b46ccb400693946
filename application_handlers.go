package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/models"
)

// submitApplicationHandler creates a pending application from the posted
// form. The ledger provisions an applicant account for an identity it has
// never seen, so this also serves first-time submitters.
func submitApplicationHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var form models.ApplicationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	emailVal, _ := c.Get("email")
	email, _ := emailVal.(string)
	if email == "" {
		email = form.Email
	}
	app, err := core.Submit(c.Request.Context(), caller, email, form)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// listApplicationsHandler returns the caller's own applications; staff see
// all of them ordered by creation time.
func listApplicationsHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var (
		apps []models.Application
		err  error
	)
	if caller.Role == models.RoleStaff || caller.Role == models.RoleSuperStaff {
		apps, err = core.ListAll(c.Request.Context(), caller)
	} else {
		apps, err = core.ListByOwner(c.Request.Context(), caller, caller.ID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func getApplicationHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	app, err := core.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// updateApplicationFormHandler is the owner's edit path, open only while
// the application is still pending.
func updateApplicationFormHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var form models.ApplicationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := core.UpdateForm(c.Request.Context(), caller, c.Param("id"), form)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func updateApplicationStatusHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var req struct {
		Status models.ApplicationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	app, err := core.UpdateStatus(c.Request.Context(), caller, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func deleteApplicationHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	if err := core.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}

func exportApplicationHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	bundle, err := core.Export(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}
