package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/models"
)

// provisionAccountHandler creates an account with an explicit role.
// SuperStaff only; the gate enforces it.
func provisionAccountHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var req struct {
		Email    string      `json:"email" binding:"required"`
		Name     string      `json:"name" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acc, err := core.ProvisionAccount(c.Request.Context(), caller, req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": acc.ID, "email": acc.Email, "role": acc.Role})
}

func listAccountsHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	accounts, err := core.ListAccounts(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// setRoleHandler changes a target account's role. The gate rejects
// self-changes and changes to accounts already superStaff.
func setRoleHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acc, err := core.SetRole(c.Request.Context(), caller, c.Param("id"), req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": acc.ID, "email": acc.Email, "role": acc.Role})
}
