package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"portal/ledger"
	"portal/models"
)

// listFeesHandler returns the fee records for an application, materializing
// the four default rows on first access.
func listFeesHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	fees, err := core.ListFeesForApplication(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fees)
}

// updateFeeHandler applies a staff partial update to a fee record.
func updateFeeHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	var req struct {
		Status         *models.FeeStatus `json:"status"`
		Amount         *decimal.Decimal  `json:"amount"`
		Currency       *string           `json:"currency"`
		AccountDetails *string           `json:"accountDetails"`
		Notes          *string           `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fee, err := core.UpdateFee(c.Request.Context(), caller, c.Param("id"), ledger.FeePatch{
		Status:         req.Status,
		Amount:         req.Amount,
		Currency:       req.Currency,
		AccountDetails: req.AccountDetails,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fee)
}
