package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/ledger"
)

// maxUploadBytes caps a single uploaded file (documents and receipts).
const maxUploadBytes = 5 * 1024 * 1024

// readUploadedFile pulls the multipart "file" field into memory, enforcing
// the size cap before any blob call happens.
func readUploadedFile(c *gin.Context) (ledger.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return ledger.File{}, false
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return ledger.File{}, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return ledger.File{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil || int64(len(data)) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file unreadable"})
		return ledger.File{}, false
	}
	return ledger.File{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, true
}

// uploadReceiptHandler attaches a proof-of-payment file to a fee record the
// caller owns; the first upload moves a notUpdated fee to pending.
func uploadReceiptHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	file, ok := readUploadedFile(c)
	if !ok {
		return
	}
	receipt, err := core.UploadReceipt(c.Request.Context(), caller, c.Param("id"), file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func listReceiptsHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	receipts, err := core.ListReceipts(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipts)
}
