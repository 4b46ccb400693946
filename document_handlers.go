package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// uploadDocumentHandler attaches a supporting file to an application the
// caller owns.
func uploadDocumentHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	file, ok := readUploadedFile(c)
	if !ok {
		return
	}
	doc, err := core.UploadDocument(c.Request.Context(), caller, c.Param("id"), file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func listDocumentsHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	docs, err := core.ListDocuments(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// downloadDocumentHandler streams the stored bytes back to an authorized
// caller.
func downloadDocumentHandler(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}
	doc, data, err := core.DownloadDocument(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.Data(http.StatusOK, doc.MimeType, data)
}
