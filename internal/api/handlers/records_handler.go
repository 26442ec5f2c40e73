package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/andresuchdata/bizdir-ops/internal/service"
)

type RecordsHandler struct {
	recordsService *service.RecordsService
}

func NewRecordsHandler(recordsService *service.RecordsService) *RecordsHandler {
	return &RecordsHandler{recordsService: recordsService}
}

// GetRecord returns one document by ID.
func (h *RecordsHandler) GetRecord(c *gin.Context) {
	doc, err := h.recordsService.Get(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// FindRecords returns documents whose field equals value. Values are matched
// as strings.
func (h *RecordsHandler) FindRecords(c *gin.Context) {
	field := c.Query("field")
	value, ok := c.GetQuery("value")
	if field == "" || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field and value query parameters are required"})
		return
	}

	docs, err := h.recordsService.Lookup(c.Request.Context(), c.Param("collection"), field, value)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if docs == nil {
		docs = []*records.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"records": docs, "count": len(docs)})
}
