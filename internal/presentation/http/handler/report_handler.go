package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/cashledger-api/internal/application/service"
	"github.com/sangkips/cashledger-api/internal/domain/enum"
	"github.com/sangkips/cashledger-api/internal/domain/repository"
	"github.com/sangkips/cashledger-api/internal/presentation/http/dto/response"
	"github.com/sangkips/cashledger-api/pkg/pagination"
)

// ReportHandler handles collection read and reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Get handles retrieving a single collection with its expenses,
// denominations and linked sales
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid collection ID")
		return
	}

	collection, err := h.reportService.GetCollection(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash collection retrieved successfully", collection)
}

// List handles listing collections with agent, status and date filters
func (h *ReportHandler) List(c *gin.Context) {
	input := &service.ListCollectionsInput{
		Pagination: paginationFromQuery(c),
	}

	if agentIDStr := c.Query("agent_id"); agentIDStr != "" {
		agentID, err := uuid.Parse(agentIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid agent ID")
			return
		}
		input.AgentID = &agentID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := parseStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		input.StartDate = &startDate
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		input.EndDate = &endDate
	}

	result, err := h.reportService.ListCollections(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Cash collections retrieved successfully", result)
}

// Pending handles listing submitted collections awaiting approval
func (h *ReportHandler) Pending(c *gin.Context) {
	result, err := h.reportService.ListPendingApprovals(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Pending approvals retrieved successfully", result)
}

// Summary handles the reconciliation rollup over matching collections
func (h *ReportHandler) Summary(c *gin.Context) {
	params := &repository.SummaryFilterParams{}

	if agentIDStr := c.Query("agent_id"); agentIDStr != "" {
		agentID, err := uuid.Parse(agentIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid agent ID")
			return
		}
		params.AgentID = &agentID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, ok := parseStatus(statusStr)
		if !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		params.StartDate = &startDate
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			response.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		params.EndDate = &endDate
	}

	summary, err := h.reportService.Summarize(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Collection summary retrieved successfully", summary)
}

func paginationFromQuery(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

// parseStatus accepts either the numeric value or the display name
func parseStatus(s string) (enum.CollectionStatus, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		status := enum.CollectionStatus(n)
		return status, status.IsValid()
	}
	switch s {
	case "Open", "open":
		return enum.CollectionStatusOpen, true
	case "Submitted", "submitted":
		return enum.CollectionStatusSubmitted, true
	case "Approved", "approved":
		return enum.CollectionStatusApproved, true
	}
	return 0, false
}
