package api

import (
	"github.com/starford/reinforcer/internal/index"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/workflow"
)

// SubmitRequest is the request body for analysis and staging.
type SubmitRequest = workflow.Submission

// EditRequest carries reviewer edits. Omitted fields keep the staged value.
type EditRequest = models.Edits

// StagedResponse is returned when content is staged.
type StagedResponse = workflow.Staged

// StagedDocument is a staged document under review.
type StagedDocument struct {
	TempID   string           `json:"temp_id" example:"1f0c6c1e-4a53-4c8e-9a53-2b1b6c1f0e11" validate:"required"`
	Document *models.Document `json:"document" validate:"required"`
}

// EntryListResponse wraps the knowledge index.
type EntryListResponse struct {
	Entries []models.Entry `json:"entries" validate:"required"`
	Total   int            `json:"total" example:"42" validate:"required"`
}

// DocumentListResponse wraps a page of indexed documents.
type DocumentListResponse struct {
	Documents []index.DocumentRow `json:"documents" validate:"required"`
	Total     int                 `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
