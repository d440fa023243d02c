package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/reinforcer/internal/index"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/workflow"
)

// Searcher is the part of the search index the API reads.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
	ListDocuments(sourceType string, limit, offset int) ([]index.DocumentRow, int, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *workflow.Service
	search Searcher
}

// NewHandler creates a new Handler.
func NewHandler(svc *workflow.Service, search Searcher) *Handler {
	return &Handler{svc: svc, search: search}
}

// documentPath extracts the document path from the URL (everything after
// /api/documents/). Encoded slashes (articles%2F0001-x.md) are accepted.
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Analyze handles POST /api/analyze.
//
//	@Summary		Suggest summary, keywords, tags and purpose without staging
//	@Tags			workflow
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubmitRequest	true	"URL or text"
//	@Success		200		{object}	workflow.Suggestion
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analyze [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	sug, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, "analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

// Submit handles POST /api/staged.
//
//	@Summary		Process content and stage it for review
//	@Tags			workflow
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubmitRequest	true	"URL or text with optional title, tags, purpose"
//	@Success		201		{object}	StagedResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/staged [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	staged, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeError(w, "submit", err)
		return
	}
	writeJSON(w, http.StatusCreated, staged)
}

// Review handles GET /api/staged/{id}.
//
//	@Summary		Get a staged document
//	@Tags			workflow
//	@Produce		json
//	@Param			id	path		string	true	"Staging id"
//	@Success		200	{object}	StagedDocument
//	@Failure		404	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/staged/{id} [get]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.svc.Review(r.Context(), id)
	if err != nil {
		writeError(w, opReview, err)
		return
	}
	writeJSON(w, http.StatusOK, StagedDocument{TempID: id, Document: doc})
}

// Edit handles PUT /api/staged/{id}.
//
//	@Summary		Change title, tags or purpose of a staged document
//	@Tags			workflow
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Staging id"
//	@Param			body	body		EditRequest	true	"Edits"
//	@Success		200		{object}	StagedDocument
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/staged/{id} [put]
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	doc, err := h.svc.Edit(r.Context(), id, req)
	if err != nil {
		writeError(w, opEdit, err)
		return
	}
	writeJSON(w, http.StatusOK, StagedDocument{TempID: id, Document: doc})
}

// Commit handles POST /api/staged/{id}/commit.
//
//	@Summary		Commit a staged document into the knowledge base
//	@Tags			workflow
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Staging id"
//	@Param			body	body		EditRequest	false	"Final edits"
//	@Success		201		{object}	models.Entry
//	@Failure		404		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/staged/{id}/commit [post]
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	entry, err := h.svc.Commit(r.Context(), id, req)
	if err != nil {
		writeError(w, opCommit, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Discard handles DELETE /api/staged/{id}.
//
//	@Summary		Discard a staged document
//	@Tags			workflow
//	@Param			id	path	string	true	"Staging id"
//	@Success		204	"Discarded"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/staged/{id} [delete]
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "discard", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List committed entries from the knowledge index
//	@Tags			knowledge
//	@Produce		json
//	@Param			order	query		string	false	"Entry order"	Enums(oldest, newest)
//	@Success		200		{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Entries(r.URL.Query().Get("order") == "newest")
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries, Total: len(entries)})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a committed document by path
//	@Tags			knowledge
//	@Produce		json
//	@Param			path	path		string	true	"Document path, e.g. articles/0001-title.md"
//	@Success		200		{object}	models.Document
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.Document(path)
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Path string `json:"path"`
		*models.Document
	}{Path: path, Document: doc})
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents with optional filtering
//	@Tags			knowledge
//	@Produce		json
//	@Param			source_type	query		string	false	"Filter by source type"	Enums(web-article, youtube-video, direct-text)
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	DocumentListResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index disabled"))
		return
	}
	q := r.URL.Query()
	st := q.Get("source_type")
	if st != "" && !models.SourceType(st).Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown source_type"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	docs, total, err := h.search.ListDocuments(st, limit, offset)
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: total})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across committed documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index disabled"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.search.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
