// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the knowledge base workflow for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/reinforcer/internal/index"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/parser"
	"github.com/starford/reinforcer/internal/workflow"
)

const formatURI = "reinforcer://document-format"

// Server wraps the MCP server with knowledge base tools.
type Server struct {
	mcp *server.MCPServer
	svc *workflow.Service
	db  *index.DB
}

// New creates a new MCP server with all tools registered. db may be nil, in
// which case search_documents reports an error.
func New(svc *workflow.Service, db *index.DB, version string) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Reinforcer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	contentArgs := []mcp.ToolOption{
		mcp.WithString("url", mcp.Description("Web page or YouTube URL to fetch. Mutually exclusive with text.")),
		mcp.WithString("text", mcp.Description("Direct text content. Mutually exclusive with url.")),
		mcp.WithString("title", mcp.Description("Optional title; defaults to the fetched page title")),
	}
	editArgs := []mcp.ToolOption{
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithArray("tags", mcp.Description("Replacement tag list"), mcp.WithStringItems()),
		mcp.WithString("purpose", mcp.Description("Why this content is worth keeping")),
	}

	s.mcp.AddTool(mcp.NewTool("analyze_content", append([]mcp.ToolOption{
		mcp.WithDescription("Suggest a summary, keywords, tags and purpose for content without staging it."),
	}, contentArgs...)...), s.analyzeContent)

	s.mcp.AddTool(mcp.NewTool("stage_content", append([]mcp.ToolOption{
		mcp.WithDescription("Process content into a document and stage it for review. "+
			"Returns a temp_id used by review_staged, edit_staged, commit_staged and discard_staged."),
		mcp.WithArray("tags", mcp.Description("User tags"), mcp.WithStringItems()),
		mcp.WithString("purpose", mcp.Description("Why this content is worth keeping")),
	}, contentArgs...)...), s.stageContent)

	s.mcp.AddTool(mcp.NewTool("review_staged",
		mcp.WithDescription("Read a staged document as Markdown with front matter."),
		mcp.WithString("temp_id", mcp.Required(), mcp.Description("Staging id from stage_content")),
	), s.reviewStaged)

	s.mcp.AddTool(mcp.NewTool("edit_staged", append([]mcp.ToolOption{
		mcp.WithDescription("Change the title, tags or purpose of a staged document. Omitted fields are kept."),
		mcp.WithString("temp_id", mcp.Required(), mcp.Description("Staging id from stage_content")),
	}, editArgs...)...), s.editStaged)

	s.mcp.AddTool(mcp.NewTool("commit_staged", append([]mcp.ToolOption{
		mcp.WithDescription("Save a staged document into the knowledge base, applying any final edits."),
		mcp.WithString("temp_id", mcp.Required(), mcp.Description("Staging id from stage_content")),
	}, editArgs...)...), s.commitStaged)

	s.mcp.AddTool(mcp.NewTool("discard_staged",
		mcp.WithDescription("Throw away a staged document."),
		mcp.WithString("temp_id", mcp.Required(), mcp.Description("Staging id from stage_content")),
	), s.discardStaged)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List committed knowledge base entries."),
		mcp.WithString("order", mcp.Description("oldest (default) or newest"), mcp.Enum("oldest", "newest")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a committed document by its knowledge base path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path, e.g. articles/0001-title.md")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through committed documents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the knowledge base document format contract."),
	), s.getDocumentContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format Contract",
			mcp.WithResourceDescription("Markdown document format used by the knowledge base."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func submission(req mcp.CallToolRequest) workflow.Submission {
	return workflow.Submission{
		URL:     req.GetString("url", ""),
		Text:    req.GetString("text", ""),
		Title:   req.GetString("title", ""),
		Tags:    req.GetStringSlice("tags", nil),
		Purpose: req.GetString("purpose", ""),
	}
}

// edits reads only the edit arguments that are present, so an omitted
// field keeps the staged value.
func edits(req mcp.CallToolRequest) models.Edits {
	var e models.Edits
	args := req.GetArguments()
	if _, ok := args["title"]; ok {
		v := req.GetString("title", "")
		e.Title = &v
	}
	if _, ok := args["tags"]; ok {
		e.Tags = req.GetStringSlice("tags", []string{})
	}
	if _, ok := args["purpose"]; ok {
		v := req.GetString("purpose", "")
		e.Purpose = &v
	}
	return e
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func markdownResult(doc *models.Document) (*mcp.CallToolResult, error) {
	data, err := parser.Render(doc.Metadata, doc.Body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) analyzeContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sug, err := s.svc.Analyze(ctx, submission(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sug)
}

func (s *Server) stageContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	staged, err := s.svc.Submit(ctx, submission(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(staged)
}

func (s *Server) reviewStaged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("temp_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Review(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return markdownResult(doc)
}

func (s *Server) editStaged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("temp_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Edit(ctx, id, edits(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return markdownResult(doc)
}

func (s *Server) commitStaged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("temp_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Commit(ctx, id, edits(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry)
}

func (s *Server) discardStaged(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("temp_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Discard(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("discarded: %s", id)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.Entries(req.GetString("order", "") == "newest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Document(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return markdownResult(doc)
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.db == nil {
		return mcp.NewToolResultError("search index disabled"), nil
	}
	results, err := s.db.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
