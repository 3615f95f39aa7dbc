package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
)

func (s *Server) registerDocumentTools() {
	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Save the session to the document store. Without an id the document the session "+
			"was opened from is overwritten, or a new one is created. Fails if someone else changed it meanwhile."),
		mcp.WithString("id", mcp.Description("Document id (letters, digits, '-' and '_')")),
		mcp.WithString("title", mcp.Description("Document title (defaults to the first text)")),
	), s.saveDocument)

	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Replace the session with a saved document. History restarts."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
	), s.openDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List saved documents, most recently updated first."),
		mcp.WithNumber("limit", mcp.Description("Max documents (default 50)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document titles and text elements."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)
}

func (s *Server) saveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.docs == nil {
		return mcp.NewToolResultError("document store is not configured"), nil
	}
	id := req.GetString("id", "")
	title := req.GetString("title", "")

	var saved *docservice.Saved
	err := s.do(func(se *editor.Session) error {
		target, ifMatch := id, ""
		if target == "" {
			target = s.documentID
		}
		if target != "" && target == s.documentID {
			ifMatch = s.checksum
		}
		var err error
		saved, err = s.docs.Save(ctx, target, title, se.Export(), ifMatch)
		if err != nil {
			return err
		}
		s.documentID, s.checksum = saved.ID, saved.Checksum
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(saved)
}

func (s *Server) openDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.docs == nil {
		return mcp.NewToolResultError("document store is not configured"), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loaded, err := s.docs.Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.edit(func(se *editor.Session) (string, error) {
		if err := se.Load(loaded.Payload); err != nil {
			return "", err
		}
		s.documentID, s.checksum = loaded.ID, loaded.Checksum
		return "", nil
	})
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.docs == nil {
		return mcp.NewToolResultError("document store is not configured"), nil
	}
	limit := int(getFloat(req.GetArguments(), "limit", 0))
	docs, total, err := s.docs.List(ctx, limit, 0, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}
	out, _ := json.MarshalIndent(docs, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("%d of %d documents\n%s", len(docs), total, out)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.docs == nil {
		return mcp.NewToolResultError("document store is not configured"), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.docs.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
