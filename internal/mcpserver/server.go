// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes one Postframe editing session as tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/postframe/internal/apperr"
	"github.com/starford/postframe/internal/docservice"
	"github.com/starford/postframe/internal/editor"
	"github.com/starford/postframe/internal/imagesrc"
)

const contractURI = "postframe://document-format"

// Server wraps the MCP server with Postframe tools.
type Server struct {
	mcp     *server.MCPServer
	docs    *docservice.Service
	fetcher *imagesrc.Fetcher

	mu      sync.Mutex
	session *editor.Session
	// documentID and checksum bind the session to its saved document.
	documentID string
	checksum   string
}

// New creates a new MCP server with all Postframe tools registered. The
// editing session is built with opts.
func New(docs *docservice.Service, fetcher *imagesrc.Fetcher, opts ...editor.Option) *Server {
	if fetcher == nil {
		fetcher = imagesrc.NewFetcher()
	}
	s := &Server{
		docs:    docs,
		fetcher: fetcher,
		session: editor.New(append([]editor.Option{editor.WithLoader(fetcher)}, opts...)...),
	}

	s.mcp = server.NewMCPServer(
		"Postframe",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.registerEditTools()
	s.registerDocumentTools()

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the Postframe document model: canvas, elements, effects, masks and history rules. "+
			"Call this before editing."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("Structure of a Postframe post document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

// do runs fn with exclusive access to the session.
func (s *Server) do(fn func(se *editor.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.session)
}

type fileInfo struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// state is the session view returned by editing tools.
type state struct {
	Document   any        `json:"document"`
	Files      []fileInfo `json:"files"`
	CanUndo    bool       `json:"canUndo"`
	CanRedo    bool       `json:"canRedo"`
	DocumentID string     `json:"documentId,omitempty"`
	ElementID  string     `json:"elementId,omitempty"`
	Warning    string     `json:"warning,omitempty"`
}

// stateOf must be called with s.mu held.
func (s *Server) stateOf() state {
	files := s.session.Files()
	infos := make([]fileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, fileInfo{Name: f.Name, MimeType: f.MimeType, Size: len(f.Blob)})
	}
	return state{
		Document:   s.session.Document(),
		Files:      infos,
		CanUndo:    s.session.CanUndo(),
		CanRedo:    s.session.CanRedo(),
		DocumentID: s.documentID,
	}
}

// edit runs fn and reports the resulting state. A range warning is
// reported in the state instead of failing the call.
func (s *Server) edit(fn func(se *editor.Session) (elementID string, err error)) (*mcp.CallToolResult, error) {
	var st state
	err := s.do(func(se *editor.Session) error {
		id, err := fn(se)
		if err != nil && !errors.Is(err, apperr.ErrRangeWarning) {
			return err
		}
		st = s.stateOf()
		st.ElementID = id
		if err != nil {
			st.Warning = err.Error()
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getBool(args map[string]any, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

func (s *Server) getDocumentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
