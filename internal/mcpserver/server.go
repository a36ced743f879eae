// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the vault to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/vault"
)

const formatURI = "linkvault://document-format"

// Server wraps the MCP server with vault tools.
type Server struct {
	mcp *server.MCPServer
	v   *vault.Vault
}

// New creates a new MCP server with all vault tools registered.
func New(v *vault.Vault) *Server {
	s := &Server{v: v}

	s.mcp = server.NewMCPServer(
		"Linkvault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return every section and link together with the lock state and pending prompts."),
	), s.getDocument)

	s.mcp.AddTool(mcp.NewTool("add_section",
		mcp.WithDescription("Create a section at the end of the vault."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("emoji", mcp.Description("Optional emoji, defaults to 📁")),
		mcp.WithString("color", mcp.Description("Optional hex color, defaults to #c9a84c")),
	), s.addSection)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Append a link to a section. URLs without a scheme get https://."),
		mcp.WithString("section_id", mcp.Required(), mcp.Description("ID of an existing section")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Link URL")),
		mcp.WithString("name", mcp.Description("Optional display name, defaults to the domain")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("edit_link",
		mcp.WithDescription("Edit a link and optionally move it to another section. May require the vault password."),
		mcp.WithString("link_id", mcp.Required(), mcp.Description("Link ID")),
		mcp.WithString("url", mcp.Required(), mcp.Description("New URL")),
		mcp.WithString("name", mcp.Description("New display name")),
		mcp.WithString("section_id", mcp.Description("Target section; empty keeps the current one")),
	), s.editLink)

	s.mcp.AddTool(mcp.NewTool("move_links",
		mcp.WithDescription("Move links to the end of a section, keeping their relative order."),
		mcp.WithArray("ids", mcp.Required(), mcp.WithStringItems(), mcp.Description("Link IDs")),
		mcp.WithString("section_id", mcp.Required(), mcp.Description("Target section ID")),
	), s.moveLinks)

	s.mcp.AddTool(mcp.NewTool("delete_link",
		mcp.WithDescription("Delete a link. Answers with a confirmation ticket; pass it to confirm."),
		mcp.WithString("section_id", mcp.Required(), mcp.Description("Section holding the link")),
		mcp.WithString("link_id", mcp.Required(), mcp.Description("Link ID")),
	), s.deleteLink)

	s.mcp.AddTool(mcp.NewTool("delete_section",
		mcp.WithDescription("Delete a section and all of its links. Answers with a confirmation ticket."),
		mcp.WithString("section_id", mcp.Required(), mcp.Description("Section ID")),
	), s.deleteSection)

	s.mcp.AddTool(mcp.NewTool("unlock",
		mcp.WithDescription("Submit the vault password and resume the operation waiting for it."),
		mcp.WithString("password", mcp.Required(), mcp.Description("Vault password")),
	), s.unlock)

	s.mcp.AddTool(mcp.NewTool("confirm",
		mcp.WithDescription("Carry out a pending deletion."),
		mcp.WithString("ticket", mcp.Description("Ticket from the confirm_required answer; empty confirms whatever is pending")),
	), s.confirm)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Return the vault as JSON in the document format."),
	), s.exportDocument)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Replace the whole vault. Read the format first via get_document_contract "+
			"or the "+formatURI+" resource."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Inline JSON, a data: URI or an http(s) URL")),
		mcp.WithString("if_match", mcp.Description("Checksum the current document must have")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the vault document format. Call this before importing."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("JSON format of an exported or imported vault."),
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

// outcomeResult renders an operation outcome as tool output.
func outcomeResult(op string, out vault.Outcome, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		slog.Debug("mcp tool failed", slog.String("tool", op), slog.String("error", err.Error()))
		return mcp.NewToolResultError(apperr.Message(err)), nil
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getDocument(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.v.View())
}

func (s *Server) addSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.CreateSection(ctx, document.SectionInput{
		Name:  name,
		Emoji: req.GetString("emoji", ""),
		Color: req.GetString("color", ""),
	})
	return outcomeResult("add_section", out, err)
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionID, err := req.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.AddLink(ctx, sectionID, document.LinkInput{URL: rawURL, Name: req.GetString("name", "")})
	return outcomeResult("add_link", out, err)
}

func (s *Server) editLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	linkID, err := req.RequireString("link_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := document.LinkInput{URL: rawURL, Name: req.GetString("name", "")}
	out, err := s.v.UpdateLink(ctx, linkID, in, req.GetString("section_id", ""))
	return outcomeResult("edit_link", out, err)
}

func (s *Server) moveLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := req.RequireStringSlice("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sectionID, err := req.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.MoveLinks(ctx, ids, sectionID)
	return outcomeResult("move_links", out, err)
}

func (s *Server) deleteLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionID, err := req.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	linkID, err := req.RequireString("link_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.DeleteLink(ctx, sectionID, linkID)
	return outcomeResult("delete_link", out, err)
}

func (s *Server) deleteSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionID, err := req.RequireString("section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.DeleteSection(ctx, sectionID)
	return outcomeResult("delete_section", out, err)
}

func (s *Server) unlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	password, err := req.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.Unlock(ctx, password)
	if err == nil && out.Status == vault.StatusDone {
		if res, ok := out.Result.(vault.ExportResult); ok {
			return mcp.NewToolResultText(string(res.Data)), nil
		}
	}
	return outcomeResult("unlock", out, err)
}

func (s *Server) confirm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.v.Confirm(ctx, req.GetString("ticket", ""))
	return outcomeResult("confirm", out, err)
}

func (s *Server) exportDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.v.Export(ctx)
	if err != nil || out.Status != vault.StatusDone {
		return outcomeResult("export_document", out, err)
	}
	res, ok := out.Result.(vault.ExportResult)
	if !ok {
		return mcp.NewToolResultError("unexpected export result"), nil
	}
	return mcp.NewToolResultText(string(res.Data)), nil
}

func (s *Server) importDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := readSource(src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.v.Import(ctx, data, req.GetString("if_match", ""))
	return outcomeResult("import_document", out, err)
}

func (s *Server) getDocumentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
