// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the vault's tags for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tagscan/internal/tagservice"
)

// TagFormatURI identifies the tag format resource.
const TagFormatURI = "tagscan://tag-format"

// Server wraps the MCP server with the tag tools.
type Server struct {
	mcp           *server.MCPServer
	svc           *tagservice.Service
	inlineDefault bool
}

// New creates a new MCP server with all tools registered. inlineDefault is
// used when a call does not pass the inline argument.
func New(svc *tagservice.Service, version string, inlineDefault bool) *Server {
	s := &Server{svc: svc, inlineDefault: inlineDefault}

	s.mcp = server.NewMCPServer(
		"tagscan",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag used in the vault, one per line, without the leading '#'. "+
			"Tags come from the front-matter 'tags' list of each note and, when inline is true, "+
			"from #tags written in note bodies."),
		mcp.WithBoolean("inline", mcp.Description("Also collect inline #tags from note bodies")),
	), s.listTags)

	s.mcp.AddResource(
		mcp.NewResource(TagFormatURI, "Tag Format",
			mcp.WithResourceDescription("Where tags are read from and how they are normalised."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagFormatResource,
	)

	return s
}

// Listen serves MCP over the given streams until ctx is cancelled or in
// reaches EOF.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	withInline := req.GetBool("inline", s.inlineDefault)

	tags, err := s.svc.Collect(ctx, withInline)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) readTagFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TagFormatURI,
			MIMEType: "text/markdown",
			Text:     TagFormat(s.svc.Extension()),
		},
	}, nil
}
