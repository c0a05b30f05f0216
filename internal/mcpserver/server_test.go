package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/tagscan/internal/inline"
	"github.com/starford/tagscan/internal/tagservice"
	"github.com/starford/tagscan/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := testutil.Vault(t, files)
	svc := tagservice.New(root,
		tagservice.WithScanner(inline.Builtin{Ext: ".md"}),
		tagservice.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)
	return New(svc, "test", false)
}

func callListTags(t *testing.T, srv *Server, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = "list_tags"
	req.Params.Arguments = args

	result, err := srv.listTags(context.Background(), req)
	if err != nil {
		t.Fatalf("list_tags error: %v", err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

var vaultFiles = map[string]string{
	"note.md":    "---\ntags: [work, \"idea \"]\n---\nSee #work/urgent for details\n",
	"project.md": "---\ntags: [project]\n---\nalso #project inline\n",
}

func TestListTags_FrontmatterOnly(t *testing.T) {
	srv := testServer(t, vaultFiles)
	r := callListTags(t, srv, nil)
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if got := resultText(r); got != "idea\nproject\nwork" {
		t.Errorf("text = %q", got)
	}
}

func TestListTags_Inline(t *testing.T) {
	srv := testServer(t, vaultFiles)
	r := callListTags(t, srv, map[string]interface{}{"inline": true})
	got := strings.Split(resultText(r), "\n")
	want := []string{"idea", "project", "work", "work/urgent"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestListTags_Empty(t *testing.T) {
	srv := testServer(t, map[string]string{"plain.md": "no tags\n"})
	r := callListTags(t, srv, nil)
	if got := resultText(r); got != "no tags found" {
		t.Errorf("text = %q", got)
	}
}

func TestTagFormatResource(t *testing.T) {
	srv := testServer(t, nil)
	contents, err := srv.readTagFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if tc.URI != TagFormatURI || !strings.Contains(tc.Text, "# Tag Format") {
		t.Errorf("resource = %+v", tc)
	}
	if !strings.Contains(tc.Text, "every `.md` note") {
		t.Errorf("resource should name the default extension: %q", tc.Text)
	}
}

func TestTagFormatResource_CustomExtension(t *testing.T) {
	root := testutil.Vault(t, nil)
	svc := tagservice.New(root,
		tagservice.WithExtension(".markdown"),
		tagservice.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
	)
	srv := New(svc, "test", false)

	contents, err := srv.readTagFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(text, "every `.markdown` note") || strings.Contains(text, "{ext}") {
		t.Errorf("resource text = %q", text)
	}
}

func TestMCPServerExposed(t *testing.T) {
	if testServer(t, nil).MCPServer() == nil {
		t.Fatal("MCPServer returned nil")
	}
}
