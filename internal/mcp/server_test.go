package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/sovtools/sovgen/internal/config"
	"github.com/sovtools/sovgen/internal/sov"
)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Mode:        config.ModeStdio,
		Directory:   dir,
		Version:     "1.0.0",
		ServerName:  "test-server",
		LogLevel:    "info",
		MaxFileSize: 1024 * 1024,
	}
}

func testServer(t *testing.T, dir string) *Server {
	t.Helper()
	cfg := testConfig(dir)
	parser := sov.NewService(cfg.Options(), zerolog.Nop())
	srv, err := NewServer(cfg, parser, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t.TempDir())

	if _, err := NewServer(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil parser")
	}

	parser := sov.NewService(cfg.Options(), zerolog.Nop())
	srv, err := NewServer(cfg, parser, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.mcpServer == nil {
		t.Error("expected underlying MCP server to be created")
	}
}

func TestHandleExtractFileErrors(t *testing.T) {
	srv := testServer(t, t.TempDir())

	// missing required argument
	result, err := srv.handleExtractFile(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing path")
	}

	// not a PDF
	notPDF := filepath.Join(t.TempDir(), "bogus.pdf")
	if err := os.WriteFile(notPDF, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	result, err = srv.handleExtractFile(context.Background(), toolRequest(map[string]interface{}{
		"path": notPDF,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for unreadable file")
	}
}

func TestHandleGenerateRejectsBadSpecs(t *testing.T) {
	srv := testServer(t, t.TempDir())

	result, err := srv.handleGenerate(context.Background(), toolRequest(map[string]interface{}{
		"sheets": "missing-separator.pdf",
		"output": filepath.Join(t.TempDir(), "out.xlsx"),
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for malformed sheet spec")
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "invalid sheet spec") {
		t.Errorf("unexpected error text: %s", text)
	}
}

func TestHandleListDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
	}
	srv := testServer(t, dir)

	result, err := srv.handleListDirectory(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	text := extractTextFromResult(result)
	if !strings.Contains(text, "Found 2 PDF file(s)") {
		t.Errorf("expected 2 PDFs, got: %s", text)
	}
	if strings.Index(text, "a.pdf") > strings.Index(text, "b.pdf") {
		t.Error("expected sorted listing")
	}
	if strings.Contains(text, "notes.txt") {
		t.Error("non-PDF files must not be listed")
	}

	// empty directory
	srv = testServer(t, t.TempDir())
	result, err = srv.handleListDirectory(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if text := extractTextFromResult(result); !strings.Contains(text, "No PDF files found") {
		t.Errorf("unexpected text for empty directory: %s", text)
	}
}

func TestParseSheetSpecs(t *testing.T) {
	inputs, err := parseSheetSpecs("BASE=base.pdf, EU=eu.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 || inputs[0].Label != "BASE" || inputs[1].Path != "eu.pdf" {
		t.Errorf("unexpected inputs: %+v", inputs)
	}

	if _, err := parseSheetSpecs(""); err == nil {
		t.Error("expected error for empty spec list")
	}
	if _, err := parseSheetSpecs("=path.pdf"); err == nil {
		t.Error("expected error for empty label")
	}
	if _, err := parseSheetSpecs("A="); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFormatVariantRecord(t *testing.T) {
	srv := testServer(t, t.TempDir())
	q := 2.0
	rec := &sov.VariantRecord{
		Label:      "BASE",
		CustomerID: "ACME",
		Entries: []sov.BomEntry{
			{
				ItemIndex: "1", Level: 1, Page: 1,
				PartNumber: "12345-A", DrawingNo: "D-12345",
				PartName: "Bracket", DisplayName: "Bracket",
				Revision: "0", Quantity: &q, Note: "special coating",
			},
		},
	}

	text := srv.formatVariantRecord(rec)
	for _, want := range []string{
		"Variant: BASE",
		"Customer: ACME",
		"Product: (unknown)",
		"Entries: 1",
		"Part Number: 12345-A",
		"Drawing: D-12345",
		"Quantity: 2",
		"Note: special coating",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in formatted record, got:\n%s", want, text)
		}
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
