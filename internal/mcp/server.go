// Package mcp exposes the SOV extraction pipeline as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/sovtools/sovgen/internal/config"
	"github.com/sovtools/sovgen/internal/sheet"
	"github.com/sovtools/sovgen/internal/sov"
	"github.com/sovtools/sovgen/internal/store"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	parser    *sov.Service
	renderer  *sheet.Renderer
	exporter  *store.Exporter
	mcpServer *server.MCPServer
	log       zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, parser *sov.Service, log zerolog.Logger) (*Server, error) {
	if parser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		parser:    parser,
		renderer:  sheet.NewRenderer(log),
		exporter:  store.NewExporter(log),
		mcpServer: mcpServer,
		log:       log,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTool := mcp.NewTool(
		"sov_extract_file",
		mcp.WithDescription("Extract the parts-list entries from one variant PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the variant PDF file"),
		),
		mcp.WithString("label",
			mcp.Description("Variant label (defaults to the file name)"),
		),
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractFile)

	metadataTool := mcp.NewTool(
		"sov_metadata_file",
		mcp.WithDescription("Read the customer and product identifiers from a variant PDF title block"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the variant PDF file"),
		),
	)
	s.mcpServer.AddTool(metadataTool, s.handleMetadataFile)

	generateTool := mcp.NewTool(
		"sov_generate",
		mcp.WithDescription("Reconcile several variant PDFs into a combined xlsx workbook"),
		mcp.WithString("sheets",
			mcp.Required(),
			mcp.Description("Comma-separated LABEL=PATH variant specs, in output column order"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Output xlsx path"),
		),
		mcp.WithString("db",
			mcp.Description("Optional SQLite database path for the raw entries"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerate)

	listTool := mcp.NewTool(
		"sov_list_directory",
		mcp.WithDescription("List variant PDF files in a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory path to list (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleListDirectory)
}

// Handler functions
func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label := stringArg(request, "label")
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	rec, err := s.parser.ParseDocument(path, label)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatVariantRecord(rec)), nil
}

func (s *Server) handleMetadataFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := s.parser.ParseDocument(path, filepath.Base(path))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Metadata for %s\n", path)
	responseText += fmt.Sprintf("Customer: %s\n", valueOrUnknown(rec.CustomerID))
	responseText += fmt.Sprintf("Product: %s\n", valueOrUnknown(rec.ProductID))

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sheetsArg, err := request.RequireString("sheets")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dbPath := stringArg(request, "db")

	inputs, err := parseSheetSpecs(sheetsArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	variants, err := s.parser.ParseAll(ctx, inputs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	parts := sov.Merge(variants)
	if err := s.renderer.Render(variants, parts, output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Wrote combined workbook: %s\n", output)
	responseText += fmt.Sprintf("Variants: %d\n", len(variants))
	responseText += fmt.Sprintf("Merged parts: %d\n", len(parts))

	if dbPath != "" {
		if err := s.exporter.Export(ctx, dbPath, variants); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		responseText += fmt.Sprintf("Entry database: %s\n", dbPath)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleListDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory := stringArg(request, "directory")
	if directory == "" {
		directory = s.config.Directory
	}

	matches, err := filepath.Glob(filepath.Join(directory, "*.pdf"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", directory)), nil
	}

	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n\nFiles:\n", len(matches), directory)
	for i, path := range matches {
		text += fmt.Sprintf("%d. %s\n", i+1, filepath.Base(path))
		if info, err := os.Stat(path); err == nil {
			text += fmt.Sprintf("   Size: %d bytes\n", info.Size())
		}
	}

	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatVariantRecord(rec *sov.VariantRecord) string {
	text := fmt.Sprintf("Variant: %s\n", rec.Label)
	text += fmt.Sprintf("Customer: %s\n", valueOrUnknown(rec.CustomerID))
	text += fmt.Sprintf("Product: %s\n", valueOrUnknown(rec.ProductID))
	text += fmt.Sprintf("Entries: %d\n", len(rec.Entries))

	for i := range rec.Entries {
		e := &rec.Entries[i]
		text += fmt.Sprintf("\n%s. %s\n", e.ItemIndex, e.DisplayName)
		text += fmt.Sprintf("   Level: %d  Page: %d\n", e.Level, e.Page)
		text += fmt.Sprintf("   Part Number: %s\n", e.PartNumber)
		if e.DrawingNo != e.PartNumber {
			text += fmt.Sprintf("   Drawing: %s\n", e.DrawingNo)
		}
		if e.Quantity != nil {
			text += fmt.Sprintf("   Quantity: %g\n", *e.Quantity)
		}
		if e.Note != "" {
			text += fmt.Sprintf("   Note: %s\n", e.Note)
		}
		text += fmt.Sprintf("   Revision: %s\n", e.Revision)
	}

	return text
}

// stringArg reads an optional string argument.
func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func valueOrUnknown(v string) string {
	if v == "" {
		return "(unknown)"
	}
	return v
}

// parseSheetSpecs splits a comma-separated list of LABEL=PATH specs.
func parseSheetSpecs(arg string) ([]sov.Input, error) {
	var inputs []sov.Input
	for _, spec := range strings.Split(arg, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		label, path, ok := strings.Cut(spec, "=")
		label = strings.TrimSpace(label)
		path = strings.TrimSpace(path)
		if !ok || label == "" || path == "" {
			return nil, fmt.Errorf("invalid sheet spec %q (want LABEL=PATH)", spec)
		}
		inputs = append(inputs, sov.Input{Label: label, Path: path})
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no sheet specs given")
	}
	return inputs, nil
}

// Run starts the MCP server on standard I/O.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Str("dir", s.config.Directory).Msg("starting MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
