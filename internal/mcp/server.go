package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fuabioo/kontab/internal/cell"
	"github.com/fuabioo/kontab/internal/config"
	"github.com/fuabioo/kontab/internal/formula"
	"github.com/fuabioo/kontab/internal/sheet"
	"github.com/fuabioo/kontab/internal/xlsx"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server
type Server struct {
	mcpServer *server.MCPServer
	cfg       config.Config
	engine    *formula.Engine
	logger    *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithConfig applies process configuration (VAT rate, workers, allowed paths)
func WithConfig(cfg config.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithAllowedPaths overrides the directories files may be read from
func WithAllowedPaths(paths []string) Option {
	return func(s *Server) { s.cfg.AllowedPaths = paths }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new MCP server with all tools registered
func New(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	srv := &Server{cfg: config.Default()}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.logger == nil {
		srv.logger = slog.Default()
	}
	srv.engine = srv.cfg.Engine()

	srv.mcpServer = server.NewMCPServer(
		"kontab",
		version,
		server.WithToolCapabilities(true),
	)
	srv.registerTools()
	return srv
}

// Run starts the MCP server on stdio
func (s *Server) Run() error {
	s.logger.Info("starting MCP server", "allowed_paths", s.cfg.AllowedPaths)
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a cell formula (SUM, AVERAGE, arithmetic, VAT, NETTO) against an inline grid or a workbook sheet"),
		mcp.WithString("formula", mcp.Required(), mcp.Description("Cell content, e.g. =SUM(A1:A3) or =VAT(B2)")),
		mcp.WithArray("grid", mcp.Description("Rows of cell values, row 1 first (optional)")),
		mcp.WithString("file", mcp.Description("Path to xlsx file to evaluate against (optional)")),
		mcp.WithString("sheet", mcp.Description("Sheet name (default: first sheet)")),
	), s.handleEvaluate)

	s.mcpServer.AddTool(mcp.NewTool("dependencies",
		mcp.WithDescription("List the cell addresses a formula refers to"),
		mcp.WithString("formula", mcp.Required(), mcp.Description("Formula text")),
	), s.handleDependencies)

	s.mcpServer.AddTool(mcp.NewTool("is_formula",
		mcp.WithDescription("Report whether a raw cell value is a formula"),
		mcp.WithAny("value", mcp.Required(), mcp.Description("Raw cell value")),
	), s.handleIsFormula)

	s.mcpServer.AddTool(mcp.NewTool("sheets",
		mcp.WithDescription("List all sheets in an Excel workbook with their size and formula count"),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to xlsx file")),
	), s.handleSheets)

	s.mcpServer.AddTool(mcp.NewTool("cell",
		mcp.WithDescription("Get the raw and computed value of a single cell"),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to xlsx file")),
		mcp.WithString("address", mcp.Required(), mcp.Description("Cell address (e.g., A1, B23)")),
		mcp.WithString("sheet", mcp.Description("Sheet name (default: first sheet)")),
	), s.handleCell)

	s.mcpServer.AddTool(mcp.NewTool("recalc",
		mcp.WithDescription("Evaluate every formula in a sheet; optionally save the computed values as a new workbook"),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to xlsx file")),
		mcp.WithString("sheet", mcp.Description("Sheet name (default: first sheet)")),
		mcp.WithString("out", mcp.Description("Path of the computed snapshot workbook (optional)")),
	), s.handleRecalc)
}

// Tool handlers

type evaluateArgs struct {
	Formula string  `json:"formula"`
	Grid    [][]any `json:"grid"`
	File    string  `json:"file"`
	Sheet   string  `json:"sheet"`
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args evaluateArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if len(args.Formula) > MaxFormulaLength {
		return mcp.NewToolResultError(fmt.Sprintf("formula too long (%d bytes, max %d)", len(args.Formula), MaxFormulaLength)), nil
	}
	if args.File != "" && args.Grid != nil {
		return mcp.NewToolResultError("pass either grid or file, not both"), nil
	}

	var g cell.Data
	switch {
	case args.File != "":
		data, _, err := s.loadSheet(ctx, args.File, args.Sheet)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		g = data
	case args.Grid != nil:
		cells := 0
		for _, r := range args.Grid {
			cells += len(r)
		}
		if cells > MaxGridCells {
			return mcp.NewToolResultError(fmt.Sprintf("grid too large (%d cells, max %d)", cells, MaxGridCells)), nil
		}
		data, err := cell.FromRows(args.Grid)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		g = data
	}

	return jsonResult(s.engine.Explain(cell.Parse(args.Formula), g))
}

func (s *Server) handleDependencies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("formula", "")
	if text == "" {
		return mcp.NewToolResultError("formula cannot be empty"), nil
	}
	if len(text) > MaxFormulaLength {
		return mcp.NewToolResultError(fmt.Sprintf("formula too long (%d bytes, max %d)", len(text), MaxFormulaLength)), nil
	}
	return jsonResult(formula.Dependencies(text))
}

func (s *Server) handleIsFormula(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := request.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError("value is required"), nil
	}
	v, err := cell.FromAny(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"is_formula": formula.IsFormula(v)})
}

func (s *Server) handleSheets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	validPath, err := ValidateFilePath(request.GetString("file", ""), s.cfg.AllowedPaths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := xlsx.OpenFile(validPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer f.Close()

	names, err := xlsx.GetSheets(f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infos := make(xlsx.SheetList, 0, len(names))
	for _, name := range names {
		data, err := xlsx.LoadSheet(ctx, f, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		infos = append(infos, xlsx.Info(name, data))
	}
	return jsonResult(infos)
}

func (s *Server) handleCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	validPath, err := ValidateFilePath(request.GetString("file", ""), s.cfg.AllowedPaths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := xlsx.OpenFile(validPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer f.Close()

	info, err := xlsx.Inspect(ctx, f, request.GetString("sheet", ""), request.GetString("address", ""), s.engine.Evaluate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info)
}

func (s *Server) handleRecalc(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, name, err := s.loadSheet(ctx, request.GetString("file", ""), request.GetString("sheet", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := request.GetString("out", "")
	var outPath string
	if out != "" {
		if outPath, err = ValidateOutputPath(out, s.cfg.AllowedPaths); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	store := sheet.NewFromData(data, s.sheetOptions()...)
	computed, records, err := store.Computed(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report := sheet.NewReport(name, records)

	if outPath != "" {
		if err := xlsx.SaveSnapshot(outPath, name, computed, xlsx.WriteComputed); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report.Output = outPath
	}
	return jsonResult(report)
}

// loadSheet validates path and loads one sheet from it
func (s *Server) loadSheet(ctx context.Context, path, sheetName string) (cell.Data, string, error) {
	validPath, err := ValidateFilePath(path, s.cfg.AllowedPaths)
	if err != nil {
		return nil, "", err
	}

	f, err := xlsx.OpenFile(validPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	name, err := xlsx.ResolveSheetName(f, sheetName)
	if err != nil {
		return nil, "", err
	}
	data, err := xlsx.LoadSheet(ctx, f, name)
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

func (s *Server) sheetOptions() []sheet.Option {
	return []sheet.Option{
		sheet.WithEngine(s.engine),
		sheet.WithCacheSize(s.cfg.CacheSize),
		sheet.WithWorkers(s.cfg.Workers),
		sheet.WithLogger(s.logger),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("JSON encoding error: %v", err)), nil
	}

	if len(data) > MaxOutputBytes {
		return mcp.NewToolResultError(fmt.Sprintf("Output too large (%d bytes, max %d bytes). Try a smaller sheet.", len(data), MaxOutputBytes)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
