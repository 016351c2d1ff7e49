package mcp

const (
	// MaxGridCells bounds the inline grid accepted by the evaluate tool
	MaxGridCells = 100_000

	// MaxFormulaLength bounds formula text accepted by any tool
	MaxFormulaLength = 8192

	// MaxOutputBytes is the maximum size of JSON output (5MB)
	MaxOutputBytes = 5 * 1024 * 1024
)
