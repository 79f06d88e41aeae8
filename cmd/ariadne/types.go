package main

// CLI output DTOs. All line and column numbers are 0-based.

// SymbolOut is one definition row.
type SymbolOut struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Exported bool   `json:"exported"`
}

// CallEdgeOut is one call-graph edge with its site.
type CallEdgeOut struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Kind   string `json:"kind"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Col    int    `json:"col"`
}

// FileOut is one indexed file.
type FileOut struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Hash     string `json:"hash"`
}

// CycleOut reports an import cycle, or its absence.
type CycleOut struct {
	File  string   `json:"file"`
	Cycle []string `json:"cycle,omitempty"`
}

// StatsOut reports snapshot counters.
type StatsOut struct {
	Files       int `json:"files"`
	Definitions int `json:"definitions"`
	Resolutions int `json:"resolutions"`
	CallEdges   int `json:"call_edges"`
}

// Result wraps every query response for JSON output.
type Result struct {
	Results any `json:"results"`
}
