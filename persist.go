package ariadne

import (
	"fmt"
	"sort"
	"time"

	"github.com/CRJFisher/ariadne/internal/store"
)

// SaveSnapshot resolves all pending files and writes the current analysis
// state to a SQLite database at dbPath: files, definitions, import edges,
// resolutions, and call edges. The snapshot is a query surface for hosts
// and the CLI; the in-memory registries stay the source of truth.
func (p *Project) SaveSnapshot(dbPath string) error {
	p.resolveAllPending()

	s, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("snapshot schema: %w", err)
	}

	now := time.Now().UTC()
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		st := p.files[path]

		var defs []store.DefRow
		for _, d := range p.defs.ByFile(path) {
			defs = append(defs, store.DefRow{
				Symbol:   string(d.Symbol),
				File:     d.File,
				Name:     d.Name,
				Kind:     string(d.Kind),
				Exported: d.Exported,
				StartRow: d.Range.Start.Row,
				StartCol: d.Range.Start.Col,
				EndRow:   d.Range.End.Row,
				EndCol:   d.Range.End.Col,
			})
		}

		var resolutions []store.ResolutionRow
		for loc, res := range p.cache.File(path) {
			resolutions = append(resolutions, store.ResolutionRow{
				File:     loc.File,
				StartRow: loc.StartRow,
				StartCol: loc.StartCol,
				Name:     res.Ref.Name,
				Kind:     string(res.Ref.Kind),
				Symbol:   string(res.Symbol),
				Caller:   string(res.Caller),
			})
		}
		sort.Slice(resolutions, func(i, j int) bool {
			a, b := resolutions[i], resolutions[j]
			if a.StartRow != b.StartRow {
				return a.StartRow < b.StartRow
			}
			return a.StartCol < b.StartCol
		})

		row := store.FileRow{Path: path, Language: string(st.Language), Hash: st.Hash, LastIndexed: now}
		if err := s.SaveFile(row, defs, p.graph.Dependencies(path), resolutions); err != nil {
			return fmt.Errorf("snapshot %s: %w", path, err)
		}
	}

	cg := p.CallGraph()
	var edges []store.CallEdgeRow
	for _, e := range cg.Edges {
		edges = append(edges, store.CallEdgeRow{
			Caller:   string(e.Caller),
			Callee:   string(e.Callee),
			Kind:     string(e.Kind),
			File:     e.Site.File,
			StartRow: e.Site.StartRow,
			StartCol: e.Site.StartCol,
		})
	}
	if err := s.ReplaceCallEdges(edges); err != nil {
		return fmt.Errorf("snapshot call edges: %w", err)
	}
	return nil
}
