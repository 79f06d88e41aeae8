// Package extract is the default per-file Indexer: it parses source with
// tree-sitter and walks the syntax tree into a FileIndex — definitions,
// references with call-kind discrimination, the scope tree, imports,
// exports, and declared-type bindings.
//
// One walker covers JavaScript and TypeScript (shared grammar shape, TS
// adds interfaces and annotations); a second covers Python. The walkers are
// deterministic: identical input produces identical indexes, which the
// engine's symbol-identifier stability depends on.
package extract

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
)

// Indexer parses and indexes single files. Not goroutine-safe: tree-sitter
// parsers hold mutable state, so each worker needs its own Indexer.
type Indexer struct {
	parser *sitter.Parser
}

// New returns a tree-sitter backed Indexer.
func New() *Indexer {
	return &Indexer{parser: sitter.NewParser()}
}

// Index parses the file and builds its semantic index.
func (ix *Indexer) Index(path string, src []byte) (*index.FileIndex, error) {
	l, ok := lang.ForFile(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	grammar, ok := grammarFor(l)
	if !ok {
		return nil, fmt.Errorf("no grammar for language %s", l)
	}
	ix.parser.SetLanguage(grammar)

	tree, err := ix.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	switch l {
	case lang.Python:
		w := newPythonWalker(path, src)
		return w.walkFile(tree.RootNode()), nil
	default:
		w := newScriptWalker(path, string(l), src)
		return w.walkFile(tree.RootNode()), nil
	}
}

func grammarFor(l lang.Language) (*sitter.Language, bool) {
	switch l {
	case lang.JavaScript:
		return javascript.GetLanguage(), true
	case lang.TypeScript:
		return ts.GetLanguage(), true
	case lang.Python:
		return python.GetLanguage(), true
	}
	return nil, false
}

// --- shared node helpers ---

func nodeRange(n *sitter.Node) index.Range {
	return index.Range{
		Start: index.Point{Row: int(n.StartPoint().Row), Col: int(n.StartPoint().Column)},
		End:   index.Point{Row: int(n.EndPoint().Row), Col: int(n.EndPoint().Column)},
	}
}

func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// stringLiteralContent strips the quotes off a string literal node.
func stringLiteralContent(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "string_fragment" {
			return nodeText(c, src)
		}
	}
	s := nodeText(n, src)
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			return s[1 : len(s)-1]
		}
	}
	return s
}
