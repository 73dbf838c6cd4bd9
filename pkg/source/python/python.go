// Package python reads Python imports with tree-sitter.
//
// Only absolute imports are reported:
//
//	import a.b            -> a.b
//	import a.b as c       -> a.b
//	from a.b import c, d  -> a.b.c, a.b.d
//	from a.b import *     -> a.b
//	from . import c       -> (skipped)
//	from ..a import c     -> (skipped)
//
// Imports are collected anywhere in the file, including inside functions,
// classes and try blocks. Files with syntax errors are read on a best-effort
// basis: tree-sitter recovers and the statements it could parse are used.
package python

import (
	"context"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/matzehuels/archlens/pkg/source"
)

// Reader implements [source.ImportReader] and [source.Parser] for Python.
// It is safe for concurrent use.
type Reader struct{}

// NewReader returns a Python import reader.
func NewReader() *Reader { return &Reader{} }

// Language returns "python".
func (*Reader) Language() string { return "python" }

// Version identifies the extraction rules.
func (*Reader) Version() string { return "1" }

// ReadImports reads and parses the file at path.
func (r *Reader) ReadImports(ctx context.Context, path string) ([]string, error) {
	src, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.ParseImports(ctx, src)
}

// ParseImports returns the sorted, de-duplicated absolute imports in src.
func (*Reader) ParseImports(ctx context.Context, src []byte) ([]string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	var imports []string
	stack := []*sitter.Node{tree.RootNode()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "import_statement":
			imports = append(imports, plainImports(n, src)...)
			continue
		case "import_from_statement", "future_import_statement":
			imports = append(imports, fromImports(n, src)...)
			continue
		}
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}

	slices.Sort(imports)
	return slices.Compact(imports), nil
}

// plainImports handles "import a.b, c as d".
func plainImports(n *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, child.Content(src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				out = append(out, name.Content(src))
			}
		}
	}
	return out
}

// fromImports handles "from a.b import c, d as e" and "from a import *".
// Relative imports yield nothing.
func fromImports(n *sitter.Node, src []byte) []string {
	var module string
	var names []string
	wildcard := false
	sawImport := false

	if n.Type() == "future_import_statement" {
		module = "__future__"
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			return nil
		case "wildcard_import":
			wildcard = true
		case "dotted_name":
			if sawImport {
				names = append(names, child.Content(src))
			} else {
				module = child.Content(src)
			}
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(src))
			}
		case "identifier":
			if sawImport {
				names = append(names, child.Content(src))
			}
		}
	}

	if module == "" {
		return nil
	}
	if wildcard {
		return []string{module}
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, module+"."+name)
	}
	return out
}

var (
	_ source.ImportReader = (*Reader)(nil)
	_ source.Parser       = (*Reader)(nil)
)
