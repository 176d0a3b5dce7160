package formula

import (
	"sort"
	"strings"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

// Dependencies walks an AST and returns every reference the formula reads,
// sorted and de-duplicated. Same-document ranges expand to their member
// addresses in row-major order; cross-page references are rendered back
// into canonical mention strings and kept opaque.
func Dependencies(node Node) []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	walkRefs(node, func(key string) { add(key) })
	sort.Strings(keys)
	return keys
}

// ExternalKey renders a cross-page cell or range reference as its canonical
// dependency key, e.g. "@[Budget](3f2a):B2" or "@[Budget]:A1:A3".
func ExternalKey(page *PageReference, start, end string) string {
	var b strings.Builder
	b.WriteString(page.Key())
	b.WriteString(":")
	b.WriteString(start)
	if end != "" {
		b.WriteString(":")
		b.WriteString(end)
	}
	return b.String()
}

func walkRefs(node Node, visit func(key string)) {
	switch n := node.(type) {
	case *NumberLiteral, *StringLiteral, nil:
	case *CellRef:
		visit(n.Name())
	case *RangeRef:
		for _, addr := range ExpandRange(n.Start.Address, n.End.Address) {
			visit(addr.String())
		}
	case *ExternalCellRef:
		visit(ExternalKey(n.Page, n.Ref.Name(), ""))
	case *ExternalRangeRef:
		visit(ExternalKey(n.Page, n.Start.Name(), n.End.Name()))
	case *UnaryExpr:
		walkRefs(n.Operand, visit)
	case *BinaryExpr:
		walkRefs(n.Left, visit)
		walkRefs(n.Right, visit)
	case *FunctionCall:
		for _, arg := range n.Args {
			walkRefs(arg, visit)
		}
	}
}

// ExpandRange lists the member addresses of a rectangular range in
// row-major order. The corners may be given in any order.
func ExpandRange(start, end sheet.Address) []sheet.Address {
	r1, r2 := start.Row, end.Row
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	c1, c2 := start.Column, end.Column
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	var addrs []sheet.Address
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			addrs = append(addrs, sheet.Address{Row: r, Column: c})
		}
	}
	return addrs
}

// CollectExternalReferences scans every formula cell of a sheet and
// returns the canonical external dependency keys it mentions, sorted and
// de-duplicated. Formulas that fail to tokenize or parse are skipped; this
// lets link discovery run over documents that contain broken formulas
// without evaluating anything.
func CollectExternalReferences(data *sheet.Data) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, raw := range data.Cells {
		if !strings.HasPrefix(raw, "=") {
			continue
		}
		node, err := Parse(raw[1:])
		if err != nil {
			continue
		}
		walkRefs(node, func(key string) {
			if strings.HasPrefix(key, "@[") && !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		})
	}
	sort.Strings(keys)
	return keys
}
