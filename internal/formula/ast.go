package formula

import (
	"github.com/pagespace/sheetdoc/internal/sheet"
)

// Node is the sealed interface over formula AST nodes. Nodes are immutable
// once built and owned by a single evaluation.
type Node interface {
	node()
}

// NumberLiteral is a numeric constant.
type NumberLiteral struct {
	Value float64
}

// StringLiteral is a quoted string constant.
type StringLiteral struct {
	Value string
}

// CellRef is a same-document cell reference.
type CellRef struct {
	Address sheet.Address
}

// Name returns the canonical address string of the referenced cell.
func (n *CellRef) Name() string { return n.Address.String() }

// RangeRef is a same-document rectangular range between two cell references.
type RangeRef struct {
	Start *CellRef
	End   *CellRef
}

// ExternalCellRef is a reference to a cell on another page.
type ExternalCellRef struct {
	Page *PageReference
	Ref  *CellRef
}

// ExternalRangeRef is a rectangular range on another page.
type ExternalRangeRef struct {
	Page  *PageReference
	Start *CellRef
	End   *CellRef
}

// UnaryExpr applies a prefix operator ("+" or "-") to an operand.
type UnaryExpr struct {
	Op      string
	Operand Node
}

// BinaryExpr applies an infix operator to two operands.
type BinaryExpr struct {
	Op    string
	Left  Node
	Right Node
}

// FunctionCall invokes a built-in function. Name is uppercased.
type FunctionCall struct {
	Name string
	Args []Node
}

func (*NumberLiteral) node()    {}
func (*StringLiteral) node()    {}
func (*CellRef) node()          {}
func (*RangeRef) node()         {}
func (*ExternalCellRef) node()  {}
func (*ExternalRangeRef) node() {}
func (*UnaryExpr) node()        {}
func (*BinaryExpr) node()       {}
func (*FunctionCall) node()     {}
