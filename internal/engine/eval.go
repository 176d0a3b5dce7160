package engine

import (
	"math"
	"strings"

	"github.com/pagespace/sheetdoc/internal/formula"
	"github.com/pagespace/sheetdoc/internal/sheet"
)

// cacheKey identifies a cell within one evaluation pass. The page field is
// "" for the root document and the resolver-assigned page ID for foreign
// pages.
type cacheKey struct {
	page string
	addr string
}

// evalContext carries all per-pass state: the memoized result table, the
// ancestor set of the active recursion path, the sheets in play, and the
// mention resolution cache. A fresh context is allocated for every pass
// and discarded afterward; nothing is shared between passes.
type evalContext struct {
	resolver PageResolver

	memo      map[cacheKey]*Result
	ancestors map[cacheKey]bool
	path      []cacheKey

	sheets   map[string]*sheet.Data
	mentions map[string]*mentionResolution
}

// mentionResolution caches one resolver answer, success or failure, so the
// same raw mention string is resolved at most once per pass.
type mentionResolution struct {
	page *ResolvedPage
	err  *EvalError
}

func newEvalContext(root *sheet.Data, resolver PageResolver) *evalContext {
	return &evalContext{
		resolver:  resolver,
		memo:      make(map[cacheKey]*Result),
		ancestors: make(map[cacheKey]bool),
		sheets:    map[string]*sheet.Data{"": root},
		mentions:  make(map[string]*mentionResolution),
	}
}

// evaluateCell resolves one cell to a terminal result. Results are cached
// for the remainder of the pass, so repeated references are O(1) after the
// first evaluation. Re-entering an address already on the recursion path
// resolves immediately to a circular-reference error instead of recursing.
func (ctx *evalContext) evaluateCell(pageKey, addr string) *Result {
	key := cacheKey{page: pageKey, addr: addr}
	if r, ok := ctx.memo[key]; ok {
		return r
	}
	if ctx.ancestors[key] {
		// Transient result for the referencing expression; the cells on
		// the cycle record their own errors as the recursion unwinds.
		return &Result{
			Address: addr,
			Err:     newCircularError(ctx.cycleFrom(key)),
			Display: CycleDisplay,
		}
	}

	ctx.ancestors[key] = true
	ctx.path = append(ctx.path, key)
	defer func() {
		delete(ctx.ancestors, key)
		ctx.path = ctx.path[:len(ctx.path)-1]
	}()

	data := ctx.sheets[pageKey]
	raw := data.Get(addr)
	result := &Result{Address: addr, Raw: raw}

	switch {
	case raw == "":
		result.setValue(Empty{})
	case strings.HasPrefix(raw, "="):
		node, err := formula.Parse(raw[1:])
		if err != nil {
			result.setError(newEvalError(ErrCodeParse, "%s", err.Error()))
			break
		}
		result.DependsOn = formula.Dependencies(node)
		value, evalErr := ctx.evalNode(pageKey, node)
		if evalErr != nil {
			result.setError(evalErr)
			break
		}
		result.setValue(value)
	default:
		result.setValue(LiteralValue(raw))
	}

	ctx.memo[key] = result
	return result
}

// cycleFrom lists the cycle membership: the recursion path from the
// re-entered key to the current cell, in evaluation order. Foreign-page
// members are qualified with their page ID.
func (ctx *evalContext) cycleFrom(key cacheKey) []string {
	start := 0
	for i, k := range ctx.path {
		if k == key {
			start = i
			break
		}
	}
	members := make([]string, 0, len(ctx.path)-start)
	for _, k := range ctx.path[start:] {
		if k.page == "" {
			members = append(members, k.addr)
		} else {
			members = append(members, k.page+"!"+k.addr)
		}
	}
	return members
}

func (ctx *evalContext) evalNode(pageKey string, node formula.Node) (Value, *EvalError) {
	switch n := node.(type) {
	case *formula.NumberLiteral:
		return Number(n.Value), nil

	case *formula.StringLiteral:
		return String(n.Value), nil

	case *formula.CellRef:
		r := ctx.evaluateCell(pageKey, n.Name())
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Value, nil

	case *formula.RangeRef, *formula.ExternalRangeRef:
		return nil, newEvalError(ErrCodeRangeNotAllowed, "a range can only be used as a function argument")

	case *formula.ExternalCellRef:
		page, err := ctx.resolvePage(n.Page)
		if err != nil {
			return nil, err
		}
		r := ctx.evaluateCell(page.PageID, n.Ref.Name())
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Value, nil

	case *formula.UnaryExpr:
		v, err := ctx.evalNode(pageKey, n.Operand)
		if err != nil {
			return nil, err
		}
		f, cerr := CoerceNumber(v)
		if cerr != nil {
			return nil, cerr
		}
		if n.Op == "-" {
			f = -f
		}
		return Number(f), nil

	case *formula.BinaryExpr:
		left, err := ctx.evalNode(pageKey, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ctx.evalNode(pageKey, n.Right)
		if err != nil {
			return nil, err
		}
		return applyBinary(n.Op, left, right)

	case *formula.FunctionCall:
		args := make([]argList, len(n.Args))
		for i, argNode := range n.Args {
			list, err := ctx.evalArg(pageKey, argNode)
			if err != nil {
				return nil, err
			}
			args[i] = list
		}
		return callFunction(n.Name, args)
	}

	return nil, newEvalError(ErrCodeParse, "unknown expression node")
}

// evalArg evaluates a function argument to its flattened value list:
// ranges flatten to their member cells in row-major order, everything else
// is a single value.
func (ctx *evalContext) evalArg(pageKey string, node formula.Node) (argList, *EvalError) {
	switch n := node.(type) {
	case *formula.RangeRef:
		return ctx.flattenRange(pageKey, n.Start.Address, n.End.Address)

	case *formula.ExternalRangeRef:
		page, err := ctx.resolvePage(n.Page)
		if err != nil {
			return nil, err
		}
		return ctx.flattenRange(page.PageID, n.Start.Address, n.End.Address)
	}

	v, err := ctx.evalNode(pageKey, node)
	if err != nil {
		return nil, err
	}
	return argList{v}, nil
}

func (ctx *evalContext) flattenRange(pageKey string, start, end sheet.Address) (argList, *EvalError) {
	addrs := formula.ExpandRange(start, end)
	list := make(argList, 0, len(addrs))
	for _, addr := range addrs {
		r := ctx.evaluateCell(pageKey, addr.String())
		if r.Err != nil {
			return nil, r.Err
		}
		list = append(list, r.Value)
	}
	return list, nil
}

// resolvePage answers a mention through the per-pass resolution cache. A
// missing resolver, a nil answer, and a resolver error all record a
// PAGE_UNAVAILABLE error against the referencing cell.
func (ctx *evalContext) resolvePage(ref *formula.PageReference) (*ResolvedPage, *EvalError) {
	key := ref.Raw
	if res, ok := ctx.mentions[key]; ok {
		return res.page, res.err
	}

	res := &mentionResolution{}
	switch {
	case ctx.resolver == nil:
		res.err = newEvalError(ErrCodePageUnavailable, "no resolver for external page %q", ref.Label)
	default:
		page, err := ctx.resolver.Resolve(ref)
		switch {
		case err != nil:
			res.err = newEvalError(ErrCodePageUnavailable, "resolving page %q: %v", ref.Label, err)
		case page == nil:
			res.err = newEvalError(ErrCodePageUnavailable, "external page %q not found", ref.Label)
		default:
			res.page = page
			if _, ok := ctx.sheets[page.PageID]; !ok {
				data := page.Sheet
				if data == nil {
					data = sheet.New()
				}
				ctx.sheets[page.PageID] = data.Clone().Sanitize()
			}
		}
	}
	ctx.mentions[key] = res
	return res.page, res.err
}

// applyBinary implements the operator semantics. '+' falls back to
// concatenation of display forms when either operand fails numeric
// coercion; '=' and '<>' fall back to display-string comparison. The other
// arithmetic and ordering operators are strictly numeric.
func applyBinary(op string, left, right Value) (Value, *EvalError) {
	switch op {
	case "+":
		l, lerr := CoerceNumber(left)
		r, rerr := CoerceNumber(right)
		if lerr != nil || rerr != nil {
			return String(left.Display() + right.Display()), nil
		}
		return Number(l + r), nil

	case "&":
		return String(left.Display() + right.Display()), nil

	case "-", "*", "^":
		l, err := CoerceNumber(left)
		if err != nil {
			return nil, err
		}
		r, err := CoerceNumber(right)
		if err != nil {
			return nil, err
		}
		switch op {
		case "-":
			return Number(l - r), nil
		case "*":
			return Number(l * r), nil
		default:
			return Number(math.Pow(l, r)), nil
		}

	case "/":
		l, err := CoerceNumber(left)
		if err != nil {
			return nil, err
		}
		r, err := CoerceNumber(right)
		if err != nil {
			return nil, err
		}
		if r == 0 {
			return nil, newEvalError(ErrCodeDivisionByZero, "division by zero")
		}
		return Number(l / r), nil

	case "=", "<>":
		equal := valuesEqual(left, right)
		if op == "=" {
			return Bool(equal), nil
		}
		return Bool(!equal), nil

	case "<", "<=", ">", ">=":
		l, err := CoerceNumber(left)
		if err != nil {
			return nil, err
		}
		r, err := CoerceNumber(right)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(l < r), nil
		case "<=":
			return Bool(l <= r), nil
		case ">":
			return Bool(l > r), nil
		default:
			return Bool(l >= r), nil
		}
	}

	return nil, newEvalError(ErrCodeParse, "unknown operator %q", op)
}

// valuesEqual compares numerically when both sides coerce, otherwise by
// display form.
func valuesEqual(left, right Value) bool {
	l, lerr := CoerceNumber(left)
	r, rerr := CoerceNumber(right)
	if lerr == nil && rerr == nil {
		return l == r
	}
	return left.Display() == right.Display()
}
