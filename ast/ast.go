// Package ast models the type-checked syntax tree the compiler core
// consumes. The parser and surface type checker that produce it are
// out of scope for this core (see package typing for the interface
// the checker supplies); this package only models their output shape.
package ast

import "github.com/sdflang/core/term"

// Position is a source location, carried through for diagnostics.
type Position struct {
	File string
	Line int
	Col  int
}

func (p Position) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return p.File
}

// Expr is any source-level expression node.
type Expr interface {
	isExpr()
	Pos() Position
}

type exprBase struct{ Position Position }

func (exprBase) isExpr()          {}
func (e exprBase) Pos() Position  { return e.Position }

// Ident references a local, input, output, constant or generated
// identifier by name.
type Ident struct {
	exprBase
	Name string
}

// IntConst, RealConst and BoolConst are source literal constants.
type IntConst struct {
	exprBase
	Value int64
}
type RealConst struct {
	exprBase
	Value string // decimal literal text, parsed by the generator
}
type BoolConst struct {
	exprBase
	Value bool
}

// BinOpKind tags the source-level binary operator of a BinOp node.
type BinOpKind uint8

const (
	OpAnd BinOpKind = iota
	OpOr
	OpImplies
	OpEq
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
	OpPlus
	OpMinus
	OpTimes
	OpDiv
	OpIntDiv
	OpMod
	OpBVAnd
	OpBVOr
	OpBVXor
	OpBVShl
	OpBVLshr
	OpBVAshr
	OpBVConcat
)

type BinOp struct {
	exprBase
	Op          BinOpKind
	Left, Right Expr
}

// UnOpKind tags the source-level unary operator of a UnOp node.
type UnOpKind uint8

const (
	OpNot UnOpKind = iota
	OpUMinus
	OpToInt
	OpToReal
	OpBVNot
)

type UnOp struct {
	exprBase
	Op      UnOpKind
	Operand Expr
}

// Pre is the source-level one-step-delay operator.
type Pre struct {
	exprBase
	Operand Expr
}

// Arrow is the source-level initial-value operator a -> b.
type Arrow struct {
	exprBase
	Init, Step Expr
}

// Ite is the source-level conditional expression.
type Ite struct {
	exprBase
	Cond, Then, Else Expr
}

// CallKind distinguishes a plain node call from a conditionally
// activated or periodically restarted one.
type CallKind uint8

const (
	PlainCall CallKind = iota
	Condact
	RestartEvery
)

// Call is a node (or function) call appearing as an expression.
type Call struct {
	exprBase
	Kind       CallKind
	Callee     string
	TypeArgs   []*term.Type
	Args       []Expr
	Activation Expr // Condact only
	Restart    Expr // RestartEvery only
	Defaults   []Expr
}

// GroupExpr groups several expressions into one positional tuple,
// e.g. the output of an n-ary node call used as a single value.
type GroupExpr struct {
	exprBase
	Items []Expr
}

// RecordProj / TupleProj / ArrayIndex project into a structured value.
type RecordProj struct {
	exprBase
	Base  Expr
	Field string
}
type TupleProj struct {
	exprBase
	Base Expr
	Idx  int
}
type ArrayIndex struct {
	exprBase
	Base, Index Expr
}

// RecordLit / ArrayLit construct structured values.
type RecordLit struct {
	exprBase
	TypeName string
	Fields   map[string]Expr
	// FieldOrder preserves the declared field order for deterministic
	// iteration (Go map iteration order is randomized).
	FieldOrder []string
}
type ArrayLit struct {
	exprBase
	Items []Expr
}

// Quantifier is a source-level forall/exists.
type Quantifier struct {
	exprBase
	Forall    bool
	VarName   string
	VarType   *term.Type
	Body      Expr
}

// StructureDef is the left-hand side of an equation; it mirrors the
// shape of the expression it is bound to so the generator can walk
// both sides in lockstep.
type StructureDef interface {
	isStructureDef()
	Pos() Position
}

type structBase struct{ Position Position }

func (structBase) isStructureDef() {}
func (s structBase) Pos() Position { return s.Position }

// VarDef binds a single identifier (input/output/local).
type VarDef struct {
	structBase
	Name string
}

// TupleDef / RecordDef / ListDef bind a structured left-hand side
// positionally or by field name.
type TupleDef struct {
	structBase
	Items []StructureDef
}
type RecordDef struct {
	structBase
	Fields     map[string]StructureDef
	FieldOrder []string
}
type ListDef struct {
	structBase
	Items []StructureDef
}

// ArrayDefLoop binds an array equation defined by a loop over fresh
// index variables, e.g. "A[i] = ...".
type ArrayDefLoop struct {
	structBase
	Base    StructureDef
	IdxVars []string
}

// Equation is "lhs = rhs", where lhs was produced by the surface
// checker and rhs is normalized before compilation.
type Equation struct {
	Position Position
	LHS      StructureDef
	RHS      Expr
}

// Assert is a source-level assertion; after normalization its operand
// is always an Ident or a literal constant.
type Assert struct {
	Position Position
	Operand  Expr
}

// PropertyKind distinguishes a user-declared property from one
// synthesized from a contract guarantee or a nonvacuity check.
type PropertyKind uint8

const (
	PropertyPlain PropertyKind = iota
	PropertyGuarantee
	PropertyNonvacuity
	PropertyCandidateInvariant
)

// Property is a source-level proof obligation.
type Property struct {
	Position Position
	Name     string
	Operand  Expr
	Kind     PropertyKind
}

// SurfaceType is the declared type of an input, output or local
// parameter exactly as the source program wrote it: either a scalar
// type backed directly by a term.Type, or a record/tuple composed of
// further surface types. term.Type deliberately carries no record or
// tuple variant (those shapes are eliminated before reaching the term
// layer), so a structured Param has no way to express its type without
// this separate representation.
type SurfaceType interface {
	isSurfaceType()
}

// ScalarType wraps the common case: every int/real/bool/bv/array/enum/
// abstract-typed declaration bottoms out at a single term.Type leaf.
type ScalarType struct {
	Typ *term.Type
}

// RecordSurfaceType is a record-typed declaration, e.g. `r: R` where
// `type R = {a: int; b: bool}`.
type RecordSurfaceType struct {
	Name   string
	Fields map[string]SurfaceType
	// FieldOrder preserves the declared field order for deterministic
	// flattening (Go map iteration order is randomized).
	FieldOrder []string
}

// TupleSurfaceType is a tuple-typed declaration.
type TupleSurfaceType struct {
	Items []SurfaceType
}

func (ScalarType) isSurfaceType()        {}
func (RecordSurfaceType) isSurfaceType() {}
func (TupleSurfaceType) isSurfaceType()  {}

// Param is an input, output or local parameter declaration.
type Param struct {
	Name    string
	Type    SurfaceType
	IsConst bool
}

// ContractItemKind tags one line of a contract body.
type ContractItemKind uint8

const (
	ItemAssume ContractItemKind = iota
	ItemWeaklyAssume
	ItemGuarantee
	ItemWeaklyGuarantee
	ItemMode
	ItemImport
	ItemGhostConst
	ItemGhostVar
)

// ContractItem is one line of a contract body.
type ContractItem struct {
	Position Position
	Kind     ContractItemKind
	Name     string
	Operand  Expr // assume/guarantee/ghost-const/ghost-var definition
	Soft     bool // guarantee only

	// Mode only.
	ModeRequires []ContractItem
	ModeEnsures  []ContractItem

	// Import only: a parametric contract import.
	ImportCallee   string
	ImportTypeArgs []*term.Type
	ImportInputs   []Expr
	ImportOutputs  []string
}

// ContractBody is the full assume/guarantee/mode structure attached to
// a node, or the body of a standalone contract-node declaration.
type ContractBody struct {
	Items []ContractItem
}

// NodeDecl is a regular (non-contract-only) node or function
// declaration.
type NodeDecl struct {
	Name       string
	IsFunction bool
	IsMain     bool
	IsExtern   bool
	TypeParams []string
	Inputs     []Param
	Outputs    []Param
	Locals     []Param
	Equations  []Equation
	Asserts    []Assert
	Properties []Property
	Contract   *ContractBody
}

// ContractNodeDecl is a standalone, importable contract declaration.
type ContractNodeDecl struct {
	Name       string
	TypeParams []string
	Inputs     []Param
	Outputs    []Param
	Body       ContractBody
}

// TypeAliasDecl and ConstDecl are the remaining top-level
// declarations a program can contain.
type TypeAliasDecl struct {
	Name string
	Type *term.Type
}
type ConstDecl struct {
	Name     string
	Type     *term.Type
	Value    Expr // nil for an opaque free constant
	IsGhost  bool
}

// Program is the full type-checked input to the compiler core.
type Program struct {
	TypeAliases []TypeAliasDecl
	Consts      []ConstDecl
	Contracts   []ContractNodeDecl
	Nodes       []NodeDecl
}
