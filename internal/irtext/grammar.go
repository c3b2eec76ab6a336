// Package irtext is a textual surface syntax for the IR model in spec
// §3, so test fixtures and the verifier harness can name IR modules
// directly instead of depending on an external C frontend + bitcode
// reader (explicitly out of scope, spec §1). A module is a sequence of
// functions; concrete syntax mirrors internal/ir's own String()
// methods, e.g.:
//
//	function main() {
//	block 0:
//	  %0 = alloca i8
//	  store 65, %0
//	  %1 = load %0
//	  call putchar(%1)
//	  br b1
//	block 1:
//	  ret
//	}
package irtext

// File is the top-level parse result: an ordered sequence of function
// declarations, mirroring ir.Module.
type File struct {
	Functions []*FunctionDecl `@@*`
}

type FunctionDecl struct {
	Name   string       `"function" @Ident "("`
	Params []*ParamDecl `[ @@ { "," @@ } ] ")"`
	Return string       `[ ":" @("i8" | "ptr" | "i1") ]`
	Blocks []*BlockDecl  `"{" @@* "}"`
}

type ParamDecl struct {
	Name string `@Ident ":"`
	Type string `@("i8" | "ptr" | "i1")`
}

type BlockDecl struct {
	Name         int          `"block" @Integer ":"`
	Instructions []*InstrDecl `@@*`
	Terminator   *TermDecl    `@@`
}

// InstrDecl is one non-terminator instruction. Every alternative but
// Store and a void Call starts with a Register token ("%N ="), so participle backtracks
// across them trying each in turn until the keyword following "=" (or
// the literal "store"/"call") matches.
type InstrDecl struct {
	Alloca *AllocaDecl `  @@`
	Store  *StoreDecl  `| @@`
	Load   *LoadDecl   `| @@`
	Add    *AddDecl    `| @@`
	ICmp   *ICmpDecl   `| @@`
	Call   *CallDecl   `| @@`
}

type AllocaDecl struct {
	Dest string `@Register "=" "alloca"`
	Type string `@("i8" | "ptr" | "i1")`
}

type StoreDecl struct {
	Value *OperandDecl `"store" @@ ","`
	Addr  *OperandDecl `@@`
}

type LoadDecl struct {
	Dest string       `@Register "=" "load"`
	Addr *OperandDecl `@@`
}

type AddDecl struct {
	Dest string       `@Register "=" "add"`
	Op0  *OperandDecl `@@ ","`
	Op1  *OperandDecl `@@`
}

type ICmpDecl struct {
	Dest string       `@Register "=" "icmp"`
	Pred string       `@("slt" | "eq" | "ne")`
	Op0  *OperandDecl `@@ ","`
	Op1  *OperandDecl `@@`
}

// CallDecl covers both the void and value-producing forms; Dest is ""
// when the call has no destination register.
type CallDecl struct {
	Dest   string         `[ @Register "=" ]`
	Callee string         `"call" @Ident "("`
	Args   []*OperandDecl `[ @@ { "," @@ } ] ")"`
}

// TermDecl is a block's single terminator. Br and CondBr both begin
// with the literal "br"; they diverge on whether what follows is a
// bare BlockRef (Br) or an operand followed by a comma (CondBr).
type TermDecl struct {
	Br     *BrDecl     `  @@`
	CondBr *CondBrDecl `| @@`
	Ret    *RetDecl    `| @@`
}

type BrDecl struct {
	Dest string `"br" @BlockRef`
}

type CondBrDecl struct {
	Cond      *OperandDecl `"br" @@ ","`
	TrueDest  string       `@BlockRef ","`
	FalseDest string       `@BlockRef`
}

type RetDecl struct {
	Value *OperandDecl `"ret" [ @@ ]`
}

// OperandDecl is either a register reference or an 8-bit constant.
type OperandDecl struct {
	Register *string `  @Register`
	Const    *int    `| @Integer`
}
