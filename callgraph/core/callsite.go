package core

// CallSiteKind discriminates the two syntactic call shapes the parser
// records. The set is closed; switches over it must be exhaustive.
type CallSiteKind int

const (
	// CallNamed is a call to a bare identifier: `helper()`.
	CallNamed CallSiteKind = iota
	// CallMember is a call to a one-level property access: `obj.method()`.
	// Constructions `new Klass()` are recorded as member calls with the
	// property name "constructor".
	CallMember
)

// ConstructorName is the property recorded for `new Klass(...)` call sites
// and the member name of class constructors.
const ConstructorName = "constructor"

// CallSite is one syntactic invocation inside a function body.
//
// For CallNamed, Name holds the callee identifier and Object is empty. For
// CallMember, Object holds the object token and Name the property. A call on
// the self-reference inside a method is recorded with the enclosing class
// name substituted for the self-reference, which is what lets instance
// method calls resolve without a type checker.
type CallSite struct {
	Kind   CallSiteKind
	Object string
	Name   string
	Line   uint32
}

// NamedCall builds a CallNamed site.
func NamedCall(name string, line uint32) CallSite {
	return CallSite{Kind: CallNamed, Name: name, Line: line}
}

// MemberCall builds a CallMember site.
func MemberCall(object, property string, line uint32) CallSite {
	return CallSite{Kind: CallMember, Object: object, Name: property, Line: line}
}
