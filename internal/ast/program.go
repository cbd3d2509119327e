package ast

// Program is the root of the syntax tree: every interned type, every
// function definition in source order, and the name of the entry-point
// function once one has been found.
type Program struct {
	Types           []Type
	Functions       []Function
	MainFunctionName string // name of the entry-point function, if any
}

// Intern returns the canonical, deduplicated form of t, adding it to
// p.Types if no structurally equal type has been interned yet. Equality
// ignores t.Rep, so the first spelling encountered wins and is what later
// diagnostics referring to the interned type will show.
func (p *Program) Intern(t Type) Type {
	for _, existing := range p.Types {
		if existing.Equal(t) {
			return existing
		}
	}
	p.Types = append(p.Types, t)
	return t
}

// FunctionByName returns the function named name, or nil if none exists.
func (p *Program) FunctionByName(name string) *Function {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i]
		}
	}
	return nil
}

// MainFunction returns the resolved entry-point function, or nil if the
// program has none.
func (p *Program) MainFunction() *Function {
	if p.MainFunctionName == "" {
		return nil
	}
	return p.FunctionByName(p.MainFunctionName)
}
