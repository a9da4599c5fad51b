package mx3

import (
	"strconv"
	"strings"
)

const indent = "    "

// Statement is one line (or, for Loop, one block) of a script.
type Statement interface {
	render(sb *strings.Builder, prefix string)
	isStatement()
}

// Assign is `name = value`.
type Assign struct {
	Name  string
	Value Value
}

// SetRegion is `name.setregion(region, value)`.
type SetRegion struct {
	Name   string
	Region int
	Value  Value
}

// Call is a bare directive such as relax() or tableadd(dt).
type Call struct {
	Invoke
}

// Comment is a `//` line.
type Comment struct {
	Text string
}

// Blank is an empty line.
type Blank struct{}

// Loop is a counted for loop running Body Bound times.
type Loop struct {
	Counter string
	Bound   int
	Body    []Statement
}

func (s Assign) render(sb *strings.Builder, prefix string) {
	sb.WriteString(prefix + s.Name + " = " + s.Value.Render() + "\n")
}

func (s SetRegion) render(sb *strings.Builder, prefix string) {
	sb.WriteString(prefix + s.Name + ".setregion(" + strconv.Itoa(s.Region) + ", " + s.Value.Render() + ")\n")
}

func (s Call) render(sb *strings.Builder, prefix string) {
	sb.WriteString(prefix + s.Invoke.Render() + "\n")
}

func (s Comment) render(sb *strings.Builder, prefix string) {
	sb.WriteString(prefix + "// " + s.Text + "\n")
}

func (Blank) render(sb *strings.Builder, _ string) {
	sb.WriteString("\n")
}

func (s Loop) render(sb *strings.Builder, prefix string) {
	c := s.Counter
	sb.WriteString(prefix + "for " + c + ":=0; " + c + "<" + strconv.Itoa(s.Bound) + "; " + c + "++{\n")
	for _, st := range s.Body {
		st.render(sb, prefix+indent)
	}
	sb.WriteString(prefix + "}\n")
}

func (Assign) isStatement()    {}
func (SetRegion) isStatement() {}
func (Call) isStatement()      {}
func (Comment) isStatement()   {}
func (Blank) isStatement()     {}
func (Loop) isStatement()      {}

// Script is an ordered list of statements. Later assignments to the same
// name override earlier ones when the simulator runs it, so order is kept
// exactly as appended.
type Script struct {
	Statements []Statement
}

func New() *Script { return &Script{} }

func (s *Script) Append(st ...Statement) *Script {
	s.Statements = append(s.Statements, st...)
	return s
}

func (s *Script) Assign(name string, v Value) *Script {
	return s.Append(Assign{Name: name, Value: v})
}

func (s *Script) SetRegion(name string, region int, v Value) *Script {
	return s.Append(SetRegion{Name: name, Region: region, Value: v})
}

func (s *Script) Call(fn string, args ...Value) *Script {
	return s.Append(Call{Invoke{Func: fn, Args: args}})
}

func (s *Script) Comment(text string) *Script { return s.Append(Comment{Text: text}) }

func (s *Script) Blank() *Script { return s.Append(Blank{}) }

// Len reports the number of top-level statements.
func (s *Script) Len() int { return len(s.Statements) }

// Render produces the script text. Every statement ends with a newline.
func (s *Script) Render() string {
	var sb strings.Builder
	for _, st := range s.Statements {
		st.render(&sb, "")
	}
	return sb.String()
}

func (s *Script) String() string { return s.Render() }

// Calls returns the function names of the top-level directives in order.
func (s *Script) Calls() []string {
	var out []string
	for _, st := range s.Statements {
		if c, ok := st.(Call); ok {
			out = append(out, c.Func)
		}
	}
	return out
}

// Lookup returns the last top-level assignment to name.
func (s *Script) Lookup(name string) (Value, bool) {
	for i := len(s.Statements) - 1; i >= 0; i-- {
		if a, ok := s.Statements[i].(Assign); ok && a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}
