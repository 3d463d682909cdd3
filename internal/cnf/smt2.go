package cnf

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// SMT2Model extends Model with the pieces of an SMT2 script marco itself
// never evaluates: per SPEC_FULL.md's Open Questions, marco has no
// embedded SMT theory solver (explicitly out of scope, spec §1), so each
// top-level assertion is boolean-abstracted — every distinct atom
// (anything that isn't `and`/`or`/`not`) becomes a fresh Boolean variable,
// and the assertion's logical skeleton is Tseitin-encoded into one soft
// group. Passthrough commands (set-logic, declare-fun, ...) are preserved
// verbatim for a real SMT backend to replay.
type SMT2Model struct {
	Model
	Passthrough []string
	// Atoms maps each distinct non-Boolean atom's source text to the
	// variable number standing in for it.
	Atoms map[string]int
}

// ParseSMT2File reads an SMT2 script from path.
func ParseSMT2File(path string) (*SMT2Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cnf: opening %s", path)
	}
	defer f.Close()
	return ParseSMT2(f)
}

// ParseSMT2 parses an SMT2 script from r.
func ParseSMT2(r io.Reader) (*SMT2Model, error) {
	forms, passthrough, err := splitTopLevel(r)
	if err != nil {
		return nil, err
	}

	enc := &smt2Encoder{
		atoms: map[string]int{},
		m:     &Model{Groups: map[int][]int{}},
	}

	var asserts []sexpr
	for _, f := range forms {
		if len(f.items) > 0 && f.items[0].atom == "assert" {
			if len(f.items) != 2 {
				return nil, errors.Errorf("cnf: assert with %d arguments", len(f.items)-1)
			}
			asserts = append(asserts, f.items[1])
		} else {
			passthrough = append(passthrough, f.String())
		}
	}

	for _, a := range asserts {
		enc.group++
		group := enc.group
		top := enc.encode(a)
		enc.unit(group, top)
	}

	enc.m.N = enc.group
	enc.m.NVars = enc.nextVar
	enc.m.NClauses = len(enc.m.Clauses)

	out := &SMT2Model{Model: *enc.m, Passthrough: passthrough, Atoms: enc.atoms}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// smt2Encoder performs a Tseitin encoding of the Boolean skeleton of each
// top-level assertion, treating non-logical atoms as opaque Booleans.
type smt2Encoder struct {
	atoms   map[string]int
	nextVar int
	group   int
	m       *Model
}

func (e *smt2Encoder) atomVar(text string) int {
	if v, ok := e.atoms[text]; ok {
		return v
	}
	e.nextVar++
	v := e.nextVar
	e.atoms[text] = v
	return v
}

func (e *smt2Encoder) freshVar() int {
	e.nextVar++
	return e.nextVar
}

func (e *smt2Encoder) addClause(group int, c Clause) {
	e.m.Clauses = append(e.m.Clauses, c)
	e.m.Groups[group] = append(e.m.Groups[group], len(e.m.Clauses)-1)
}

// unit asserts that lit must be true by adding it as a one-literal clause
// in the given group.
func (e *smt2Encoder) unit(group int, lit Lit) {
	e.addClause(group, Clause{lit})
}

// encode recursively Tseitin-encodes s, returning a literal equivalent to
// its value; auxiliary clauses defining that literal are appended to the
// current group (the group is tracked on the encoder for the duration of
// one top-level assert via addClause's caller passing e.group).
func (e *smt2Encoder) encode(s sexpr) Lit {
	if s.atom != "" {
		return Lit(e.atomVar(s.atom))
	}
	if len(s.items) == 0 {
		return Lit(e.atomVar("true"))
	}
	op := s.items[0].atom
	switch op {
	case "not":
		return -e.encode(s.items[1])
	case "and":
		return e.encodeAnd(s.items[1:])
	case "or":
		return e.encodeOr(s.items[1:])
	default:
		// Uninterpreted application (e.g. a theory predicate): treat the
		// whole expression as a single opaque Boolean atom.
		return Lit(e.atomVar(s.String()))
	}
}

func (e *smt2Encoder) encodeAnd(args []sexpr) Lit {
	lits := make([]Lit, len(args))
	for i, a := range args {
		lits[i] = e.encode(a)
	}
	y := Lit(e.freshVar())
	// y -> each lit
	for _, l := range lits {
		e.addClause(e.group, Clause{-y, l})
	}
	// (all lits) -> y
	cl := make(Clause, 0, len(lits)+1)
	for _, l := range lits {
		cl = append(cl, -l)
	}
	cl = append(cl, y)
	e.addClause(e.group, cl)
	return y
}

func (e *smt2Encoder) encodeOr(args []sexpr) Lit {
	lits := make([]Lit, len(args))
	for i, a := range args {
		lits[i] = e.encode(a)
	}
	y := Lit(e.freshVar())
	// each lit -> y
	for _, l := range lits {
		e.addClause(e.group, Clause{-l, y})
	}
	// y -> (some lit)
	cl := make(Clause, 0, len(lits)+1)
	cl = append(cl, -y)
	cl = append(cl, lits...)
	e.addClause(e.group, cl)
	return y
}

// sexpr is a minimal S-expression: either an atom or a list of items.
type sexpr struct {
	atom  string
	items []sexpr
}

func (s sexpr) String() string {
	if s.atom != "" {
		return s.atom
	}
	parts := make([]string, len(s.items))
	for i, it := range s.items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// splitTopLevel tokenizes the script and returns each top-level form in
// order. Its second result is always nil; ParseSMT2 itself separates the
// (assert ...) forms from the passthrough commands.
func splitTopLevel(r io.Reader) ([]sexpr, []string, error) {
	toks, err := tokenizeSMT2(r)
	if err != nil {
		return nil, nil, err
	}
	var forms []sexpr
	i := 0
	for i < len(toks) {
		form, next, err := parseSexpr(toks, i)
		if err != nil {
			return nil, nil, err
		}
		forms = append(forms, form)
		i = next
	}
	return forms, nil, nil
}

func tokenizeSMT2(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	var toks []string
	for sc.Scan() {
		line := sc.Text()
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.ReplaceAll(line, "(", " ( ")
		line = strings.ReplaceAll(line, ")", " ) ")
		toks = append(toks, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "cnf: reading smt2 input")
	}
	return toks, nil
}

func parseSexpr(toks []string, i int) (sexpr, int, error) {
	if i >= len(toks) {
		return sexpr{}, i, errors.New("cnf: unexpected end of smt2 input")
	}
	if toks[i] != "(" {
		return sexpr{atom: toks[i]}, i + 1, nil
	}
	i++
	var items []sexpr
	for i < len(toks) && toks[i] != ")" {
		var item sexpr
		var err error
		item, i, err = parseSexpr(toks, i)
		if err != nil {
			return sexpr{}, i, err
		}
		items = append(items, item)
	}
	if i >= len(toks) {
		return sexpr{}, i, errors.New("cnf: unbalanced parentheses in smt2 input")
	}
	return sexpr{items: items}, i + 1, nil
}
