package checker

import (
	stderrors "errors"

	"github.com/turtacn/ChemCheck/internal/domain/chem"
	"github.com/turtacn/ChemCheck/internal/domain/mhchem"
	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// twoSided is implemented by both equation kinds.
type twoSided interface {
	Left() *chem.Expression
	Right() *chem.Expression
	Arrow() chem.Arrow
}

func kindOf(k chem.Kind) types.StatementKind {
	switch k {
	case chem.KindEquation:
		return types.KindEquation
	case chem.KindNuclearEquation:
		return types.KindNuclearEquation
	default:
		return types.KindExpression
	}
}

// StatementView renders a parse result for the API.
func StatementView(input string, res *mhchem.Result) *types.StatementView {
	st := res.Statement
	v := &types.StatementView{
		Kind:          kindOf(st.Kind()),
		Input:         input,
		Normalized:    res.Normalized,
		Rendered:      st.String(),
		ContainsError: st.ContainsError(),
	}
	for _, is := range res.Issues {
		v.Issues = append(v.Issues, types.ParseIssue(is))
	}

	switch s := st.(type) {
	case *chem.ExpressionStatement:
		v.Expression = sideView(s.Expr, false)
	case *chem.EquationStatement:
		fillSides(v, s, false)
		atoms, charge := s.IsBalancedAtoms(), s.IsBalancedCharge()
		v.Balance = &types.BalanceFlags{
			Balanced: atoms && charge,
			Atoms:    &atoms,
			Charge:   &charge,
		}
	case *chem.NuclearEquationStatement:
		fillSides(v, s, true)
		mass, atomic, valid := s.IsBalancedMass(), s.IsBalancedAtomicNumber(), s.IsValid()
		v.Balance = &types.BalanceFlags{
			Balanced:           mass && atomic,
			MassNumber:         &mass,
			AtomicNumber:       &atomic,
			ValidAtomicNumbers: &valid,
		}
	}
	return v
}

func fillSides(v *types.StatementView, s twoSided, nuclear bool) {
	v.Arrow = s.Arrow().String()
	v.Left = sideView(s.Left(), nuclear)
	v.Right = sideView(s.Right(), nuclear)
}

func sideView(e *chem.Expression, nuclear bool) *types.SideView {
	v := &types.SideView{
		Text:   e.String(),
		Terms:  make([]types.TermView, 0, e.Len()),
		Charge: e.Charge().String(),
		Atoms:  atomsView(e.AtomCount()),
	}
	for _, t := range e.Terms() {
		v.Terms = append(v.Terms, termView(t))
	}
	if nuclear && !e.ContainsError() {
		if m, err := e.MassNumber(); err == nil {
			v.MassNumber = &m
		}
		if z, err := e.AtomicNumber(); err == nil {
			v.AtomicNumber = &z
		}
	}
	return v
}

func termView(t *chem.Term) types.TermView {
	if t.IsError() {
		return types.TermView{Text: t.Raw(), Error: true}
	}
	return types.TermView{
		Text:        t.String(),
		Coefficient: t.Coefficient,
		Species:     t.Species.String(),
		State:       t.State.String(),
		Charge:      t.Charge().String(),
		Atoms:       atomsView(t.AtomCount()),
	}
}

func atomsView(a chem.AtomCount) map[string]string {
	out := make(map[string]string, len(a))
	for _, sym := range a.Symbols() {
		out[sym] = a.Get(sym).String()
	}
	return out
}

func renderTerms(terms []*chem.Term) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.String()
	}
	return out
}

// errorDetail flattens err for batch items and event payloads.
func errorDetail(err error) *common.ErrorDetail {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		d := &common.ErrorDetail{Code: appErr.Code.String(), Message: appErr.Message}
		if appErr.Detail != "" {
			d.Details = map[string]interface{}{"detail": appErr.Detail}
		}
		return d
	}
	return &common.ErrorDetail{Code: errors.ErrCodeInternal.String(), Message: err.Error()}
}
