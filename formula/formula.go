// Package formula parses the small model-formula grammar external
// callers use to declare a dependent variable, main effects, and
// interactions against a table's column names.
package formula

import (
	"fmt"
	"strings"

	"github.com/mlogit/mlogit/model"
)

// Parse parses a formula of the form "<dataset> <dependent> = <token>
// <token>...", where each token is a bare name (categorical main
// effect), "direct.name" (direct main effect), or "a*b*c" (an
// interaction, each component auto-registered as a main effect if not
// already declared). names resolves variable names against table
// column positions.
//
// An unknown variable name rejects the model with an error; the
// caller is expected to report it and move on rather than terminate
// the process.
func Parse(formula string, names []string) (*model.Descriptor, error) {
	parts := strings.SplitN(formula, "=", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("formula: missing '=' separator in %q", formula)
	}

	head := strings.Fields(parts[0])
	if len(head) < 2 {
		return nil, fmt.Errorf("formula: expected \"dataset dependent =\", got %q", parts[0])
	}
	depName := head[len(head)-1]
	dv, ok := indexOf(names, depName)
	if !ok {
		return nil, fmt.Errorf("formula: unknown dependent variable %q", depName)
	}

	tokens := strings.Fields(parts[1])
	if len(tokens) == 0 {
		return nil, fmt.Errorf("formula: no effect tokens in %q", formula)
	}

	desc := model.NewDescriptor(dv)
	for _, tok := range tokens {
		var err error
		if strings.Contains(tok, "*") {
			err = parseInteraction(desc, tok, names)
		} else {
			err = parseMainEffect(desc, tok, names)
		}
		if err != nil {
			return nil, err
		}
	}
	return desc, nil
}

func parseMainEffect(desc *model.Descriptor, tok string, names []string) error {
	direct, name := splitDirect(tok)
	idx, ok := indexOf(names, name)
	if !ok {
		return fmt.Errorf("formula: unknown variable %q", name)
	}
	desc.AddMainEffect(idx, direct)
	return nil
}

func parseInteraction(desc *model.Descriptor, tok string, names []string) error {
	for i, comp := range strings.Split(tok, "*") {
		direct, name := splitDirect(comp)
		idx, ok := indexOf(names, name)
		if !ok {
			return fmt.Errorf("formula: unknown variable %q", name)
		}
		if i == 0 {
			desc.NewInteraction(idx, direct)
			continue
		}
		if err := desc.AppendInteraction(idx, direct); err != nil {
			return err
		}
	}
	return nil
}

func splitDirect(tok string) (direct bool, name string) {
	if strings.HasPrefix(tok, "direct.") {
		return true, strings.TrimPrefix(tok, "direct.")
	}
	return false, tok
}

func indexOf(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}
