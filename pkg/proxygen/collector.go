package proxygen

import (
	"fmt"

	"github.com/chazu/janus/pkg/classfile"
)

// slot binds one collected method to its static ProxyMethod field. Slot
// order is first-seen order and drives both static-init and trampoline
// emission, so independently generated code agrees on field names.
type slot struct {
	field     string // "m0", "m1", ...
	method    Method
	universal bool
}

// universalMethods are the three java.lang.Object operations every
// generated class implements, permanently occupying slots 0 through 2.
func universalMethods() []Method {
	object := classfile.Object("java.lang.Object")
	return []Method{
		{Name: "equals", Declaring: "java.lang.Object", Params: []classfile.Kind{object}, Return: classfile.Boolean},
		{Name: "hashCode", Declaring: "java.lang.Object", Return: classfile.Int},
		{Name: "toString", Declaring: "java.lang.Object", Return: classfile.Object("java.lang.String")},
	}
}

// collectMethods validates the contracts and produces the ordered,
// signature-deduplicated slot table: the universal operations first,
// then each contract's methods in declaration order, skipping any
// signature already seen. An empty contract list is legal.
func collectMethods(contracts []*Contract) ([]slot, error) {
	var slots []slot
	seen := make(map[string]struct{})
	add := func(m Method, universal bool) {
		sig := m.Signature()
		if _, dup := seen[sig]; dup {
			return
		}
		seen[sig] = struct{}{}
		slots = append(slots, slot{
			field:     fmt.Sprintf("m%d", len(slots)),
			method:    m,
			universal: universal,
		})
	}

	for _, m := range universalMethods() {
		add(m, true)
	}
	for _, c := range contracts {
		if c == nil {
			return nil, fmt.Errorf("%w: nil contract", ErrInvalidContract)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		for _, m := range c.Methods {
			if m.Declaring == "" {
				m.Declaring = c.Name
			}
			add(m, false)
		}
	}
	return slots, nil
}
