package proxygen

import (
	"fmt"
	"strings"

	"github.com/chazu/janus/pkg/classfile"
)

// Method is one abstract operation of a contract: its name, the binary
// name of the declaring interface, and its parameter and return kinds.
// Methods are immutable once collected.
type Method struct {
	Name      string
	Declaring string // binary name, e.g. "com.example.Shape"
	Params    []classfile.Kind
	Return    classfile.Kind
}

// Descriptor returns the JVM method descriptor of m.
func (m *Method) Descriptor() string {
	return classfile.MethodDescriptor(m.Params, m.Return)
}

// Signature returns the name+descriptor key used for deduplication: two
// methods with equal signatures share one slot regardless of declaring
// contract.
func (m *Method) Signature() string {
	return m.Name + m.Descriptor()
}

func (m *Method) validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: method with empty name in %s", ErrInvalidContract, m.Declaring)
	}
	if strings.ContainsAny(m.Name, ".;/[<>") {
		return fmt.Errorf("%w: illegal method name %q", ErrInvalidContract, m.Name)
	}
	for i, p := range m.Params {
		if p.IsVoid() {
			return fmt.Errorf("%w: void parameter %d of %s.%s", ErrInvalidContract, i, m.Declaring, m.Name)
		}
	}
	return nil
}

// Contract is one abstract behavioral surface the generated class must
// implement: a fully qualified interface name and its operations.
type Contract struct {
	Name    string // binary name
	Methods []Method
}

// InternalName returns the contract's slash-separated name.
func (c *Contract) InternalName() string {
	return strings.ReplaceAll(c.Name, ".", "/")
}

func (c *Contract) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: contract with empty name", ErrInvalidContract)
	}
	if strings.ContainsAny(c.Name, ";/[") {
		return fmt.Errorf("%w: illegal contract name %q", ErrInvalidContract, c.Name)
	}
	for i := range c.Methods {
		if err := c.Methods[i].validate(); err != nil {
			return err
		}
	}
	return nil
}
