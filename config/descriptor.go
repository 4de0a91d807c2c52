package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/janus/pkg/classfile"
	"github.com/chazu/janus/pkg/proxygen"
)

// ProxySpec is the TOML description of one proxy class to generate: the
// class name, its access flags, and the contracts it implements.
//
//	class = "com.example.$ShapeProxy"
//	flags = ["public", "final"]
//
//	[[contract]]
//	name = "com.example.Shape"
//
//	[[contract.method]]
//	name = "area"
//	returns = "double"
type ProxySpec struct {
	Class     string         `toml:"class"`
	Flags     []string       `toml:"flags"`
	Contracts []contractSpec `toml:"contract"`
}

type contractSpec struct {
	Name    string       `toml:"name"`
	Methods []methodSpec `toml:"method"`
}

type methodSpec struct {
	Name    string   `toml:"name"`
	Params  []string `toml:"params"`
	Returns string   `toml:"returns"`
}

// LoadProxySpec reads a proxy descriptor file and resolves it into
// generation inputs.
func LoadProxySpec(path string) (name string, flags uint16, contracts []*proxygen.Contract, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var spec ProxySpec
	if err := toml.Unmarshal(data, &spec); err != nil {
		return "", 0, nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return spec.Resolve()
}

// Resolve turns the raw descriptor into generation inputs, parsing
// flag names and type names.
func (spec *ProxySpec) Resolve() (string, uint16, []*proxygen.Contract, error) {
	flags, err := parseFlags(spec.Flags)
	if err != nil {
		return "", 0, nil, err
	}
	var contracts []*proxygen.Contract
	for _, cs := range spec.Contracts {
		c := &proxygen.Contract{Name: cs.Name}
		for _, ms := range cs.Methods {
			ret, err := ParseKind(ms.Returns)
			if err != nil {
				return "", 0, nil, fmt.Errorf("method %s.%s: %w", cs.Name, ms.Name, err)
			}
			var params []classfile.Kind
			for _, p := range ms.Params {
				k, err := ParseKind(p)
				if err != nil {
					return "", 0, nil, fmt.Errorf("method %s.%s: %w", cs.Name, ms.Name, err)
				}
				params = append(params, k)
			}
			c.Methods = append(c.Methods, proxygen.Method{
				Name:      ms.Name,
				Declaring: cs.Name,
				Params:    params,
				Return:    ret,
			})
		}
		contracts = append(contracts, c)
	}
	return spec.Class, flags, contracts, nil
}

func parseFlags(names []string) (uint16, error) {
	var flags uint16
	for _, n := range names {
		switch n {
		case "public":
			flags |= classfile.AccPublic
		case "final":
			flags |= classfile.AccFinal
		default:
			return 0, fmt.Errorf("unknown class flag %q", n)
		}
	}
	if flags == 0 {
		flags = classfile.AccPublic
	}
	return flags, nil
}

// ParseKind resolves a Java type name as written in a descriptor file:
// a primitive keyword, "void", a dotted class name, or any of those
// with [] suffixes for arrays.
func ParseKind(name string) (classfile.Kind, error) {
	name = strings.TrimSpace(name)
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = name[:len(name)-2]
		dims++
	}
	var k classfile.Kind
	switch name {
	case "boolean":
		k = classfile.Boolean
	case "byte":
		k = classfile.Byte
	case "short":
		k = classfile.Short
	case "char":
		k = classfile.Char
	case "int":
		k = classfile.Int
	case "long":
		k = classfile.Long
	case "float":
		k = classfile.Float
	case "double":
		k = classfile.Double
	case "void", "":
		k = classfile.Void
	default:
		if strings.ContainsAny(name, ";/[") {
			return classfile.Kind{}, fmt.Errorf("illegal type name %q", name)
		}
		k = classfile.Object(name)
	}
	if dims > 0 && k.IsVoid() {
		return classfile.Kind{}, fmt.Errorf("illegal type name %q: array of void", name)
	}
	for ; dims > 0; dims-- {
		k = classfile.Array(k)
	}
	return k, nil
}
