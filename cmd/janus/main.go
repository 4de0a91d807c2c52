// Janus CLI - generates JVM proxy class files from contract descriptors.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/janus/config"
	"github.com/chazu/janus/pkg/classfile"
	"github.com/chazu/janus/pkg/proxycache"
	"github.com/chazu/janus/pkg/proxygen"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	output := flag.String("o", "", "Output .class file (defaults to <ClassName>.class)")
	className := flag.String("name", "", "Generated class name (overrides the descriptor's)")
	disasm := flag.Bool("disasm", false, "Print a disassembly of the generated class")
	dumpDir := flag.String("dump", "", "Also dump the artifact under this directory")
	storePath := flag.String("store", "", "SQLite artifact store path")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: janus [options] <descriptor.toml | service.proto>\n\n")
		fmt.Fprintf(os.Stderr, "Generates a JVM proxy class implementing the described contracts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  janus shape.toml                     # Generate com/example/$ShapeProxy.class\n")
		fmt.Fprintf(os.Stderr, "  janus -disasm shape.toml             # Generate and print a listing\n")
		fmt.Fprintf(os.Stderr, "  janus -name com.example.P svc.proto  # Proxy the services of a .proto file\n")
		fmt.Fprintf(os.Stderr, "  janus -store artifacts.db shape.toml # Cache the artifact in SQLite\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	name, flags, contracts, err := loadInput(input, *className)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// janus.toml supplies defaults the flags can override.
	cfg, err := config.FindAndLoad(filepath.Dir(input))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	dump := *dumpDir
	store := *storePath
	if cfg != nil {
		if dump == "" {
			dump = cfg.DumpDir()
		}
		if store == "" {
			store = cfg.StorePath()
		}
	}
	if dump == "" {
		dump = proxygen.DumpDir()
	}

	factory := proxycache.NewFactory()
	factory.SetDumpDir(dump)
	if store != "" {
		s, err := proxycache.OpenStore(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		factory.SetStore(s)
	}

	data, err := factory.Artifact(name, flags, contracts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := *output
	if out == "" {
		parts := strings.Split(name, ".")
		out = parts[len(parts)-1] + ".class"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("Generated %s (%d bytes) -> %s\n", name, len(data), out)
	}

	if *disasm {
		pc, err := classfile.Parse(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(pc.Disassemble())
	}
}

// loadInput resolves a descriptor file into generation inputs. TOML
// descriptors carry their own class name and flags; .proto inputs need
// -name and default to a public final class.
func loadInput(path, nameOverride string) (string, uint16, []*proxygen.Contract, error) {
	switch filepath.Ext(path) {
	case ".toml":
		name, flags, contracts, err := config.LoadProxySpec(path)
		if err != nil {
			return "", 0, nil, err
		}
		if nameOverride != "" {
			name = nameOverride
		}
		if name == "" {
			return "", 0, nil, fmt.Errorf("%s names no class and -name was not given", path)
		}
		return name, flags, contracts, nil
	case ".proto":
		if nameOverride == "" {
			return "", 0, nil, fmt.Errorf("-name is required with a .proto input")
		}
		contracts, err := proxygen.ContractsFromProto(filepath.Base(path), filepath.Dir(path))
		if err != nil {
			return "", 0, nil, err
		}
		return nameOverride, classfile.AccPublic | classfile.AccFinal, contracts, nil
	default:
		return "", 0, nil, fmt.Errorf("unsupported input %s: want .toml or .proto", path)
	}
}
