package proxygen

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"

	"github.com/chazu/janus/pkg/classfile"
)

// ContractsFromProto derives one contract per service defined in a
// .proto file, matching the shape of the Java interfaces protoc
// generates: the contract is named <java package>.<Service>, and each
// rpc becomes a unary operation taking its request message and
// returning its response message. Streaming rpcs are rejected; a proxy
// forwards single calls, not streams.
func ContractsFromProto(filename string, importPaths ...string) ([]*Contract, error) {
	parser := protoparse.Parser{
		ImportPaths:           importPaths,
		IncludeSourceCodeInfo: false,
	}
	files, err := parser.ParseFiles(filename)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	var contracts []*Contract
	for _, fd := range files {
		pkg := javaPackage(fd)
		for _, svc := range fd.GetServices() {
			c := &Contract{Name: pkg + "." + svc.GetName()}
			for _, mtd := range svc.GetMethods() {
				if mtd.IsClientStreaming() || mtd.IsServerStreaming() {
					return nil, fmt.Errorf("%w: streaming rpc %s.%s", ErrInvalidContract, svc.GetName(), mtd.GetName())
				}
				c.Methods = append(c.Methods, Method{
					Name:      lowerFirst(mtd.GetName()),
					Declaring: c.Name,
					Params:    []classfile.Kind{messageKind(pkg, mtd.GetInputType())},
					Return:    messageKind(pkg, mtd.GetOutputType()),
				})
			}
			contracts = append(contracts, c)
		}
	}
	if len(contracts) == 0 {
		return nil, fmt.Errorf("%w: no services in %s", ErrInvalidContract, filename)
	}
	return contracts, nil
}

// javaPackage resolves the Java package of a file: the java_package
// option when set, the proto package otherwise.
func javaPackage(fd *desc.FileDescriptor) string {
	if opts := fd.GetFileOptions(); opts != nil && opts.GetJavaPackage() != "" {
		return opts.GetJavaPackage()
	}
	return fd.GetPackage()
}

func messageKind(pkg string, md *desc.MessageDescriptor) classfile.Kind {
	return classfile.Object(pkg + "." + md.GetName())
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
