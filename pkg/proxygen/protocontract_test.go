package proxygen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const shapeProto = `syntax = "proto3";

package shapes;

option java_package = "com.example.shapes";

message AreaRequest {
  string id = 1;
}

message AreaReply {
  double value = 1;
}

service ShapeService {
  rpc ComputeArea(AreaRequest) returns (AreaReply);
}
`

func writeProto(t *testing.T, name, content string) (dir, file string) {
	t.Helper()
	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return dir, name
}

func TestContractsFromProto(t *testing.T) {
	dir, file := writeProto(t, "shapes.proto", shapeProto)
	contracts, err := ContractsFromProto(file, dir)
	if err != nil {
		t.Fatalf("ContractsFromProto: %v", err)
	}
	if len(contracts) != 1 {
		t.Fatalf("got %d contracts, want 1", len(contracts))
	}
	c := contracts[0]
	if c.Name != "com.example.shapes.ShapeService" {
		t.Errorf("contract name = %q", c.Name)
	}
	if len(c.Methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(c.Methods))
	}
	m := c.Methods[0]
	if m.Name != "computeArea" {
		t.Errorf("method name = %q, want computeArea", m.Name)
	}
	if got := m.Descriptor(); got != "(Lcom/example/shapes/AreaRequest;)Lcom/example/shapes/AreaReply;" {
		t.Errorf("descriptor = %q", got)
	}
}

func TestContractsFromProtoFallsBackToProtoPackage(t *testing.T) {
	dir, file := writeProto(t, "plain.proto", `syntax = "proto3";
package plain;
message Empty {}
service Plain {
  rpc Ping(Empty) returns (Empty);
}
`)
	contracts, err := ContractsFromProto(file, dir)
	if err != nil {
		t.Fatalf("ContractsFromProto: %v", err)
	}
	if contracts[0].Name != "plain.Plain" {
		t.Errorf("contract name = %q, want plain.Plain", contracts[0].Name)
	}
}

func TestContractsFromProtoRejectsStreaming(t *testing.T) {
	dir, file := writeProto(t, "stream.proto", `syntax = "proto3";
package stream;
message Msg {}
service Streamer {
  rpc Watch(Msg) returns (stream Msg);
}
`)
	_, err := ContractsFromProto(file, dir)
	if !errors.Is(err, ErrInvalidContract) {
		t.Errorf("err = %v, want ErrInvalidContract", err)
	}
}

func TestContractsFromProtoRejectsServicelessFile(t *testing.T) {
	dir, file := writeProto(t, "empty.proto", `syntax = "proto3";
package empty;
message Nothing {}
`)
	_, err := ContractsFromProto(file, dir)
	if !errors.Is(err, ErrInvalidContract) {
		t.Errorf("err = %v, want ErrInvalidContract", err)
	}
}

func TestProtoContractsGenerate(t *testing.T) {
	dir, file := writeProto(t, "shapes.proto", shapeProto)
	contracts, err := ContractsFromProto(file, dir)
	if err != nil {
		t.Fatalf("ContractsFromProto: %v", err)
	}
	pc := generateAndParse(t, "com.example.shapes.$ShapeProxy", contracts)
	if pc.Method("computeArea", "") == nil {
		t.Error("computeArea trampoline missing")
	}
	if pc.Method("doComputeArea", "") == nil {
		t.Error("doComputeArea invoker missing")
	}
}
