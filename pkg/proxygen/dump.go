package proxygen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var dumpLog = commonlog.GetLogger("janus.dump")

// DumpDirEnv names the environment variable that, when set, enables
// writing every generated artifact under the named directory for
// offline inspection.
const DumpDirEnv = "JANUS_DUMP_DIR"

// Dump writes a generated artifact under dir as <name>.class, creating
// package subdirectories from the dotted class name. Dumping is a
// diagnostic side channel: failures are logged and swallowed, and the
// artifact bytes are never altered.
func Dump(dir, name string, data []byte) {
	if dir == "" {
		return
	}
	path := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		dumpLog.Errorf("cannot create dump directory for %s: %s", name, err.Error())
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		dumpLog.Errorf("cannot dump %s: %s", name, err.Error())
		return
	}
	dumpLog.Infof("dumped %s (%d bytes) to %s", name, len(data), path)
}

// DumpDir resolves the dump directory from the environment; empty means
// dumping is disabled.
func DumpDir() string {
	return os.Getenv(DumpDirEnv)
}
