package shader

import (
	"fmt"
	"path/filepath"
)

// DumpWriter receives dumped shader artifacts. The name passed to
// WriteFile includes any path prefix given to Dump.
type DumpWriter interface {
	WriteFile(name string, data []byte) error
}

// Dump writes the raw microcode and, when available, its disassembly:
// <base>/<prefix>.<vs|ps>.<hash>.bin and .txt. The returned paths name
// what was written; txtPath is empty when there was no disassembly.
func (s *Shader) Dump(w DumpWriter, base, prefix string) (binPath, txtPath string, err error) {
	stem := filepath.Join(base, fmt.Sprintf("%s.%s.%016x", prefix, s.shaderType, s.ucodeHash))
	binPath = stem + ".bin"
	if err := w.WriteFile(binPath, dwordBytes(s.ucodeData)); err != nil {
		return "", "", err
	}
	if s.ucodeDisassembly == "" {
		return binPath, "", nil
	}
	txtPath = stem + ".txt"
	if err := w.WriteFile(txtPath, []byte(s.ucodeDisassembly)); err != nil {
		return binPath, "", err
	}
	return binPath, txtPath, nil
}
