package cmd

import (
	"fmt"
	"strings"

	"github.com/ABC-KANG/abc-res-link/lib/fsext"
)

// expandArgs implements spec §6's "Arguments beginning with @ are
// arg-files (one whitespace-separated argument per token)" rule: it
// walks argv once and splices in the contents of every @path token
// before cobra ever sees the vector, so -R and every other flag's value
// can transparently come from a response file.
func expandArgs(fs fsext.Fs, argv []string) ([]string, error) {
	out := make([]string, 0, len(argv))
	for _, a := range argv {
		if !strings.HasPrefix(a, "@") {
			out = append(out, a)
			continue
		}
		tokens, err := readArgFile(fs, a[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, tokens...)
	}
	return out, nil
}

func readArgFile(fs fsext.Fs, path string) ([]string, error) {
	b, err := fsext.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading arg-file %q: %w", path, err)
	}
	return strings.Fields(string(b)), nil
}
