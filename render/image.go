package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrGraphvizMissing is returned by Image when the `dot` binary cannot be
// found on PATH, mirroring the teacher's "Graphviz is missing!" check
// before shelling out.
var ErrGraphvizMissing = errors.New("render: graphviz dot binary not found on PATH")

// Image writes body (Graphviz DOT text) to dotPath, then shells out to
// `dot -Tpng` to rasterize it to dotPath with a ".png" suffix, returning
// the PNG path. Grounded on the pack's ExecGraphviz pattern: look up the
// binary first and fail fast with a typed error rather than let
// exec.Command surface a bare "file not found".
func Image(ctx context.Context, body string, dotPath string) (string, error) {
	path, err := exec.LookPath("dot")
	if err != nil {
		return "", ErrGraphvizMissing
	}

	if err := os.WriteFile(dotPath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("render: writing dot file: %w", err)
	}

	pngPath := dotPath + ".png"
	cmd := exec.CommandContext(ctx, path, "-Tpng", "-o"+pngPath, dotPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("render: dot failed: %w: %s", err, out)
	}
	return pngPath, nil
}
