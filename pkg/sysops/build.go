package sysops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Builder clones and compiles autoconf-style projects from source. Used
// for the CAVA spectrum visualizer, which ships no armhf package.
type Builder struct {
	r *Runner
}

// NewBuilder creates a builder on the given runner.
func NewBuilder(r *Runner) *Builder {
	return &Builder{r: r}
}

// CloneOrUpdate clones repo into dir, or fast-forwards an existing clone.
func (b *Builder) CloneOrUpdate(ctx context.Context, repo, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		if err := b.r.RunIn(ctx, dir, "git", "pull", "--ff-only"); err != nil {
			return fmt.Errorf("failed to update %s: %w", dir, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return err
	}
	if err := b.r.Run(ctx, "git", "clone", repo, dir); err != nil {
		return fmt.Errorf("failed to clone %s: %w", repo, err)
	}
	return nil
}

// Autotools runs the bootstrap -> configure -> compile -> install
// sequence in dir.
func (b *Builder) Autotools(ctx context.Context, dir string) error {
	steps := [][]string{
		{"./autogen.sh"},
		{"./configure"},
		{"make", "-j" + strconv.Itoa(runtime.NumCPU())},
		{"make", "install"},
	}
	for _, s := range steps {
		if err := b.r.RunIn(ctx, dir, s[0], s[1:]...); err != nil {
			return fmt.Errorf("build step %s failed in %s: %w", s[0], dir, err)
		}
	}
	return nil
}
