package driver

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/FuelLabs/sway-sub019/internal/astio"
	"github.com/FuelLabs/sway-sub019/internal/project"
)

// loadedTree is one interchange file read and unmarshalled, not yet
// materialized into the arenas.
type loadedTree struct {
	Path   string
	Tree   astio.Tree
	Digest project.Digest
}

// loadTrees reads and unmarshals the interchange files in parallel.
// Unmarshalling dominates input cost; arena materialization stays
// serial because the builder is single-writer. Results come back in
// sorted path order regardless of completion order.
func loadTrees(ctx context.Context, paths []string, jobs int) ([]loadedTree, error) {
	paths = append([]string(nil), paths...)
	sort.Strings(paths)

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]loadedTree, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			lt := loadedTree{Path: path, Digest: sha256.Sum256(data)}
			if err := json.Unmarshal(data, &lt.Tree); err != nil {
				return fmt.Errorf("%s: invalid interchange JSON: %w", path, err)
			}
			results[i] = lt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
