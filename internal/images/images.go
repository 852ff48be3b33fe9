// internal/images/images.go
//
// Image pool management for the board generator.
//
// Responsibilities:
//   - Load the pool from a configured file, or fall back to the embedded default list.
//   - Normalize entries (trim, skip blanks and # comments, drop duplicates).
//   - Expose the loaded pool and its size.
//
// Initialization behavior (Init):
//   1. If path is non-empty (IMAGES_FILE), read one image path per line from it.
//   2. Otherwise use assets.ImageList().
//
// Constraints:
//   • The pool must hold at least one image.
//   • Initialization is run once (sync.Once).

package images

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/pairs/assets"
)

var (
	initOnce   sync.Once
	pool       []string
	initialErr error
)

// Init loads the pool exactly once. Later calls return the first result.
func Init(path string) error {
	initOnce.Do(func() {
		pool, initialErr = Load(path)
	})
	return initialErr
}

// Load reads a pool from path, or the embedded default when path is empty.
func Load(path string) ([]string, error) {
	var (
		lines []string
		err   error
	)
	if path != "" {
		lines, err = readImageFile(path)
	} else {
		lines, err = assets.ImageList()
	}
	if err != nil {
		return nil, err
	}
	out := normalize(lines)
	if len(out) == 0 {
		return nil, errors.New("images: pool is empty")
	}
	return out, nil
}

// readImageFile loads one entry per line from a file.
func readImageFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize trims entries, skips blanks and comments, and drops duplicates.
func normalize(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	var out []string
	for _, l := range lines {
		s := strings.TrimSpace(l)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Pool returns a copy of the loaded pool.
func Pool() []string {
	return append([]string(nil), pool...)
}

// Stats returns the number of loaded images.
func Stats() int {
	return len(pool)
}
