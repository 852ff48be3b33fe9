// assets/embed.go
//
// Embedded defaults: the image pool and the cue -> sound path map.
// Both are opaque identifiers handed to the client untouched.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed images.txt sounds.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ImageList returns the embedded default image pool.
func ImageList() ([]string, error) {
	return readLines("images.txt")
}

// SoundMap returns the embedded cue name -> sound path map ("cue=path" lines).
func SoundMap() (map[string]string, error) {
	lines, err := readLines("sounds.txt")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(lines))
	for _, l := range lines {
		k, v, ok := strings.Cut(l, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
