package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	fileName  = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Validate checks every .sql file in fsys: a YYYYMMDDHHMMSS_snake_name.sql
// filename, a unique version, and both goose Up and Down sections.
func Validate(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return err
	}
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		m := fileName.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("%s: want YYYYMMDDHHMMSS_name.sql", name)
		}
		if other, dup := byVersion[m[1]]; dup {
			return fmt.Errorf("%s: version %s already used by %s", name, m[1], other)
		}
		byVersion[m[1]] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), marker) {
				return fmt.Errorf("%s: missing %q", name, marker)
			}
		}
	}
	return nil
}

// Scaffold writes an empty goose migration named after name into dir and
// returns its path.
func Scaffold(dir, name string, now time.Time) (string, error) {
	slug := strings.Trim(nonWordRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	file := filepath.Join(dir, now.UTC().Format("20060102150405")+"_"+slug+".sql")
	body := "-- +goose Up\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n\n" +
		"-- +goose Down\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n"

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return "", err
	}
	return file, f.Close()
}
