package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under dir for a YYYYMMDDHHMMSS_name.sql
// filename, a unique version, and both goose Up and Down annotations with Up first.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := versions[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		if err := checkAnnotations(body); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return nil
}

func checkAnnotations(body []byte) error {
	upLine, downLine, line := 0, 0, 0
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line++
		switch strings.TrimSpace(scanner.Text()) {
		case "-- +goose Up":
			if upLine == 0 {
				upLine = line
			}
		case "-- +goose Down":
			if downLine == 0 {
				downLine = line
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	switch {
	case upLine == 0:
		return fmt.Errorf(`missing "-- +goose Up"`)
	case downLine == 0:
		return fmt.Errorf(`missing "-- +goose Down"`)
	case downLine < upLine:
		return fmt.Errorf(`"-- +goose Down" precedes "-- +goose Up"`)
	}
	return nil
}
