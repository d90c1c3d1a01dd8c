package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNoMigrations         = errors.New("no_migrations")
	ErrInvalidMigrationName = errors.New("invalid_migration_name")
	ErrDuplicateMigration   = errors.New("duplicate_migration")
	ErrIncompleteMigration  = errors.New("incomplete_migration")
)

type direction string

const (
	directionUp   direction = "up"
	directionDown direction = "down"
)

type migrationFile struct {
	Version   uint
	Direction direction
	Name      string
}

// migrationSet is the validated content of a migrations directory. Every
// version ships exactly one up file and one down file.
type migrationSet struct {
	fsys  fs.FS
	files []migrationFile
}

func embeddedMigrationSet() (*migrationSet, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	return loadMigrationSet(sub)
}

func loadMigrationSet(fsys fs.FS) (*migrationSet, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	seen := map[uint]map[direction]string{}
	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		file, ok := parseMigrationName(entry.Name())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMigrationName, entry.Name())
		}
		if seen[file.Version] == nil {
			seen[file.Version] = map[direction]string{}
		}
		if prev, dup := seen[file.Version][file.Direction]; dup {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateMigration, prev, file.Name)
		}
		seen[file.Version][file.Direction] = file.Name
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, ErrNoMigrations
	}
	for version, dirs := range seen {
		for _, want := range []direction{directionUp, directionDown} {
			if _, ok := dirs[want]; !ok {
				return nil, fmt.Errorf("%w: version %d has no %s file", ErrIncompleteMigration, version, want)
			}
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Version != files[j].Version {
			return files[i].Version < files[j].Version
		}
		return files[i].Direction > files[j].Direction
	})
	return &migrationSet{fsys: fsys, files: files}, nil
}

// Latest returns the highest version in the set.
func (s *migrationSet) Latest() uint {
	return s.files[len(s.files)-1].Version
}

// Checksum hashes every up and down file in version order. Editing a shipped
// rollback changes the checksum the same way editing a forward step does.
func (s *migrationSet) Checksum() (string, error) {
	hasher := sha256.New()
	for _, file := range s.files {
		content, err := fs.ReadFile(s.fsys, file.Name)
		if err != nil {
			return "", fmt.Errorf("read migration %s: %w", file.Name, err)
		}
		fmt.Fprintf(hasher, "%d/%s\x00", file.Version, file.Direction)
		_, _ = hasher.Write(content)
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// parseMigrationName accepts <version>_<title>.<up|down>.sql.
func parseMigrationName(name string) (migrationFile, bool) {
	base, ok := strings.CutSuffix(name, ".sql")
	if !ok {
		return migrationFile{}, false
	}
	var dir direction
	switch {
	case strings.HasSuffix(base, ".up"):
		dir, base = directionUp, strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		dir, base = directionDown, strings.TrimSuffix(base, ".down")
	default:
		return migrationFile{}, false
	}

	prefix, title, found := strings.Cut(base, "_")
	if !found || prefix == "" || title == "" {
		return migrationFile{}, false
	}
	version, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil || version == 0 {
		return migrationFile{}, false
	}
	return migrationFile{Version: uint(version), Direction: dir, Name: name}, true
}
