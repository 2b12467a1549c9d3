package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	_ "github.com/marcboeker/go-duckdb"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Dir is the indexer output directory holding the parquet artifacts.
	Dir string
	// Validate checks that every required artifact exists before parsing any of them.
	Validate bool
}

// ValidateArtifacts checks that every artifact in required exists in dir. The
// returned *MissingArtifactError names all absent files, not just the first.
func ValidateArtifacts(dir string, required []string) error {
	missing := make([]string, 0)
	for _, name := range required {
		if !fileExists(filepath.Join(dir, FileName(name))) {
			missing = append(missing, FileName(name))
		}
	}
	if len(missing) > 0 {
		return &MissingArtifactError{Dir: dir, Missing: missing}
	}
	return nil
}

// Load reads the artifact directory into a Bundle. Required artifacts must all
// be present. Optional artifacts are read when their files exist and are left
// nil otherwise.
//
// Errors match ErrOutputDirNotFound, ErrMissingArtifact or ErrCorruptArtifact.
func Load(ctx context.Context, opts LoadOptions) (*Bundle, error) {
	dir := opts.Dir
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrOutputDirNotFound, dir)
	}

	if opts.Validate {
		if err := ValidateArtifacts(dir, RequiredArtifacts); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	r := &reader{db: db, dir: dir}
	b := &Bundle{Dir: dir}

	required := map[string]**Table{
		ArtifactEntities:         &b.Entities,
		ArtifactRelationships:    &b.Relationships,
		ArtifactCommunities:      &b.Communities,
		ArtifactCommunityReports: &b.CommunityReports,
		ArtifactTextUnits:        &b.TextUnits,
	}
	for _, name := range RequiredArtifacts {
		t, err := r.required(ctx, name)
		if err != nil {
			return nil, err
		}
		*required[name] = t
	}

	if b.Documents, err = r.optional(ctx, ArtifactDocuments); err != nil {
		return nil, err
	}
	if b.Covariates, err = r.optional(ctx, ArtifactCovariates); err != nil {
		return nil, err
	}

	logger.Debug("Loaded graph bundle", "dir", dir, "bundle", b.String())
	return b, nil
}

// ReadParquet loads a single parquet file into a Table.
func ReadParquet(ctx context.Context, path string) (*Table, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	return readParquet(ctx, db, path)
}

type reader struct {
	db  *sql.DB
	dir string
}

func (r *reader) required(ctx context.Context, name string) (*Table, error) {
	path := filepath.Join(r.dir, FileName(name))
	if !fileExists(path) {
		return nil, &MissingArtifactError{Dir: r.dir, Missing: []string{FileName(name)}}
	}
	return readParquet(ctx, r.db, path)
}

func (r *reader) optional(ctx context.Context, name string) (*Table, error) {
	path := filepath.Join(r.dir, FileName(name))
	if !fileExists(path) {
		return nil, nil
	}
	return readParquet(ctx, r.db, path)
}

func readParquet(ctx context.Context, db *sql.DB, path string) (*Table, error) {
	query := fmt.Sprintf("SELECT * FROM read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &CorruptArtifactError{Path: path, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &CorruptArtifactError{Path: path, Err: err}
	}

	t := &Table{Columns: columns, Rows: make([]Row, 0)}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &CorruptArtifactError{Path: path, Err: err}
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptArtifactError{Path: path, Err: err}
	}

	return t, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
