package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/reelcut/reelcut/internal/timeline"
)

// ErrProjectNotFound is returned when a project id has no row.
var ErrProjectNotFound = errors.New("store: project not found")

// ProjectInfo is a listing row extracted from the stored document without
// decoding it fully.
type ProjectInfo struct {
	ID        string
	Name      string
	Duration  timeline.Millis
	Clips     int
	Effects   int
	UpdatedAt string
}

// SaveProject upserts the project's JSON document and indexed columns. A
// full write supersedes all journal rows written so far, so applied_seq
// advances past them.
func (s *Store) SaveProject(p *timeline.Project) error {
	doc, err := encodeProject(p)
	if err != nil {
		return err
	}

	_, err = s.conn.Exec(`
		INSERT INTO projects (id, name, duration_ms, doc, applied_seq, updated_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) FROM journal WHERE project_id = ?), datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			duration_ms = excluded.duration_ms,
			doc = excluded.doc,
			applied_seq = excluded.applied_seq,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, int64(p.Duration), string(doc), p.ID)
	if err != nil {
		return fmt.Errorf("store: save project %s: %w", p.ID, err)
	}
	if s.logger != nil {
		s.logger.Debug("saved project", "project", p.ID, "bytes", len(doc))
	}
	return nil
}

// LoadProject decodes the stored document back into a project. Journal rows
// the document has not absorbed yet are applied first, so a crash after an
// append but before a flush loses nothing.
func (s *Store) LoadProject(id string) (*timeline.Project, error) {
	if _, err := s.FlushJournal(id); err != nil {
		return nil, err
	}

	var doc string
	err := s.conn.QueryRow("SELECT doc FROM projects WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load project %s: %w", id, err)
	}
	return decodeProject([]byte(doc))
}

// ListProjects returns summary rows for every stored project, newest first.
// Clip and effect counts are read straight out of the JSON documents.
func (s *Store) ListProjects() ([]ProjectInfo, error) {
	rows, err := s.conn.Query("SELECT id, name, duration_ms, doc, updated_at FROM projects ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectInfo
	for rows.Next() {
		var (
			info     ProjectInfo
			duration int64
			doc      string
		)
		if err := rows.Scan(&info.ID, &info.Name, &duration, &doc, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan project row: %w", err)
		}
		info.Duration = timeline.Millis(duration)
		for _, n := range gjson.Get(doc, "tracks.#.clips.#").Array() {
			info.Clips += int(n.Int())
		}
		info.Effects = int(gjson.Get(doc, "effects.#").Int())
		out = append(out, info)
	}
	return out, rows.Err()
}

// RenameProject updates the project's name in place. The stored document is
// patched directly rather than decoded and re-encoded.
func (s *Store) RenameProject(id, name string) error {
	var doc string
	err := s.conn.QueryRow("SELECT doc FROM projects WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("store: rename project %s: %w", id, err)
	}

	patched, err := sjson.Set(doc, "name", name)
	if err != nil {
		return fmt.Errorf("store: rename project %s: %w", id, err)
	}
	_, err = s.conn.Exec(
		"UPDATE projects SET name = ?, doc = ?, updated_at = datetime('now') WHERE id = ?",
		name, patched, id)
	if err != nil {
		return fmt.Errorf("store: rename project %s: %w", id, err)
	}
	return nil
}

// DeleteProject removes the project and, via the schema's cascade, its
// journal rows.
func (s *Store) DeleteProject(id string) error {
	res, err := s.conn.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete project %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return nil
}
