package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/reelcut/reelcut/internal/patch"
)

// The journal is a write-ahead record of committed patches. Each committed
// command appends its forward patch as one row; the project row's
// applied_seq marks how far the stored document has caught up. FlushJournal
// folds pending rows into the document, so a crash between appends loses
// nothing: the next load replays whatever the document is missing.

// JournalEntry is one committed command recorded against a project.
type JournalEntry struct {
	Seq       int64
	ProjectID string
	Command   string
	Patch     string
	At        string
}

// AppendJournal records a committed command's forward patch and returns its
// sequence number. The project row must exist; the session writes the full
// document before the first append.
func (s *Store) AppendJournal(projectID, command string, forward patch.Set) (int64, error) {
	raw, err := encodePatch(forward)
	if err != nil {
		return 0, fmt.Errorf("store: encode patch for %s: %w", projectID, err)
	}
	res, err := s.conn.Exec(
		"INSERT INTO journal (project_id, command, patch) VALUES (?, ?, ?)",
		projectID, command, string(raw))
	if err != nil {
		return 0, fmt.Errorf("store: append journal for %s: %w", projectID, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: append journal for %s: %w", projectID, err)
	}
	return seq, nil
}

// FlushJournal applies every journal row past the project's applied_seq to
// the stored document and advances applied_seq. Returns the number of rows
// applied.
func (s *Store) FlushJournal(projectID string) (int, error) {
	var (
		doc     string
		applied int64
	)
	err := s.conn.QueryRow(
		"SELECT doc, applied_seq FROM projects WHERE id = ?", projectID).Scan(&doc, &applied)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return 0, fmt.Errorf("store: flush journal for %s: %w", projectID, err)
	}

	pending, err := s.pendingRows(projectID, applied)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	last := applied
	for _, row := range pending {
		doc, err = applyPatch(doc, row.Patch)
		if err != nil {
			return 0, fmt.Errorf("store: apply journal seq %d for %s: %w", row.Seq, projectID, err)
		}
		last = row.Seq
	}

	_, err = s.conn.Exec(`
		UPDATE projects
		SET doc = ?, name = ?, duration_ms = ?, applied_seq = ?, updated_at = datetime('now')
		WHERE id = ?`,
		doc, gjson.Get(doc, "name").String(), gjson.Get(doc, "duration").Int(), last, projectID)
	if err != nil {
		return 0, fmt.Errorf("store: flush journal for %s: %w", projectID, err)
	}
	if s.logger != nil {
		s.logger.Debug("flushed journal", "project", projectID, "applied", len(pending), "seq", last)
	}
	return len(pending), nil
}

// pendingRows reads rows past applied fully before returning, so the single
// connection is free for the update that follows.
func (s *Store) pendingRows(projectID string, applied int64) ([]JournalEntry, error) {
	rows, err := s.conn.Query(
		"SELECT seq, patch FROM journal WHERE project_id = ? AND seq > ? ORDER BY seq",
		projectID, applied)
	if err != nil {
		return nil, fmt.Errorf("store: read journal for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Seq, &e.Patch); err != nil {
			return nil, fmt.Errorf("store: scan journal row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Journal returns the most recent entries for a project, newest first.
// A non-positive limit returns everything.
func (s *Store) Journal(projectID string, limit int) ([]JournalEntry, error) {
	q := "SELECT seq, project_id, command, patch, at FROM journal WHERE project_id = ? ORDER BY seq DESC"
	args := []any{projectID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: read journal for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Seq, &e.ProjectID, &e.Command, &e.Patch, &e.At); err != nil {
			return nil, fmt.Errorf("store: scan journal row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneJournal keeps only the newest keep applied entries for a project.
// Rows the document has not absorbed yet are never pruned.
func (s *Store) PruneJournal(projectID string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.conn.Exec(`
		DELETE FROM journal WHERE project_id = ?
		AND seq <= (SELECT applied_seq FROM projects WHERE id = ?)
		AND seq NOT IN (
			SELECT seq FROM journal WHERE project_id = ?
			AND seq <= (SELECT applied_seq FROM projects WHERE id = ?)
			ORDER BY seq DESC LIMIT ?
		)`, projectID, projectID, projectID, projectID, keep)
	if err != nil {
		return fmt.Errorf("store: prune journal for %s: %w", projectID, err)
	}
	return nil
}
