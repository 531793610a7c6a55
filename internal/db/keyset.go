package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/technopolitica/loadouts/internal/paging"
)

// withKeyset binds the arguments of the strict (created_at, id) < cursor
// predicate shared by every keyset query, and the limit+1 probe size. A
// cursor that does not name a real instant and uuid is ignored so the page
// starts from the top.
func (repo Repository) withKeyset(args pgx.NamedArgs, cursor *paging.Cursor, limit int) pgx.NamedArgs {
	args["limit"] = limit + 1
	args["has_cursor"] = false
	args["cursor_created_at"] = nil
	args["cursor_id"] = nil
	if cursor == nil {
		return args
	}
	createdAt, ok := cursor.Time()
	if !ok {
		repo.log.WithField("cursor_created_at", cursor.CreatedAt).Debug("ignoring cursor with unparseable timestamp")
		return args
	}
	tiebreakID, err := uuid.Parse(cursor.TiebreakID)
	if err != nil {
		repo.log.WithField("cursor_id", cursor.TiebreakID).Debug("ignoring cursor with malformed id")
		return args
	}
	args["has_cursor"] = true
	args["cursor_created_at"] = createdAt
	args["cursor_id"] = tiebreakID.String()
	return args
}
