package presence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lobbychat/internal/app/db"
	"lobbychat/internal/pkg/logx"
)

const (
	insertSessionSQL = `
		INSERT INTO presence_sessions (connection_id, connected_at)
		VALUES ($1, $2)`

	loginSessionSQL = `
		UPDATE presence_sessions
		SET nickname = $2, gender = $3, pic = $4, logins = logins + 1, last_login_at = $5
		WHERE connection_id = $1`

	leaveSessionSQL = `
		UPDATE presence_sessions
		SET disconnected_at = $2
		WHERE connection_id = $1`
)

// Journal records one presence_sessions row per connection: when it attached, the
// identity it last declared, how many times it logged in, and when it left.
// Chat content is never stored.
type Journal struct {
	pool *pgxpool.Pool
}

// NewJournal returns a Journal writing through pool.
func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

// Name identifies the sink in logs.
func (j *Journal) Name() string { return "postgres" }

// Handle applies the event to the connection's session row.
func (j *Journal) Handle(ctx context.Context, event Event) error {
	switch event.Kind {
	case KindConnected:
		_, err := j.pool.Exec(ctx, insertSessionSQL, event.ConnectionID, event.At)
		if db.IsUniqueViolation(err) {
			logx.Warn("Session row already exists", "connection_id", event.ConnectionID)
			return nil
		}
		return wrapJournalErr("insert", err)

	case KindLogin:
		_, err := j.pool.Exec(ctx, loginSessionSQL,
			event.ConnectionID,
			event.Identity.Nickname,
			event.Identity.Gender,
			event.Identity.Pic,
			event.At,
		)
		return wrapJournalErr("login", err)

	case KindLeave:
		_, err := j.pool.Exec(ctx, leaveSessionSQL, event.ConnectionID, event.At)
		return wrapJournalErr("leave", err)

	default:
		return nil
	}
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	j.pool.Close()
	return nil
}

func wrapJournalErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("journal %s: %w", op, err)
}
