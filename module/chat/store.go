package chat

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	errs "conecta/tools/errs"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (conversation_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			type VARCHAR(10) NOT NULL DEFAULT 'text' CHECK (type IN ('text', 'image', 'video')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at)`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "migrate chat")
		}
	}
	return nil
}

// EnsureConversation returns the 1:1 conversation between the two
// users, creating it (with both participants) when absent.
func (s *Store) EnsureConversation(ctx context.Context, userA, userB int64) (conversationID int64, created bool, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT cp1.conversation_id
		 FROM conversation_participants cp1
		 JOIN conversation_participants cp2 ON cp1.conversation_id = cp2.conversation_id
		 WHERE cp1.user_id = $1 AND cp2.user_id = $2 AND cp1.user_id != cp2.user_id`,
		userA, userB,
	).Scan(&conversationID)
	if err == nil {
		return conversationID, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, errors.Wrap(err, "find conversation")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, false, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = tx.QueryRow(ctx,
		`INSERT INTO conversations DEFAULT VALUES RETURNING id`,
	).Scan(&conversationID); err != nil {
		return 0, false, errors.Wrap(err, "insert conversation")
	}
	if _, err = tx.Exec(ctx,
		`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2), ($1, $3)`,
		conversationID, userA, userB,
	); err != nil {
		return 0, false, errors.Wrap(err, "insert participants")
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, false, errors.Wrap(err, "commit")
	}
	return conversationID, true, nil
}

func (s *Store) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2`,
		conversationID, userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "participant check")
	}
	return true, nil
}

// AppendMessage durably inserts the message and bumps the
// conversation's last-active timestamp in one transaction. The
// returned row carries the commit timestamp.
func (s *Store) AppendMessage(ctx context.Context, conversationID, senderID int64, content, msgType string) (*Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	m := &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Type:           msgType,
	}
	if err = tx.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content, type)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		conversationID, senderID, content, msgType,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	if _, err = tx.Exec(ctx,
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		conversationID,
	); err != nil {
		return nil, errors.Wrap(err, "bump conversation")
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return m, nil
}

// ListConversations resolves each contact name with alias > profile
// name > email precedence.
func (s *Store) ListConversations(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT
			c.id,
			c.updated_at,
			COALESCE(uc.alias_name, u.name, u.email) AS contact_name,
			u.image_url,
			m.content,
			m.sender_id
		 FROM conversations c
		 JOIN conversation_participants cp ON c.id = cp.conversation_id AND cp.user_id = $1
		 JOIN conversation_participants cp2 ON c.id = cp2.conversation_id AND cp2.user_id != $1
		 JOIN users u ON cp2.user_id = u.id
		 LEFT JOIN user_contacts uc ON uc.user_id = $1 AND uc.contact_id = u.id
		 LEFT JOIN LATERAL (
			SELECT content, sender_id FROM messages
			WHERE conversation_id = c.id
			ORDER BY id DESC LIMIT 1
		 ) m ON true
		 ORDER BY c.updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	defer rows.Close()

	out := make([]ConversationSummary, 0)
	for rows.Next() {
		var (
			cs       ConversationSummary
			content  *string
			senderID *int64
		)
		if err := rows.Scan(&cs.ID, &cs.LastActive, &cs.ContactName, &cs.ContactImage, &content, &senderID); err != nil {
			return nil, errors.Wrap(err, "scan conversation")
		}
		switch {
		case content == nil:
			cs.LastMessageContent = "Nenhuma mensagem."
		case senderID != nil && *senderID == userID:
			cs.LastMessageContent = "Você: " + *content
		default:
			cs.LastMessageContent = *content
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// Contact returns the other participant's display data, alias first.
func (s *Store) Contact(ctx context.Context, conversationID, userID int64) (name string, imageURL *string, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(uc.alias_name, u.name, u.email), u.image_url
		 FROM conversation_participants cp
		 JOIN users u ON cp.user_id = u.id
		 LEFT JOIN user_contacts uc ON uc.user_id = $1 AND uc.contact_id = u.id
		 WHERE cp.conversation_id = $2 AND cp.user_id != $1`,
		userID, conversationID,
	).Scan(&name, &imageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, errs.ErrRecordMiss
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "load contact")
	}
	return name, imageURL, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, sender_id, content, type, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Type, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		m.IsRead = true // history is delivered-and-read by definition
		out = append(out, m)
	}
	return out, rows.Err()
}
