// Package pgstore implémente le contrat de persistance du moteur sur
// PostgreSQL via pgx. L'isolation par utilisateur repose sur un verrou de
// ligne (SELECT ... FOR UPDATE) et la déduplication des engagements sur
// INSERT ... ON CONFLICT DO NOTHING.
package pgstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

// Store est un engine.Store adossé à un pool pgx
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx exécute fn dans une transaction PostgreSQL. Les conflits de
// sérialisation et les deadlocks sont traduits en ErrTxConflict pour que le
// coordinateur rejoue l'unité de travail entière.
func (s *Store) WithinTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return &engine.StorageError{Op: "begin", Err: err}
	}
	defer pgtx.Rollback(ctx)

	if err := fn(&tx{tx: pgtx}); err != nil {
		return translate("tx", err)
	}
	if err := pgtx.Commit(ctx); err != nil {
		return translate("commit", err)
	}
	return nil
}

// translate mappe les erreurs pgx vers la taxonomie du moteur
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrUserNotFound) ||
		errors.Is(err, engine.ErrContentNotFound) ||
		errors.Is(err, engine.ErrSkillNotFound) ||
		errors.Is(err, engine.ErrTxConflict) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return engine.ErrTxConflict
		}
	}
	return &engine.StorageError{Op: op, Err: err}
}

// invalidUUID détecte un identifiant qui ne peut correspondre à aucune ligne
// (22P02 : invalid_text_representation sur une colonne uuid)
func invalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

type tx struct {
	tx pgx.Tx
}

func (t *tx) UserForUpdate(ctx context.Context, userID string) (*engine.UserBalance, error) {
	u := engine.UserBalance{ID: userID}
	err := t.tx.QueryRow(ctx,
		`SELECT xp, level FROM users WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`,
		userID,
	).Scan(&u.Xp, &u.Level)
	if errors.Is(err, pgx.ErrNoRows) || invalidUUID(err) {
		return nil, engine.ErrUserNotFound
	}
	if err != nil {
		return nil, translate("user_for_update", err)
	}
	return &u, nil
}

func (t *tx) SetUserXp(ctx context.Context, userID string, xp, level int) error {
	res, err := t.tx.Exec(ctx,
		`UPDATE users SET xp=$2, level=$3, updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`,
		userID, xp, level,
	)
	if err != nil {
		return translate("set_user_xp", err)
	}
	if res.RowsAffected() == 0 {
		return engine.ErrUserNotFound
	}
	return nil
}

func (t *tx) AppendXpTransaction(ctx context.Context, entry *model.XpTransaction) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO xp_transactions(id, user_id, amount, reason, source_type, source_id, old_total, new_total, level_up, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ID, entry.UserID, entry.Amount, entry.Reason, entry.SourceType,
		entry.SourceID, entry.OldTotal, entry.NewTotal, entry.LevelUp, entry.CreatedAt,
	)
	return translate("append_xp_transaction", err)
}

func (t *tx) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND deleted_at IS NULL)`,
		userID,
	).Scan(&exists)
	if invalidUUID(err) {
		return false, nil
	}
	if err != nil {
		return false, translate("user_exists", err)
	}
	return exists, nil
}

func (t *tx) ContentAuthor(ctx context.Context, entityType model.EntityType, entityID string) (string, error) {
	var query string
	switch entityType {
	case model.EntityTypeProject:
		query = `SELECT owner_id::text FROM projects WHERE id=$1 AND deleted_at IS NULL`
	case model.EntityTypeIdea:
		query = `SELECT owner_id::text FROM ideas WHERE id=$1 AND deleted_at IS NULL`
	case model.EntityTypeChallenge:
		query = `SELECT COALESCE(created_by::text, '') FROM challenges WHERE id=$1 AND deleted_at IS NULL`
	case model.EntityTypeComment:
		query = `SELECT author_id::text FROM comments WHERE id=$1`
	default:
		return "", engine.ErrContentNotFound
	}

	var author string
	err := t.tx.QueryRow(ctx, query, entityID).Scan(&author)
	if errors.Is(err, pgx.ErrNoRows) || invalidUUID(err) {
		return "", engine.ErrContentNotFound
	}
	if err != nil {
		return "", translate("content_author", err)
	}
	return author, nil
}

func (t *tx) InsertLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) (bool, error) {
	res, err := t.tx.Exec(ctx,
		`INSERT INTO likes (user_id, entity_type, entity_id, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, entity_type, entity_id) DO NOTHING`,
		userID, entityType, entityID,
	)
	if err != nil {
		return false, translate("insert_like", err)
	}
	return res.RowsAffected() > 0, nil
}

func (t *tx) DeleteLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM likes WHERE user_id=$1 AND entity_type=$2 AND entity_id=$3`,
		userID, entityType, entityID,
	)
	return translate("delete_like", err)
}

func (t *tx) InsertReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) (bool, error) {
	res, err := t.tx.Exec(ctx,
		`INSERT INTO reactions (user_id, entity_type, entity_id, reaction_type, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, entity_type, entity_id, reaction_type) DO NOTHING`,
		userID, entityType, entityID, reaction,
	)
	if err != nil {
		return false, translate("insert_reaction", err)
	}
	return res.RowsAffected() > 0, nil
}

func (t *tx) DeleteReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM reactions WHERE user_id=$1 AND entity_type=$2 AND entity_id=$3 AND reaction_type=$4`,
		userID, entityType, entityID, reaction,
	)
	return translate("delete_reaction", err)
}

func (t *tx) InsertComment(ctx context.Context, comment *model.Comment) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO comments(id, entity_type, entity_id, author_id, body, created_at)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		comment.ID, comment.EntityType, comment.EntityID, comment.AuthorID, comment.Body, comment.CreatedAt,
	)
	return translate("insert_comment", err)
}

func (t *tx) InsertFollow(ctx context.Context, followerID, followedID string) (bool, error) {
	res, err := t.tx.Exec(ctx,
		`INSERT INTO follows (follower_id, followed_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (follower_id, followed_id) DO NOTHING`,
		followerID, followedID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // violation de clé étrangère
			return false, engine.ErrUserNotFound
		}
		return false, translate("insert_follow", err)
	}
	return res.RowsAffected() > 0, nil
}

func (t *tx) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id=$1 AND followed_id=$2`,
		followerID, followedID,
	)
	return translate("delete_follow", err)
}

func (t *tx) SkillName(ctx context.Context, skillID string) (string, error) {
	var name string
	err := t.tx.QueryRow(ctx, `SELECT name FROM skills WHERE id=$1`, skillID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) || invalidUUID(err) {
		return "", engine.ErrSkillNotFound
	}
	if err != nil {
		return "", translate("skill_name", err)
	}
	return name, nil
}

func (t *tx) UserHasSkill(ctx context.Context, userID, skillID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_skills WHERE user_id=$1 AND skill_id=$2)`,
		userID, skillID,
	).Scan(&exists)
	if err != nil {
		return false, translate("user_has_skill", err)
	}
	return exists, nil
}

func (t *tx) InsertEndorsement(ctx context.Context, ownerID, skillID, endorserID string) (bool, error) {
	res, err := t.tx.Exec(ctx,
		`INSERT INTO skill_endorsements (owner_id, skill_id, endorser_id, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (owner_id, skill_id, endorser_id) DO NOTHING`,
		ownerID, skillID, endorserID,
	)
	if err != nil {
		return false, translate("insert_endorsement", err)
	}
	return res.RowsAffected() > 0, nil
}

func (t *tx) BumpSkillPopularity(ctx context.Context, skillID string) error {
	res, err := t.tx.Exec(ctx,
		`UPDATE skills SET popularity = popularity + 1 WHERE id=$1`,
		skillID,
	)
	if err != nil {
		return translate("bump_skill_popularity", err)
	}
	if res.RowsAffected() == 0 {
		return engine.ErrSkillNotFound
	}
	return nil
}

func (t *tx) FindSkillByName(ctx context.Context, name string) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		`SELECT id::text FROM skills WHERE LOWER(name)=LOWER($1)`,
		strings.TrimSpace(name),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", engine.ErrSkillNotFound
	}
	if err != nil {
		return "", translate("find_skill_by_name", err)
	}
	return id, nil
}

func (t *tx) CreateSkill(ctx context.Context, skill *model.Skill) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO skills(id, name, category, popularity, created_at) VALUES($1,$2,$3,0,$4)`,
		skill.ID, skill.Name, skill.Category, skill.CreatedAt,
	)
	return translate("create_skill", err)
}

func (t *tx) AttachSkill(ctx context.Context, userID, skillID string, level int) (bool, error) {
	res, err := t.tx.Exec(ctx,
		`INSERT INTO user_skills (user_id, skill_id, level, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, skill_id) DO NOTHING`,
		userID, skillID, level,
	)
	if err != nil {
		return false, translate("attach_skill", err)
	}
	return res.RowsAffected() > 0, nil
}

// --- Lectures hors transaction ---

func (s *Store) User(ctx context.Context, userID string) (*engine.UserBalance, error) {
	u := engine.UserBalance{ID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT xp, level FROM users WHERE id=$1 AND deleted_at IS NULL`,
		userID,
	).Scan(&u.Xp, &u.Level)
	if errors.Is(err, pgx.ErrNoRows) || invalidUUID(err) {
		return nil, engine.ErrUserNotFound
	}
	if err != nil {
		return nil, translate("user", err)
	}
	return &u, nil
}

// XpHistory pagine le journal par curseur (created_at, id) décroissant :
// le jeton est rejouable même si de nouvelles entrées arrivent entre deux pages.
func (s *Store) XpHistory(ctx context.Context, userID string, q engine.HistoryQuery) (*engine.HistoryPage, error) {
	query := `SELECT id::text, user_id::text, amount, reason, source_type, source_id::text, old_total, new_total, level_up, created_at
		FROM xp_transactions WHERE user_id=$1`
	args := []interface{}{userID}

	if q.Cursor != "" {
		at, id, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, at, id)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	if q.From != nil {
		args = append(args, *q.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, q.Limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("xp_history", err)
	}
	defer rows.Close()

	page := &engine.HistoryPage{}
	for rows.Next() {
		var e model.XpTransaction
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.SourceType, &e.SourceID,
			&e.OldTotal, &e.NewTotal, &e.LevelUp, &e.CreatedAt); err != nil {
			return nil, translate("xp_history_scan", err)
		}
		page.Entries = append(page.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("xp_history_rows", err)
	}

	if len(page.Entries) > q.Limit {
		page.Entries = page.Entries[:q.Limit]
		last := page.Entries[q.Limit-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (s *Store) Followers(ctx context.Context, userID string, page engine.Page) ([]model.UserCreator, error) {
	return s.listEdges(ctx,
		`SELECT u.id::text, u.name, COALESCE(u.avatar,'')
		 FROM follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.followed_id=$1 AND u.deleted_at IS NULL
		 ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`,
		userID, page)
}

func (s *Store) Following(ctx context.Context, userID string, page engine.Page) ([]model.UserCreator, error) {
	return s.listEdges(ctx,
		`SELECT u.id::text, u.name, COALESCE(u.avatar,'')
		 FROM follows f JOIN users u ON u.id = f.followed_id
		 WHERE f.follower_id=$1 AND u.deleted_at IS NULL
		 ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`,
		userID, page)
}

func (s *Store) listEdges(ctx context.Context, query, userID string, page engine.Page) ([]model.UserCreator, error) {
	rows, err := s.pool.Query(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, translate("list_edges", err)
	}
	defer rows.Close()

	var out []model.UserCreator
	for rows.Next() {
		var u model.UserCreator
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar); err != nil {
			return nil, translate("list_edges_scan", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// encodeCursor sérialise la position (created_at, id) en jeton opaque
func encodeCursor(at time.Time, id string) string {
	raw := at.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", &engine.StorageError{Op: "decode_cursor", Err: err}
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", &engine.StorageError{Op: "decode_cursor", Err: errors.New("jeton de page invalide")}
	}
	at, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", &engine.StorageError{Op: "decode_cursor", Err: err}
	}
	return at, parts[1], nil
}

var _ engine.Store = (*Store)(nil)
var _ engine.Tx = (*tx)(nil)
