// Package memstore fournit une implémentation en mémoire du contrat de
// persistance du moteur. Les transactions travaillent sur une copie de
// l'état et ne la publient qu'au commit : une unité de travail qui échoue
// ne laisse aucun état partiel, comme l'exige le coordinateur.
//
// Utilisé par les tests du moteur et comme stockage de développement.
package memstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

type userRec struct {
	Name   string
	Avatar string
	Xp     int
	Level  int
}

type skillRec struct {
	Name       string
	Category   string
	Popularity int
}

type userSkillRec struct {
	Level     int
	Endorsers map[string]bool
}

type contentKey struct {
	Type model.EntityType
	ID   string
}

type likeKey struct {
	UserID string
	Type   model.EntityType
	ID     string
}

type reactionKey struct {
	UserID   string
	Type     model.EntityType
	ID       string
	Reaction model.ReactionType
}

type edgeKey struct {
	Follower string
	Followed string
}

type ledgerEntry struct {
	Seq int64
	Tx  model.XpTransaction
}

type state struct {
	users      map[string]*userRec
	contents   map[contentKey]string // -> auteur
	likes      map[likeKey]int64
	reactions  map[reactionKey]int64
	comments   []model.Comment
	follows    map[edgeKey]int64
	ledger     []ledgerEntry
	skills     map[string]*skillRec
	userSkills map[string]map[string]*userSkillRec
	seq        int64
}

func newState() *state {
	return &state{
		users:      map[string]*userRec{},
		contents:   map[contentKey]string{},
		likes:      map[likeKey]int64{},
		reactions:  map[reactionKey]int64{},
		follows:    map[edgeKey]int64{},
		skills:     map[string]*skillRec{},
		userSkills: map[string]map[string]*userSkillRec{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	for k, v := range s.contents {
		c.contents[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	for k, v := range s.reactions {
		c.reactions[k] = v
	}
	c.comments = append([]model.Comment(nil), s.comments...)
	for k, v := range s.follows {
		c.follows[k] = v
	}
	c.ledger = append([]ledgerEntry(nil), s.ledger...)
	for id, sk := range s.skills {
		cp := *sk
		c.skills[id] = &cp
	}
	for uid, skills := range s.userSkills {
		m := map[string]*userSkillRec{}
		for sid, us := range skills {
			cp := userSkillRec{Level: us.Level, Endorsers: map[string]bool{}}
			for e := range us.Endorsers {
				cp.Endorsers[e] = true
			}
			m[sid] = &cp
		}
		c.userSkills[uid] = m
	}
	c.seq = s.seq
	return c
}

// Store est un engine.Store en mémoire. Un mutex sérialise les unités de
// travail, ce qui rend la séquence lecture-calcul-écriture d'un solde
// trivialement sérialisable.
type Store struct {
	mu sync.Mutex
	st *state

	failures  map[string]error
	conflicts int
}

func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOnce fait échouer la prochaine invocation de l'opération nommée.
// Sert aux tests de rollback : la panne est consommée une seule fois.
func (s *Store) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ConflictNext fait échouer les n prochaines transactions avec ErrTxConflict,
// pour exercer la boucle de rejeu du coordinateur.
func (s *Store) ConflictNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// WithinTx exécute fn sur un clone de l'état et ne publie le clone qu'en cas
// de succès. Toute erreur de fn jette le clone : rollback complet.
func (s *Store) WithinTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts > 0 {
		s.conflicts--
		return engine.ErrTxConflict
	}

	staged := s.st.clone()
	if err := fn(&tx{st: staged, store: s}); err != nil {
		return err
	}
	s.st = staged
	return nil
}

type tx struct {
	st    *state
	store *Store
}

func (t *tx) UserForUpdate(ctx context.Context, userID string) (*engine.UserBalance, error) {
	if err := t.store.takeFailure("UserForUpdate"); err != nil {
		return nil, err
	}
	u, ok := t.st.users[userID]
	if !ok {
		return nil, engine.ErrUserNotFound
	}
	return &engine.UserBalance{ID: userID, Xp: u.Xp, Level: u.Level}, nil
}

func (t *tx) SetUserXp(ctx context.Context, userID string, xp, level int) error {
	if err := t.store.takeFailure("SetUserXp"); err != nil {
		return err
	}
	u, ok := t.st.users[userID]
	if !ok {
		return engine.ErrUserNotFound
	}
	u.Xp = xp
	u.Level = level
	return nil
}

func (t *tx) AppendXpTransaction(ctx context.Context, entry *model.XpTransaction) error {
	if err := t.store.takeFailure("AppendXpTransaction"); err != nil {
		return err
	}
	t.st.seq++
	t.st.ledger = append(t.st.ledger, ledgerEntry{Seq: t.st.seq, Tx: *entry})
	return nil
}

func (t *tx) UserExists(ctx context.Context, userID string) (bool, error) {
	_, ok := t.st.users[userID]
	return ok, nil
}

func (t *tx) ContentAuthor(ctx context.Context, entityType model.EntityType, entityID string) (string, error) {
	author, ok := t.st.contents[contentKey{Type: entityType, ID: entityID}]
	if !ok {
		return "", engine.ErrContentNotFound
	}
	return author, nil
}

func (t *tx) InsertLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) (bool, error) {
	if err := t.store.takeFailure("InsertLike"); err != nil {
		return false, err
	}
	k := likeKey{UserID: userID, Type: entityType, ID: entityID}
	if _, ok := t.st.likes[k]; ok {
		return false, nil
	}
	t.st.seq++
	t.st.likes[k] = t.st.seq
	return true, nil
}

func (t *tx) DeleteLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) error {
	delete(t.st.likes, likeKey{UserID: userID, Type: entityType, ID: entityID})
	return nil
}

func (t *tx) InsertReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) (bool, error) {
	if err := t.store.takeFailure("InsertReaction"); err != nil {
		return false, err
	}
	k := reactionKey{UserID: userID, Type: entityType, ID: entityID, Reaction: reaction}
	if _, ok := t.st.reactions[k]; ok {
		return false, nil
	}
	t.st.seq++
	t.st.reactions[k] = t.st.seq
	return true, nil
}

func (t *tx) DeleteReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) error {
	delete(t.st.reactions, reactionKey{UserID: userID, Type: entityType, ID: entityID, Reaction: reaction})
	return nil
}

func (t *tx) InsertComment(ctx context.Context, comment *model.Comment) error {
	if err := t.store.takeFailure("InsertComment"); err != nil {
		return err
	}
	t.st.comments = append(t.st.comments, *comment)
	return nil
}

func (t *tx) InsertFollow(ctx context.Context, followerID, followedID string) (bool, error) {
	if err := t.store.takeFailure("InsertFollow"); err != nil {
		return false, err
	}
	k := edgeKey{Follower: followerID, Followed: followedID}
	if _, ok := t.st.follows[k]; ok {
		return false, nil
	}
	t.st.seq++
	t.st.follows[k] = t.st.seq
	return true, nil
}

func (t *tx) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	delete(t.st.follows, edgeKey{Follower: followerID, Followed: followedID})
	return nil
}

func (t *tx) SkillName(ctx context.Context, skillID string) (string, error) {
	sk, ok := t.st.skills[skillID]
	if !ok {
		return "", engine.ErrSkillNotFound
	}
	return sk.Name, nil
}

func (t *tx) UserHasSkill(ctx context.Context, userID, skillID string) (bool, error) {
	skills, ok := t.st.userSkills[userID]
	if !ok {
		return false, nil
	}
	_, ok = skills[skillID]
	return ok, nil
}

func (t *tx) InsertEndorsement(ctx context.Context, ownerID, skillID, endorserID string) (bool, error) {
	if err := t.store.takeFailure("InsertEndorsement"); err != nil {
		return false, err
	}
	skills, ok := t.st.userSkills[ownerID]
	if !ok {
		return false, engine.ErrSkillNotFound
	}
	us, ok := skills[skillID]
	if !ok {
		return false, engine.ErrSkillNotFound
	}
	if us.Endorsers[endorserID] {
		return false, nil
	}
	us.Endorsers[endorserID] = true
	return true, nil
}

func (t *tx) BumpSkillPopularity(ctx context.Context, skillID string) error {
	if err := t.store.takeFailure("BumpSkillPopularity"); err != nil {
		return err
	}
	sk, ok := t.st.skills[skillID]
	if !ok {
		return engine.ErrSkillNotFound
	}
	sk.Popularity++
	return nil
}

func (t *tx) FindSkillByName(ctx context.Context, name string) (string, error) {
	for id, sk := range t.st.skills {
		if strings.EqualFold(sk.Name, name) {
			return id, nil
		}
	}
	return "", engine.ErrSkillNotFound
}

func (t *tx) CreateSkill(ctx context.Context, skill *model.Skill) error {
	t.st.skills[skill.ID] = &skillRec{Name: skill.Name, Category: skill.Category}
	return nil
}

func (t *tx) AttachSkill(ctx context.Context, userID, skillID string, level int) (bool, error) {
	skills, ok := t.st.userSkills[userID]
	if !ok {
		skills = map[string]*userSkillRec{}
		t.st.userSkills[userID] = skills
	}
	if _, ok := skills[skillID]; ok {
		return false, nil
	}
	skills[skillID] = &userSkillRec{Level: level, Endorsers: map[string]bool{}}
	return true, nil
}

// --- Lectures hors transaction ---

func (s *Store) User(ctx context.Context, userID string) (*engine.UserBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[userID]
	if !ok {
		return nil, engine.ErrUserNotFound
	}
	return &engine.UserBalance{ID: userID, Xp: u.Xp, Level: u.Level}, nil
}

func (s *Store) XpHistory(ctx context.Context, userID string, q engine.HistoryQuery) (*engine.HistoryPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before int64 = 1<<63 - 1
	if q.Cursor != "" {
		v, err := strconv.ParseInt(q.Cursor, 10, 64)
		if err != nil {
			return nil, &engine.StorageError{Op: "XpHistory", Err: err}
		}
		before = v
	}

	matches := make([]ledgerEntry, 0)
	for _, e := range s.st.ledger {
		if e.Tx.UserID != userID || e.Seq >= before {
			continue
		}
		if q.From != nil && e.Tx.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && e.Tx.CreatedAt.After(*q.To) {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Seq > matches[j].Seq })

	page := &engine.HistoryPage{}
	for _, e := range matches {
		if len(page.Entries) == q.Limit {
			page.NextCursor = strconv.FormatInt(matches[q.Limit-1].Seq, 10)
			break
		}
		page.Entries = append(page.Entries, e.Tx)
	}
	return page, nil
}

func (s *Store) Followers(ctx context.Context, userID string, page engine.Page) ([]model.UserCreator, error) {
	return s.listEdges(userID, page, false)
}

func (s *Store) Following(ctx context.Context, userID string, page engine.Page) ([]model.UserCreator, error) {
	return s.listEdges(userID, page, true)
}

func (s *Store) listEdges(userID string, page engine.Page, following bool) ([]model.UserCreator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type edge struct {
		other string
		seq   int64
	}
	var edges []edge
	for k, seq := range s.st.follows {
		if following && k.Follower == userID {
			edges = append(edges, edge{other: k.Followed, seq: seq})
		}
		if !following && k.Followed == userID {
			edges = append(edges, edge{other: k.Follower, seq: seq})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].seq > edges[j].seq })

	var out []model.UserCreator
	for i, e := range edges {
		if i < page.Offset {
			continue
		}
		if len(out) == page.Limit {
			break
		}
		u := s.st.users[e.other]
		if u == nil {
			continue
		}
		out = append(out, model.UserCreator{ID: e.other, Name: u.Name, Avatar: u.Avatar})
	}
	return out, nil
}

// --- Helpers de peuplement et d'inspection pour les tests ---

// AddUser insère un utilisateur avec un solde initial, niveau dérivé du barème
func (s *Store) AddUser(id, name string, xp int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[id] = &userRec{Name: name, Xp: xp, Level: engine.LevelOf(xp)}
}

// AddContent déclare un contenu et son auteur
func (s *Store) AddContent(entityType model.EntityType, entityID, authorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.contents[contentKey{Type: entityType, ID: entityID}] = authorID
}

// AddCatalogSkill insère une compétence dans le catalogue
func (s *Store) AddCatalogSkill(id, name, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.skills[id] = &skillRec{Name: name, Category: category}
}

// GiveSkill attache une compétence au profil d'un utilisateur
func (s *Store) GiveSkill(userID, skillID string, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	skills, ok := s.st.userSkills[userID]
	if !ok {
		skills = map[string]*userSkillRec{}
		s.st.userSkills[userID] = skills
	}
	skills[skillID] = &userSkillRec{Level: level, Endorsers: map[string]bool{}}
}

// UserXp retourne le solde courant (xp, niveau) d'un utilisateur
func (s *Store) UserXp(id string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return 0, 0
	}
	return u.Xp, u.Level
}

// LedgerFor retourne toutes les entrées de journal d'un utilisateur, dans
// l'ordre d'insertion
func (s *Store) LedgerFor(userID string) []model.XpTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.XpTransaction
	for _, e := range s.st.ledger {
		if e.Tx.UserID == userID {
			out = append(out, e.Tx)
		}
	}
	return out
}

// LikeCount retourne le nombre de likes d'une entité
func (s *Store) LikeCount(entityType model.EntityType, entityID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.st.likes {
		if k.Type == entityType && k.ID == entityID {
			n++
		}
	}
	return n
}

// HasFollow indique si l'arête follower -> followed existe
func (s *Store) HasFollow(followerID, followedID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.follows[edgeKey{Follower: followerID, Followed: followedID}]
	return ok
}

// Endorsements retourne les endorseurs d'une compétence d'un profil
func (s *Store) Endorsements(ownerID, skillID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	skills, ok := s.st.userSkills[ownerID]
	if !ok {
		return nil
	}
	us, ok := skills[skillID]
	if !ok {
		return nil
	}
	var out []string
	for e := range us.Endorsers {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// SkillPopularity retourne la popularité d'une compétence du catalogue
func (s *Store) SkillPopularity(skillID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.st.skills[skillID]
	if !ok {
		return 0
	}
	return sk.Popularity
}

// CommentCount retourne le nombre de commentaires d'une entité
func (s *Store) CommentCount(entityType model.EntityType, entityID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.st.comments {
		if c.EntityType == entityType && c.EntityID == entityID {
			n++
		}
	}
	return n
}

var _ engine.Store = (*Store)(nil)
var _ engine.Tx = (*tx)(nil)
