package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine/memstore"
	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

// recordingNotifier capture les événements émis par le coordinateur
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, ev model.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) byType(t string) []model.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.NotificationEvent
	for _, ev := range n.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*engine.Coordinator, *memstore.Store, *recordingNotifier) {
	t.Helper()
	store := memstore.New()
	notifier := &recordingNotifier{}
	return engine.NewCoordinator(store, notifier), store, notifier
}

// vérifie les invariants du journal : continuité des totaux et cohérence
// de la somme avec le solde courant
func assertLedgerConsistent(t *testing.T, store *memstore.Store, userID string) {
	t.Helper()
	entries := store.LedgerFor(userID)
	sum := 0
	for i, e := range entries {
		assert.Equal(t, e.OldTotal+e.Amount, e.NewTotal, "entrée %d", i)
		if i > 0 {
			assert.Equal(t, entries[i-1].NewTotal, e.OldTotal, "entrée %d ne suit pas la précédente", i)
		}
		sum += e.Amount
	}
	xp, level := store.UserXp(userID)
	assert.Equal(t, sum, xp, "le journal doit sommer au solde")
	assert.Equal(t, engine.LevelOf(xp), level, "le niveau doit dériver du solde")
}

func TestAwardXpAppendsLedger(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)

	award, err := eng.AwardXp(ctx, "alice", 20, "Projet publié", model.XpSourceProject, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, award.OldTotal)
	assert.Equal(t, 20, award.NewTotal)
	assert.Equal(t, 1, award.NewLevel)
	assert.False(t, award.LevelUp)

	award, err = eng.AwardXp(ctx, "alice", 500, "Récompense", model.XpSourceAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, award.OldTotal)
	assert.Equal(t, 520, award.NewTotal)
	assert.Equal(t, 3, award.NewLevel)
	assert.True(t, award.LevelUp)

	entries := store.LedgerFor("alice")
	require.Len(t, entries, 2)
	assert.True(t, entries[1].LevelUp)
	assertLedgerConsistent(t, store, "alice")
}

func TestAwardXpRejectsInvalidAmounts(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 50)

	_, err := eng.AwardXp(ctx, "alice", 0, "rien", model.XpSourceAdmin, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidAmount)

	// Les montants négatifs sont réservés aux corrections admin
	_, err = eng.AwardXp(ctx, "alice", -5, "reprise", model.XpSourceChallenge, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidAmount)

	xp, _ := store.UserXp("alice")
	assert.Equal(t, 50, xp)
	assert.Empty(t, store.LedgerFor("alice"))
}

func TestAwardXpNegativeClampsAtZero(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	_, err := eng.AwardXp(ctx, "alice", 20, "init", model.XpSourceAdmin, nil)
	require.NoError(t, err)

	// La correction dépasse le solde : le delta appliqué est tronqué et
	// c'est lui qui est journalisé
	award, err := eng.AwardXp(ctx, "alice", -100, "correction", model.XpSourceAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, award.NewTotal)

	entries := store.LedgerFor("alice")
	require.Len(t, entries, 2)
	assert.Equal(t, -20, entries[1].Amount)
	assertLedgerConsistent(t, store, "alice")
}

func TestAwardXpUnknownUser(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	_, err := eng.AwardXp(context.Background(), "ghost", 10, "x", model.XpSourceAdmin, nil)
	assert.ErrorIs(t, err, engine.ErrUserNotFound)
}

func TestLikeAwardsAuthor(t *testing.T) {
	eng, store, notifier := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeProject, "p1", "bob")

	res, err := eng.Like(ctx, "alice", model.EntityTypeProject, "p1")
	require.NoError(t, err)
	assert.False(t, res.Already)
	require.NotNil(t, res.Award)
	assert.Equal(t, 5, res.Award.NewTotal)

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 5, xp)
	assert.Equal(t, 1, store.LikeCount(model.EntityTypeProject, "p1"))
	assert.Len(t, notifier.byType("like"), 1)
	assertLedgerConsistent(t, store, "bob")
}

func TestLikeIdempotent(t *testing.T) {
	eng, store, notifier := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeProject, "p1", "bob")

	_, err := eng.Like(ctx, "alice", model.EntityTypeProject, "p1")
	require.NoError(t, err)

	// Le second like du même acteur est un no-op : pas d'XP, pas de
	// notification, pas de nouvelle entrée de journal
	res, err := eng.Like(ctx, "alice", model.EntityTypeProject, "p1")
	require.NoError(t, err)
	assert.True(t, res.Already)
	assert.Nil(t, res.Award)

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 5, xp)
	assert.Equal(t, 1, store.LikeCount(model.EntityTypeProject, "p1"))
	assert.Len(t, store.LedgerFor("bob"), 1)
	assert.Len(t, notifier.byType("like"), 1)
}

func TestSelfLikeNoXp(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeIdea, "i1", "bob")

	// Le self-like compte dans le total de likes mais ne rapporte rien
	res, err := eng.Like(ctx, "bob", model.EntityTypeIdea, "i1")
	require.NoError(t, err)
	assert.False(t, res.Already)
	assert.Nil(t, res.Award)

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 0, xp)
	assert.Equal(t, 1, store.LikeCount(model.EntityTypeIdea, "i1"))
	assert.Empty(t, store.LedgerFor("bob"))
}

func TestLikeUnknownContent(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	store.AddUser("alice", "Alice", 0)

	_, err := eng.Like(context.Background(), "alice", model.EntityTypeProject, "absent")
	assert.ErrorIs(t, err, engine.ErrContentNotFound)
}

func TestUnlikeKeepsAwardedXp(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeProject, "p1", "bob")

	_, err := eng.Like(ctx, "alice", model.EntityTypeProject, "p1")
	require.NoError(t, err)

	// Retirer le like n'est jamais une reprise d'XP
	require.NoError(t, eng.Unlike(ctx, "alice", model.EntityTypeProject, "p1"))
	assert.Equal(t, 0, store.LikeCount(model.EntityTypeProject, "p1"))

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 5, xp)
	assert.Len(t, store.LedgerFor("bob"), 1)
}

func TestReactAwardsByType(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeProject, "p1", "bob")

	res, err := eng.React(ctx, "alice", model.EntityTypeProject, "p1", model.ReactionGenius)
	require.NoError(t, err)
	require.NotNil(t, res.Award)
	assert.Equal(t, 10, res.Award.NewTotal)

	// Rejouer la même réaction : no-op, le solde ne bouge pas
	res, err = eng.React(ctx, "alice", model.EntityTypeProject, "p1", model.ReactionGenius)
	require.NoError(t, err)
	assert.True(t, res.Already)

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 10, xp)

	// Une réaction d'un autre type du même acteur est un engagement distinct
	res, err = eng.React(ctx, "alice", model.EntityTypeProject, "p1", model.ReactionGameChanger)
	require.NoError(t, err)
	assert.False(t, res.Already)

	xp, _ = store.UserXp("bob")
	assert.Equal(t, 25, xp)
	assertLedgerConsistent(t, store, "bob")
}

func TestReactInvalidType(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	store.AddUser("alice", "Alice", 0)

	_, err := eng.React(context.Background(), "alice", model.EntityTypeProject, "p1", "explosion")
	assert.ErrorIs(t, err, engine.ErrInvalidReaction)
}

func TestCommentAwardsEveryTime(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeChallenge, "c1", "bob")

	comment, award, err := eng.Comment(ctx, "alice", model.EntityTypeChallenge, "c1", "Bien vu !")
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, "Bien vu !", comment.Body)
	require.NotNil(t, award)

	// Pas de déduplication des commentaires : chacun crédite l'auteur
	_, _, err = eng.Comment(ctx, "alice", model.EntityTypeChallenge, "c1", "Et encore bravo")
	require.NoError(t, err)

	xp, _ := store.UserXp("bob")
	assert.Equal(t, 10, xp)
	assert.Equal(t, 2, store.CommentCount(model.EntityTypeChallenge, "c1"))
	assertLedgerConsistent(t, store, "bob")
}

func TestCommentRollsBackAtomically(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddContent(model.EntityTypeProject, "p1", "bob")

	// Si l'écriture du journal échoue, ni le commentaire ni le solde ne
	// doivent être observables : l'unité de travail est tout ou rien
	boom := errors.New("disque plein")
	store.FailOnce("AppendXpTransaction", boom)

	_, _, err := eng.Comment(ctx, "alice", model.EntityTypeProject, "p1", "perdu")
	require.Error(t, err)

	assert.Equal(t, 0, store.CommentCount(model.EntityTypeProject, "p1"))
	xp, _ := store.UserXp("bob")
	assert.Equal(t, 0, xp)
	assert.Empty(t, store.LedgerFor("bob"))
}

func TestFollowLifecycle(t *testing.T) {
	eng, store, notifier := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)

	res, err := eng.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, res.Already)
	assert.True(t, store.HasFollow("alice", "bob"))
	assert.Len(t, notifier.byType("follow"), 1)

	res, err = eng.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, res.Already)
	assert.Len(t, notifier.byType("follow"), 1)

	require.NoError(t, eng.Unfollow(ctx, "alice", "bob"))
	assert.False(t, store.HasFollow("alice", "bob"))

	// Unfollow d'une arête absente : succès inconditionnel
	require.NoError(t, eng.Unfollow(ctx, "alice", "bob"))
}

func TestFollowRejectsSelfAndUnknown(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)

	_, err := eng.Follow(ctx, "alice", "alice")
	assert.ErrorIs(t, err, engine.ErrSelfFollow)

	_, err = eng.Follow(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, engine.ErrUserNotFound)
}

func TestFollowRollsBackOnFailure(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)

	boom := errors.New("panne")
	store.FailOnce("InsertFollow", boom)

	_, err := eng.Follow(ctx, "alice", "bob")
	require.Error(t, err)

	// Aucun sens de la relation ne doit être observable
	assert.False(t, store.HasFollow("alice", "bob"))
	followers, err := eng.Followers(ctx, "bob", engine.Page{})
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestRetryThenConsistencyTimeout(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)

	// Deux conflits puis succès : la boucle de rejeu absorbe
	store.ConflictNext(2)
	_, err := eng.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, store.HasFollow("alice", "bob"))

	// Conflits au-delà du nombre maximal de tentatives : ErrConsistencyTimeout
	store.ConflictNext(3)
	_, err = eng.Follow(ctx, "bob", "alice")
	assert.ErrorIs(t, err, engine.ErrConsistencyTimeout)
	assert.False(t, store.HasFollow("bob", "alice"))
}

func TestConcurrentAwardsSerialize(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("bob", "Bob", 0)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.AwardXp(ctx, "bob", 5, "like reçu", model.XpSourceAdmin, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	xp, level := store.UserXp("bob")
	assert.Equal(t, 5*n, xp)
	assert.Equal(t, engine.LevelOf(5*n), level)
	assert.Len(t, store.LedgerFor("bob"), n)
	assertLedgerConsistent(t, store, "bob")
}

func TestEndorseSkill(t *testing.T) {
	eng, store, notifier := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddCatalogSkill("s1", "Go", "backend")
	store.GiveSkill("bob", "s1", 4)

	res, err := eng.EndorseSkill(ctx, "alice", "bob", "s1")
	require.NoError(t, err)
	assert.False(t, res.Already)
	assert.Equal(t, "Go", res.SkillName)
	assert.Equal(t, []string{"alice"}, store.Endorsements("bob", "s1"))
	assert.Equal(t, 1, store.SkillPopularity("s1"))
	assert.Len(t, notifier.byType("endorsement"), 1)

	// Rejeu : no-op, la popularité ne monte qu'une fois par endorseur
	res, err = eng.EndorseSkill(ctx, "alice", "bob", "s1")
	require.NoError(t, err)
	assert.True(t, res.Already)
	assert.Equal(t, 1, store.SkillPopularity("s1"))

	// Un endorsement ne rapporte jamais d'XP
	xp, _ := store.UserXp("bob")
	assert.Equal(t, 0, xp)
}

func TestEndorseSkillRejections(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddCatalogSkill("s1", "Go", "backend")
	store.GiveSkill("bob", "s1", 3)

	_, err := eng.EndorseSkill(ctx, "bob", "bob", "s1")
	assert.ErrorIs(t, err, engine.ErrSelfEndorsement)

	// Compétence absente du profil visé
	_, err = eng.EndorseSkill(ctx, "alice", "bob", "s2")
	assert.ErrorIs(t, err, engine.ErrSkillNotFound)
}

func TestAddSkillByCatalogID(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddCatalogSkill("s1", "Rust", "backend")

	skill, err := eng.AddSkill(ctx, "alice", engine.SkillRef{SkillID: "s1"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "s1", skill.SkillID)
	assert.Equal(t, "Rust", skill.Name)
	assert.Equal(t, 3, skill.Level)
}

func TestAddSkillByNameCreatesCatalogEntry(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)

	first, err := eng.AddSkill(ctx, "alice", engine.SkillRef{Name: "Robotique", Category: "hardware"}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, first.SkillID)

	// Le même nom (insensible à la casse) doit résoudre vers la même entrée
	second, err := eng.AddSkill(ctx, "bob", engine.SkillRef{Name: "robotique"}, 5)
	require.NoError(t, err)
	assert.Equal(t, first.SkillID, second.SkillID)
}

func TestAddSkillValidation(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddCatalogSkill("s1", "Go", "backend")

	_, err := eng.AddSkill(ctx, "alice", engine.SkillRef{SkillID: "s1"}, 0)
	assert.ErrorIs(t, err, engine.ErrInvalidSkillLevel)

	_, err = eng.AddSkill(ctx, "alice", engine.SkillRef{SkillID: "s1"}, 6)
	assert.ErrorIs(t, err, engine.ErrInvalidSkillLevel)

	// Exactement une des deux variantes de référence doit être renseignée
	_, err = eng.AddSkill(ctx, "alice", engine.SkillRef{}, 3)
	assert.ErrorIs(t, err, engine.ErrInvalidSkillRef)

	_, err = eng.AddSkill(ctx, "alice", engine.SkillRef{SkillID: "s1", Name: "Go"}, 3)
	assert.ErrorIs(t, err, engine.ErrInvalidSkillRef)

	_, err = eng.AddSkill(ctx, "ghost", engine.SkillRef{SkillID: "s1"}, 3)
	assert.ErrorIs(t, err, engine.ErrUserNotFound)
}

func TestXpHistoryPagination(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)

	for i := 0; i < 5; i++ {
		_, err := eng.AwardXp(ctx, "alice", 10, "award", model.XpSourceAdmin, nil)
		require.NoError(t, err)
	}

	// Première page : les plus récentes d'abord
	page, err := eng.XpHistory(ctx, "alice", engine.HistoryQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, 50, page.Entries[0].NewTotal)
	assert.Equal(t, 40, page.Entries[1].NewTotal)

	page, err = eng.XpHistory(ctx, "alice", engine.HistoryQuery{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, 30, page.Entries[0].NewTotal)

	page, err = eng.XpHistory(ctx, "alice", engine.HistoryQuery{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, 10, page.Entries[0].NewTotal)
}

func TestXpHistoryDateFilter(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)

	_, err := eng.AwardXp(ctx, "alice", 10, "award", model.XpSourceAdmin, nil)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	page, err := eng.XpHistory(ctx, "alice", engine.HistoryQuery{From: &past, To: &future})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 1)

	// Fenêtre entièrement dans le futur : rien
	page, err = eng.XpHistory(ctx, "alice", engine.HistoryQuery{From: &future})
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}

func TestXpHistoryUnknownUser(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	_, err := eng.XpHistory(context.Background(), "ghost", engine.HistoryQuery{})
	assert.ErrorIs(t, err, engine.ErrUserNotFound)
}

func TestFollowersFollowingListing(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 0)
	store.AddUser("bob", "Bob", 0)
	store.AddUser("carol", "Carol", 0)

	_, err := eng.Follow(ctx, "alice", "carol")
	require.NoError(t, err)
	_, err = eng.Follow(ctx, "bob", "carol")
	require.NoError(t, err)
	_, err = eng.Follow(ctx, "carol", "alice")
	require.NoError(t, err)

	// Suiveurs de carol, du plus récent au plus ancien
	followers, err := eng.Followers(ctx, "carol", engine.Page{})
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].ID)
	assert.Equal(t, "alice", followers[1].ID)

	following, err := eng.Following(ctx, "carol", engine.Page{})
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].ID)

	// Pagination par offset
	followers, err = eng.Followers(ctx, "carol", engine.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].ID)
}

func TestLevelUpEmitsNotification(t *testing.T) {
	eng, store, notifier := newTestEngine(t)
	ctx := context.Background()
	store.AddUser("alice", "Alice", 95)

	_, err := eng.AwardXp(ctx, "alice", 10, "award", model.XpSourceAdmin, nil)
	require.NoError(t, err)

	events := notifier.byType("level_up")
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].AuthorID)
	assert.Equal(t, 2, events[0].Amount)
}
