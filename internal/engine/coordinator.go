package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

// Nombre maximal de tentatives pour valider une unité de travail avant de
// remonter ErrConsistencyTimeout. La déduplication rend le rejeu complet sûr.
const maxCommitAttempts = 3

// Coordinator exécute les unités de travail atomiques du système : toute
// mutation multi-enregistrements (engagement + solde XP + journal, arête de
// suivi) passe par lui. Il est le seul écrivain du cache (xp, niveau) et du
// journal XP.
type Coordinator struct {
	store    Store
	notifier Notifier
	attempts int
	now      func() time.Time
}

// NewCoordinator construit un coordinateur. Le store et le notifier sont
// injectés explicitement : pas d'état global.
func NewCoordinator(store Store, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		attempts: maxCommitAttempts,
		now:      time.Now,
	}
}

// LikeResult est l'issue d'un Like : Already distingue le no-op idempotent
// d'un nouveau like, Award est nul pour un self-like (pas d'XP)
type LikeResult struct {
	Already bool           `json:"already"`
	Award   *model.XpAward `json:"award,omitempty"`
}

// ReactionResult est l'issue d'un React
type ReactionResult struct {
	Already bool           `json:"already"`
	Award   *model.XpAward `json:"award,omitempty"`
}

// FollowResult est l'issue d'un Follow
type FollowResult struct {
	Already bool `json:"already"`
}

// EndorseResult est l'issue d'un EndorseSkill
type EndorseResult struct {
	SkillName string `json:"skillName"`
	Already   bool   `json:"already"`
}

// SkillRef désigne une compétence : soit une entrée existante du catalogue
// par son id, soit une nouvelle compétence par nom/catégorie. Exactement une
// des deux variantes doit être renseignée.
type SkillRef struct {
	SkillID  string `json:"skillId,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// withRetry rejoue l'unité de travail entière sur conflit de concurrence,
// un nombre borné de fois. fn doit être rejouable : elle est relancée depuis
// le début, dédup incluse, ce qui empêche toute double application.
func (c *Coordinator) withRetry(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 0; attempt < c.attempts; attempt++ {
		err := c.store.WithinTx(ctx, fn)
		if errors.Is(err, ErrTxConflict) {
			continue
		}
		return err
	}
	return ErrConsistencyTimeout
}

// awardInTx applique un delta d'XP sous l'isolation de la transaction :
// lecture du solde, calcul du nouveau total et du niveau, écriture atomique
// du cache et de l'entrée de journal correspondante.
func (c *Coordinator) awardInTx(ctx context.Context, tx Tx, userID string, amount int, reason string, source model.XpSourceType, sourceID *string) (*model.XpAward, error) {
	user, err := tx.UserForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// L'XP ne descend jamais sous zéro : le delta appliqué est tronqué et
	// c'est lui qui est journalisé, pour garder newTotal == oldTotal + amount.
	applied := amount
	if user.Xp+applied < 0 {
		applied = -user.Xp
	}

	newTotal := user.Xp + applied
	newLevel := LevelOf(newTotal)
	award := &model.XpAward{
		OldTotal: user.Xp,
		NewTotal: newTotal,
		OldLevel: user.Level,
		NewLevel: newLevel,
		LevelUp:  newLevel > user.Level,
	}

	if err := tx.SetUserXp(ctx, userID, newTotal, newLevel); err != nil {
		return nil, err
	}

	entry := &model.XpTransaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     applied,
		Reason:     reason,
		SourceType: source,
		SourceID:   sourceID,
		OldTotal:   user.Xp,
		NewTotal:   newTotal,
		LevelUp:    award.LevelUp,
		CreatedAt:  c.now().UTC(),
	}
	if err := tx.AppendXpTransaction(ctx, entry); err != nil {
		return nil, err
	}

	return award, nil
}

// notify émet un événement vers le collaborateur de livraison, après commit.
// Best-effort : un échec de livraison n'annule jamais l'unité de travail.
func (c *Coordinator) notify(ctx context.Context, eventType, actorID, authorID string, award *model.XpAward, reason, sourceID string) {
	amount := 0
	if award != nil {
		amount = award.NewTotal - award.OldTotal
	}
	_ = c.notifier.Notify(ctx, model.NotificationEvent{
		Type:      eventType,
		ActorID:   actorID,
		AuthorID:  authorID,
		Amount:    amount,
		Reason:    reason,
		SourceID:  sourceID,
		CreatedAt: c.now().UTC(),
	})
	if award != nil && award.LevelUp {
		_ = c.notifier.Notify(ctx, model.NotificationEvent{
			Type:      "level_up",
			ActorID:   authorID,
			AuthorID:  authorID,
			Amount:    award.NewLevel,
			Reason:    fmt.Sprintf("Niveau %d atteint", award.NewLevel),
			CreatedAt: c.now().UTC(),
		})
	}
}

// AwardXp attribue un delta d'XP à un utilisateur. Les montants négatifs
// (corrections) ne sont acceptés que pour la source admin ; le journal reste
// append-only, une correction est une nouvelle entrée, jamais une édition.
func (c *Coordinator) AwardXp(ctx context.Context, userID string, amount int, reason string, source model.XpSourceType, sourceID *string) (*model.XpAward, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if amount < 0 && source != model.XpSourceAdmin {
		return nil, ErrInvalidAmount
	}

	var award *model.XpAward
	err := c.withRetry(ctx, func(tx Tx) error {
		var err error
		award, err = c.awardInTx(ctx, tx, userID, amount, reason, source, sourceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	src := ""
	if sourceID != nil {
		src = *sourceID
	}
	c.notify(ctx, "xp_award", userID, userID, award, reason, src)
	return award, nil
}

// Like ajoute un like d'un acteur sur un contenu et crédite l'auteur.
// Idempotent : un second like du même acteur retourne Already sans mutation,
// sans XP et sans notification. Un self-like compte dans le total de likes
// du contenu mais ne rapporte jamais d'XP.
func (c *Coordinator) Like(ctx context.Context, actorID string, entityType model.EntityType, entityID string) (*LikeResult, error) {
	var (
		res      LikeResult
		authorID string
	)
	err := c.withRetry(ctx, func(tx Tx) error {
		res = LikeResult{}

		var err error
		authorID, err = tx.ContentAuthor(ctx, entityType, entityID)
		if err != nil {
			return err
		}

		inserted, err := tx.InsertLike(ctx, actorID, entityType, entityID)
		if err != nil {
			return err
		}
		if !inserted {
			res.Already = true
			return nil
		}

		if authorID != "" && actorID != authorID {
			reason := fmt.Sprintf("Like reçu (%s)", entityType)
			res.Award, err = c.awardInTx(ctx, tx, authorID, XpLike, reason, sourceForEntity(entityType), &entityID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Already {
		c.notify(ctx, "like", actorID, authorID, res.Award, "", entityID)
	}
	return &res, nil
}

// Unlike retire un like. Idempotent, et l'XP déjà attribué n'est jamais
// repris : l'attribution est un cliquet à sens unique par engagement.
func (c *Coordinator) Unlike(ctx context.Context, actorID string, entityType model.EntityType, entityID string) error {
	return c.withRetry(ctx, func(tx Tx) error {
		return tx.DeleteLike(ctx, actorID, entityType, entityID)
	})
}

// React ajoute une réaction typée d'un acteur sur un contenu et crédite
// l'auteur selon le barème de la réaction. Mêmes règles que Like :
// déduplication par (acteur, contenu, type) et exclusion du self-award.
func (c *Coordinator) React(ctx context.Context, actorID string, entityType model.EntityType, entityID string, reaction model.ReactionType) (*ReactionResult, error) {
	if !ValidReaction(reaction) {
		return nil, ErrInvalidReaction
	}

	var (
		res      ReactionResult
		authorID string
	)
	err := c.withRetry(ctx, func(tx Tx) error {
		res = ReactionResult{}

		var err error
		authorID, err = tx.ContentAuthor(ctx, entityType, entityID)
		if err != nil {
			return err
		}

		inserted, err := tx.InsertReaction(ctx, actorID, entityType, entityID, reaction)
		if err != nil {
			return err
		}
		if !inserted {
			res.Already = true
			return nil
		}

		if authorID != "" && actorID != authorID {
			reason := fmt.Sprintf("Réaction %s reçue", reaction)
			res.Award, err = c.awardInTx(ctx, tx, authorID, ReactionAward(reaction), reason, model.XpSourceReaction, &entityID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Already {
		c.notify(ctx, "reaction", actorID, authorID, res.Award, string(reaction), entityID)
	}
	return &res, nil
}

// Unreact retire une réaction. Idempotent, sans reprise d'XP.
func (c *Coordinator) Unreact(ctx context.Context, actorID string, entityType model.EntityType, entityID string, reaction model.ReactionType) error {
	if !ValidReaction(reaction) {
		return ErrInvalidReaction
	}
	return c.withRetry(ctx, func(tx Tx) error {
		return tx.DeleteReaction(ctx, actorID, entityType, entityID, reaction)
	})
}

// Comment enregistre un commentaire et crédite l'auteur du contenu, dans la
// même unité de travail. Contrairement aux likes, plusieurs commentaires du
// même acteur sont permis : pas de déduplication ici.
func (c *Coordinator) Comment(ctx context.Context, actorID string, entityType model.EntityType, entityID, body string) (*model.Comment, *model.XpAward, error) {
	var (
		comment  *model.Comment
		award    *model.XpAward
		authorID string
	)
	err := c.withRetry(ctx, func(tx Tx) error {
		award = nil

		var err error
		authorID, err = tx.ContentAuthor(ctx, entityType, entityID)
		if err != nil {
			return err
		}

		comment = &model.Comment{
			ID:         uuid.NewString(),
			EntityType: entityType,
			EntityID:   entityID,
			AuthorID:   actorID,
			Body:       body,
			CreatedAt:  c.now().UTC(),
		}
		if err := tx.InsertComment(ctx, comment); err != nil {
			return err
		}

		if authorID != "" && actorID != authorID {
			reason := fmt.Sprintf("Commentaire reçu (%s)", entityType)
			award, err = c.awardInTx(ctx, tx, authorID, XpComment, reason, model.XpSourceComment, &entityID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	c.notify(ctx, "comment", actorID, authorID, award, "", entityID)
	return comment, award, nil
}

// Follow crée la relation de suivi entre deux utilisateurs. Les deux sens
// (following du suiveur, followers du suivi) sont validés atomiquement :
// une application partielle n'est jamais observable. Le self-follow est
// rejeté explicitement.
func (c *Coordinator) Follow(ctx context.Context, followerID, targetID string) (*FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	var res FollowResult
	err := c.withRetry(ctx, func(tx Tx) error {
		res = FollowResult{}

		exists, err := tx.UserExists(ctx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		inserted, err := tx.InsertFollow(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		res.Already = !inserted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Already {
		c.notify(ctx, "follow", followerID, targetID, nil, "", "")
	}
	return &res, nil
}

// Unfollow retire la relation de suivi, les deux sens d'un coup.
// Succès inconditionnel, même si l'arête n'existait pas.
func (c *Coordinator) Unfollow(ctx context.Context, followerID, targetID string) error {
	return c.withRetry(ctx, func(tx Tx) error {
		return tx.DeleteFollow(ctx, followerID, targetID)
	})
}

// EndorseSkill endorse une compétence du profil d'un autre utilisateur.
// Le self-endorsement est rejeté avant toute mutation. Un endorsement
// n'attribue pas d'XP : il incrémente la popularité de la compétence.
func (c *Coordinator) EndorseSkill(ctx context.Context, actorID, ownerID, skillID string) (*EndorseResult, error) {
	if actorID == ownerID {
		return nil, ErrSelfEndorsement
	}

	var res EndorseResult
	err := c.withRetry(ctx, func(tx Tx) error {
		res = EndorseResult{}

		has, err := tx.UserHasSkill(ctx, ownerID, skillID)
		if err != nil {
			return err
		}
		if !has {
			return ErrSkillNotFound
		}

		res.SkillName, err = tx.SkillName(ctx, skillID)
		if err != nil {
			return err
		}

		inserted, err := tx.InsertEndorsement(ctx, ownerID, skillID, actorID)
		if err != nil {
			return err
		}
		if !inserted {
			res.Already = true
			return nil
		}

		return tx.BumpSkillPopularity(ctx, skillID)
	})
	if err != nil {
		return nil, err
	}

	if !res.Already {
		c.notify(ctx, "endorsement", actorID, ownerID, nil, res.SkillName, skillID)
	}
	return &res, nil
}

// AddSkill attache une compétence au profil d'un utilisateur. La référence
// est résolue en id canonique avant toute mutation : id existant vérifié
// dans le catalogue, ou création d'une nouvelle entrée par nom/catégorie.
func (c *Coordinator) AddSkill(ctx context.Context, userID string, ref SkillRef, level int) (*model.UserSkill, error) {
	if level < 1 || level > 5 {
		return nil, ErrInvalidSkillLevel
	}
	if (ref.SkillID == "") == (ref.Name == "") {
		return nil, ErrInvalidSkillRef
	}

	var skill model.UserSkill
	err := c.withRetry(ctx, func(tx Tx) error {
		exists, err := tx.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		skillID := ref.SkillID
		name := ""
		switch {
		case skillID != "":
			name, err = tx.SkillName(ctx, skillID)
			if err != nil {
				return err
			}
		default:
			skillID, err = tx.FindSkillByName(ctx, ref.Name)
			switch {
			case errors.Is(err, ErrSkillNotFound):
				skillID = uuid.NewString()
				if err := tx.CreateSkill(ctx, &model.Skill{
					ID:        skillID,
					Name:      ref.Name,
					Category:  ref.Category,
					CreatedAt: c.now().UTC(),
				}); err != nil {
					return err
				}
			case err != nil:
				return err
			}
			name = ref.Name
		}

		if _, err := tx.AttachSkill(ctx, userID, skillID, level); err != nil {
			return err
		}

		skill = model.UserSkill{SkillID: skillID, Name: name, Category: ref.Category, Level: level}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// XpHistory lit le journal XP d'un utilisateur, du plus récent au plus ancien
func (c *Coordinator) XpHistory(ctx context.Context, userID string, q HistoryQuery) (*HistoryPage, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if _, err := c.store.User(ctx, userID); err != nil {
		return nil, err
	}
	return c.store.XpHistory(ctx, userID, q)
}

// Followers liste les suiveurs d'un utilisateur
func (c *Coordinator) Followers(ctx context.Context, userID string, page Page) ([]model.UserCreator, error) {
	return c.store.Followers(ctx, userID, clampPage(page))
}

// Following liste les utilisateurs suivis par un utilisateur
func (c *Coordinator) Following(ctx context.Context, userID string, page Page) ([]model.UserCreator, error) {
	return c.store.Following(ctx, userID, clampPage(page))
}

func clampPage(page Page) Page {
	if page.Limit <= 0 {
		page.Limit = 50
	}
	if page.Limit > 200 {
		page.Limit = 200
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}
