package engine

import (
	"context"
	"time"

	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

// UserBalance est la vue du moteur sur le cache de solde d'un utilisateur
type UserBalance struct {
	ID    string
	Xp    int
	Level int
}

// HistoryQuery paramètre une lecture paginée du journal XP
type HistoryQuery struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Cursor string // jeton opaque retourné par la page précédente, vide pour la première
}

// HistoryPage est une page du journal XP, du plus récent au plus ancien
type HistoryPage struct {
	Entries    []model.XpTransaction `json:"entries"`
	NextCursor string                `json:"nextCursor,omitempty"`
}

// Page paramètre les lectures paginées du graphe social
type Page struct {
	Limit  int
	Offset int
}

// Tx est l'unité de travail atomique fournie par le collaborateur de
// persistance : toutes les mutations effectuées via un même Tx sont validées
// ensemble ou annulées ensemble. Le moteur est écrit contre ce contrat, pas
// contre un produit de stockage particulier.
type Tx interface {
	// UserForUpdate lit le solde d'un utilisateur sous l'isolation de la
	// transaction : aucun autre écrivain ne peut s'intercaler entre cette
	// lecture et le commit. Retourne ErrUserNotFound si l'utilisateur a disparu.
	UserForUpdate(ctx context.Context, userID string) (*UserBalance, error)

	// SetUserXp écrit les deux champs du cache (xp, niveau) d'un coup
	SetUserXp(ctx context.Context, userID string, xp, level int) error

	// AppendXpTransaction insère une entrée immuable dans le journal
	AppendXpTransaction(ctx context.Context, entry *model.XpTransaction) error

	// UserExists vérifie qu'un utilisateur existe (sans verrou)
	UserExists(ctx context.Context, userID string) (bool, error)

	// ContentAuthor retourne l'auteur du contenu ciblé, ou ErrContentNotFound
	ContentAuthor(ctx context.Context, entityType model.EntityType, entityID string) (string, error)

	// InsertLike ajoute l'acteur à l'ensemble des likes.
	// Retourne false sans muter si le like existait déjà (déduplication).
	InsertLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) (bool, error)
	DeleteLike(ctx context.Context, userID string, entityType model.EntityType, entityID string) error

	// InsertReaction ajoute l'acteur à l'ensemble des utilisateurs d'un type
	// de réaction. Retourne false sans muter si la réaction existait déjà.
	InsertReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) (bool, error)
	DeleteReaction(ctx context.Context, userID string, entityType model.EntityType, entityID string, reaction model.ReactionType) error

	// InsertComment insère un commentaire sur un contenu
	InsertComment(ctx context.Context, comment *model.Comment) error

	// InsertFollow crée l'arête de suivi. Les deux sens de la relation
	// dérivent de la même arête : ils sont donc validés d'un seul tenant.
	// Retourne false sans muter si l'arête existait déjà.
	InsertFollow(ctx context.Context, followerID, followedID string) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followedID string) error

	// SkillName retourne le nom d'une compétence du catalogue, ou ErrSkillNotFound
	SkillName(ctx context.Context, skillID string) (string, error)

	// UserHasSkill vérifie que la compétence figure sur le profil de l'utilisateur
	UserHasSkill(ctx context.Context, userID, skillID string) (bool, error)

	// InsertEndorsement ajoute l'endorseur à l'ensemble des endorsements de la
	// compétence. Retourne false sans muter si l'endorsement existait déjà.
	InsertEndorsement(ctx context.Context, ownerID, skillID, endorserID string) (bool, error)

	// BumpSkillPopularity incrémente la popularité globale d'une compétence
	BumpSkillPopularity(ctx context.Context, skillID string) error

	// FindSkillByName recherche une compétence du catalogue par nom
	// (insensible à la casse). Retourne ErrSkillNotFound si absente.
	FindSkillByName(ctx context.Context, name string) (string, error)

	// CreateSkill insère une nouvelle compétence dans le catalogue
	CreateSkill(ctx context.Context, skill *model.Skill) error

	// AttachSkill ajoute une compétence au profil d'un utilisateur.
	// Retourne false si elle y figurait déjà.
	AttachSkill(ctx context.Context, userID, skillID string, level int) (bool, error)
}

// Store est le contrat de persistance du moteur. WithinTx exécute fn dans une
// unité de travail atomique multi-enregistrements ; si fn retourne une erreur,
// aucune mutation n'est observable. Un Store peut retourner ErrTxConflict pour
// signaler un conflit de concurrence rejouable.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// User lit le solde courant d'un utilisateur (hors transaction)
	User(ctx context.Context, userID string) (*UserBalance, error)

	// XpHistory lit le journal d'un utilisateur, du plus récent au plus
	// ancien, paginé par jeton opaque et filtrable par plage de dates.
	XpHistory(ctx context.Context, userID string, q HistoryQuery) (*HistoryPage, error)

	// Followers et Following listent le graphe social, du suivi le plus
	// récent au plus ancien.
	Followers(ctx context.Context, userID string, page Page) ([]model.UserCreator, error)
	Following(ctx context.Context, userID string, page Page) ([]model.UserCreator, error)
}
