// Package scanner centralise la conversion des lignes SQL vers les modèles.
// Chaque handler passe par ici plutôt que de dupliquer les appels à Scan.
package scanner

import (
	"database/sql"

	"github.com/lib/pq"

	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

// Row couvre pgx.Row et pgx.Rows, les deux exposent Scan
type Row interface {
	Scan(dest ...interface{}) error
}

// ScanUserProfile lit une ligne de users (sans les compteurs de graphe)
func ScanUserProfile(row Row) (*model.UserProfile, error) {
	var u model.UserProfile
	var avatar, bio, field, provider sql.NullString
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &avatar, &bio, &field, &provider,
		&u.Xp, &u.Level, &u.IsAdmin, &u.JoinDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Avatar = utils.NullStringToString(avatar)
	u.Bio = utils.NullStringToString(bio)
	u.Field = utils.NullStringToString(field)
	u.Provider = utils.NullStringToString(provider)
	return &u, nil
}

// ScanProject lit une ligne de projects avec ses compteurs d'engagement
func ScanProject(row Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.OwnerID,
		&p.RepoURL, &p.DemoURL, pq.Array(&p.Tags), &p.Status,
		&p.Likes, &p.Comments,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ScanIdea(row Row) (*model.Idea, error) {
	var i model.Idea
	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.OwnerID,
		pq.Array(&i.Tags), &i.Likes, &i.Comments,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func ScanChallenge(row Row) (*model.Challenge, error) {
	var c model.Challenge
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty,
		&c.Points, &c.Badge, &c.StartDate, &c.EndDate, &c.Status,
		pq.Array(&c.Tags), &c.IsOfficial, &c.CreatedBy,
		&c.Participants, &c.Completions, &c.Likes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ScanComment(row Row) (*model.Comment, error) {
	var c model.Comment
	var authorName string
	var authorAvatar sql.NullString
	err := row.Scan(
		&c.ID, &c.EntityType, &c.EntityID, &c.AuthorID, &c.Body, &c.CreatedAt,
		&authorName, &authorAvatar,
	)
	if err != nil {
		return nil, err
	}
	c.Author = &model.UserCreator{
		ID:     c.AuthorID,
		Name:   authorName,
		Avatar: utils.NullStringToString(authorAvatar),
	}
	return &c, nil
}

func ScanLeaderboardEntry(row Row) (*model.LeaderboardEntry, error) {
	var e model.LeaderboardEntry
	err := row.Scan(&e.UserID, &e.UserName, &e.Avatar, &e.Xp, &e.Level, &e.Rank)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
