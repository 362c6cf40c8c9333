// Package notify enregistre les événements de notification produits par le
// moteur de cohérence. La livraison (push, email...) est assurée ailleurs :
// ici on ne fait que journaliser l'événement en base.
package notify

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/utils"
)

type PgNotifier struct {
	pool *pgxpool.Pool
}

func NewPgNotifier(pool *pgxpool.Pool) *PgNotifier {
	return &PgNotifier{pool: pool}
}

func (n *PgNotifier) Notify(ctx context.Context, ev model.NotificationEvent) error {
	_, err := n.pool.Exec(ctx, `
		INSERT INTO notifications (type, actor_id, author_id, amount, reason, source_id, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, NULLIF($6, '')::uuid, $7)`,
		ev.Type, ev.ActorID, ev.AuthorID, ev.Amount, ev.Reason, ev.SourceID, ev.CreatedAt)
	if err != nil {
		utils.LogError("notification non enregistrée (%s): %v", ev.Type, err)
	}
	return err
}
