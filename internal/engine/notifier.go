package engine

import (
	"context"

	model "github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/models"
)

// Notifier est le contrat du collaborateur de livraison des notifications.
// L'émission est best-effort : elle a lieu après le commit de l'unité de
// travail et ne fait pas partie de la garantie d'atomicité.
type Notifier interface {
	Notify(ctx context.Context, event model.NotificationEvent) error
}

// NopNotifier ignore tous les événements (utile en test)
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, event model.NotificationEvent) error { return nil }
