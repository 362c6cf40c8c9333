package engine

import (
	"errors"
	"fmt"
)

// Erreurs typées du moteur. Les issues idempotentes (déjà liké, déjà suivi...)
// ne sont PAS des erreurs : elles sont retournées comme résultats nommés.
var (
	// ErrUserNotFound : l'utilisateur visé n'existe plus au moment de la lecture
	ErrUserNotFound = errors.New("utilisateur introuvable")

	// ErrContentNotFound : le contenu ciblé par l'engagement n'existe pas
	ErrContentNotFound = errors.New("contenu introuvable")

	// ErrSkillNotFound : la compétence n'existe pas sur le profil visé
	ErrSkillNotFound = errors.New("compétence introuvable")

	// ErrSelfEndorsement : un utilisateur ne peut pas endorser sa propre compétence
	ErrSelfEndorsement = errors.New("impossible d'endorser sa propre compétence")

	// ErrSelfFollow : un utilisateur ne peut pas se suivre lui-même
	ErrSelfFollow = errors.New("impossible de se suivre soi-même")

	// ErrInvalidAmount : montant d'XP invalide pour la source donnée
	ErrInvalidAmount = errors.New("montant d'XP invalide")

	// ErrInvalidReaction : type de réaction inconnu
	ErrInvalidReaction = errors.New("type de réaction invalide")

	// ErrInvalidSkillRef : la référence de compétence doit désigner soit un id
	// existant, soit un nouveau nom, mais pas les deux (ni aucun)
	ErrInvalidSkillRef = errors.New("référence de compétence invalide")

	// ErrInvalidSkillLevel : le niveau d'une compétence va de 1 à 5
	ErrInvalidSkillLevel = errors.New("le niveau de compétence doit être entre 1 et 5")

	// ErrTxConflict est retournée par un Store quand la transaction a perdu un
	// conflit de concurrence et peut être rejouée depuis le début.
	ErrTxConflict = errors.New("conflit de transaction")

	// ErrConsistencyTimeout : l'unité de travail n'a pas pu être validée après
	// le nombre maximal de tentatives. Aucun état partiel n'est laissé ;
	// l'appelant peut rejouer l'action entière.
	ErrConsistencyTimeout = errors.New("transaction impossible à valider, réessayez")
)

// StorageError enveloppe une défaillance I/O du stockage sous-jacent
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("erreur de stockage (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
