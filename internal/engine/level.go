package engine

import "math"

// LevelOf calcule le niveau correspondant à un total d'XP.
// Formule unique : niveau = floor(1 + sqrt(xp / 100)).
// C'est la seule implémentation du barème — le journal XP et le cache de
// solde l'utilisent tous les deux, ils ne peuvent donc jamais diverger.
func LevelOf(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(1 + math.Sqrt(float64(xp)/100)))
}
