package services

import "github.com/neetrino/whiteshop/internal/models"

// MatchVariant trouve la meilleure variante pour les options sélectionnées
// (couleur, taille, attributs libres). Cascade, dans l'ordre :
//  1. correspondance exacte — toutes les options de la variante égalent la
//     sélection (en stock d'abord) ;
//  2. correspondance partielle — le plus d'options en commun, aucune
//     contradiction (en stock d'abord) ;
//  3. n'importe quelle variante en stock.
//
// Recherche linéaire déterministe : à score égal, la première variante gagne.
func MatchVariant(variants []models.ProductVariant, selected map[string]string) *models.ProductVariant {
	var exactInStock, exact *models.ProductVariant
	var partial *models.ProductVariant
	partialScore := 0
	var anyInStock *models.ProductVariant

	for i := range variants {
		v := &variants[i]
		if !v.IsActive {
			continue
		}
		if anyInStock == nil && v.Stock > 0 {
			anyInStock = v
		}
		if len(selected) == 0 {
			continue
		}

		matched, contradicted := 0, 0
		for name, want := range selected {
			got, ok := v.Options.Get(name)
			if !ok {
				continue
			}
			if got == want {
				matched++
			} else {
				contradicted++
			}
		}

		// Une option contraire disqualifie la variante
		if contradicted > 0 {
			continue
		}

		if matched == len(selected) && len(v.Options) == len(selected) {
			if v.Stock > 0 && exactInStock == nil {
				exactInStock = v
			}
			if exact == nil {
				exact = v
			}
			continue
		}

		if matched > 0 {
			better := matched > partialScore ||
				(matched == partialScore && partial != nil && partial.Stock <= 0 && v.Stock > 0)
			if better {
				partial = v
				partialScore = matched
			}
		}
	}

	switch {
	case exactInStock != nil:
		return exactInStock
	case exact != nil:
		return exact
	case partial != nil:
		return partial
	default:
		return anyInStock
	}
}
