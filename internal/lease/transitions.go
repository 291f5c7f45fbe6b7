package lease

import "immobilien-backend/internal/models"

// UnitEffect - Sözleşme statü geçişinin birim statüsüne etkisi
type UnitEffect int

const (
	EffectNone UnitEffect = iota
	EffectOccupy
	EffectVacate
)

// transitionTable - Hangi hedef statünün birimi nasıl etkilediği.
// Geçiş kuralları:
//   aktif olmayan -> aktif  : birim dolu (occupied)
//   bitmemiş      -> ended  : birim boş (vacant)
//   diğer tüm geçişler      : etkisiz
var transitionTable = map[models.LeaseStatus]UnitEffect{
	models.LeaseActive: EffectOccupy,
	models.LeaseEnded:  EffectVacate,
}

// TransitionEffect - (eski, yeni) statü çiftinden birim etkisini üretir.
// Statü değişmiyorsa hiçbir etki yoktur; aynı statüye tekrar geçiş
// birim durumunu bozamaz.
func TransitionEffect(old, new models.LeaseStatus) UnitEffect {
	if old == new {
		return EffectNone
	}
	if effect, ok := transitionTable[new]; ok {
		return effect
	}
	return EffectNone
}

// ApplyEffect - Etkiyi birim statüsüne çevirir, etkisizse mevcut statü korunur
func ApplyEffect(current models.UnitStatus, effect UnitEffect) models.UnitStatus {
	switch effect {
	case EffectOccupy:
		return models.UnitOccupied
	case EffectVacate:
		return models.UnitVacant
	default:
		return current
	}
}
