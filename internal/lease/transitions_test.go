package lease

import (
	"testing"

	"immobilien-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTransitionEffect(t *testing.T) {
	tests := []struct {
		name string
		old  models.LeaseStatus
		new  models.LeaseStatus
		want UnitEffect
	}{
		{"aktivasyon birimi doldurur", models.LeaseDraft, models.LeaseActive, EffectOccupy},
		{"bitiş birimi boşaltır", models.LeaseActive, models.LeaseEnded, EffectVacate},
		{"fesih bildirimi birime dokunmaz", models.LeaseActive, models.LeaseTerminated, EffectNone},
		{"aynı statü no-op", models.LeaseActive, models.LeaseActive, EffectNone},
		{"ended kalırsa no-op", models.LeaseEnded, models.LeaseEnded, EffectNone},
		{"terminated'dan ended'e boşaltır", models.LeaseTerminated, models.LeaseEnded, EffectVacate},
		{"terminated'dan aktife doldurur", models.LeaseTerminated, models.LeaseActive, EffectOccupy},
		{"draft'a dönüş no-op", models.LeaseActive, models.LeaseDraft, EffectNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransitionEffect(tt.old, tt.new))
		})
	}
}

func TestApplyEffect(t *testing.T) {
	assert.Equal(t, models.UnitOccupied, ApplyEffect(models.UnitVacant, EffectOccupy))
	assert.Equal(t, models.UnitVacant, ApplyEffect(models.UnitOccupied, EffectVacate))
	assert.Equal(t, models.UnitUnderRenovation, ApplyEffect(models.UnitUnderRenovation, EffectNone))
}
