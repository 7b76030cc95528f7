package player

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
)

func TestModifySkillRespectsWoodenLegCap(t *testing.T) {
	p := New()
	p.Image.WoodenLeg = true
	p.Skills[skill.Quickness] = skill.WoodenLegQuicknessCap
	p.ModifySkill(skill.Quickness, 5)
	if p.Skills[skill.Quickness] != skill.WoodenLegQuicknessCap {
		t.Fatalf("expected quickness pinned at cap %v, got %v", skill.WoodenLegQuicknessCap, p.Skills[skill.Quickness])
	}
}

func TestModifySkillBelowCapStillIncreases(t *testing.T) {
	p := New()
	p.Image.WoodenLeg = true
	p.Skills[skill.Quickness] = 1.0
	p.ModifySkill(skill.Quickness, 1.0)
	if p.Skills[skill.Quickness] != 2.0 {
		t.Fatalf("expected quickness to grow below cap, got %v", p.Skills[skill.Quickness])
	}
}

func TestKnockedOutForcesZeroMorale(t *testing.T) {
	p := New()
	p.Morale = 10
	p.AddTiredness(skill.MaxSkill)
	if !p.IsKnockedOut() {
		t.Fatalf("expected player to be knocked out at max tiredness")
	}
	if p.Morale != 0 {
		t.Fatalf("expected morale forced to 0 on knockout, got %v", p.Morale)
	}
}

func TestSkillsStayWithinBounds(t *testing.T) {
	p := New()
	for i := skill.Index(0); i < skill.Count; i++ {
		p.ModifySkill(i, 1000)
	}
	p.Skills.Clamp()
	for i, v := range p.Skills {
		if v < 0 || v > skill.MaxSkill {
			t.Fatalf("skill %d out of bounds: %v", i, v)
		}
	}
}

func TestApplyLongTickResetsTrainingAccumulator(t *testing.T) {
	p := New()
	p.SkillsTraining[skill.Quickness] = 0.3
	p.ApplyLongTick()
	if p.SkillsTraining != (skill.Values{}) {
		t.Fatalf("expected training accumulator reset after LONG tick, got %+v", p.SkillsTraining)
	}
}

func TestCrumiroExemptFromMoraleAndSkillDecay(t *testing.T) {
	p := New()
	trait := Crumiro
	p.SpecialTrait = &trait
	p.Morale = 15
	p.Skills[skill.Quickness] = 10
	p.ApplyLongTick()
	if p.Morale != 15 {
		t.Fatalf("expected Crumiro morale untouched, got %v", p.Morale)
	}
	if p.Skills[skill.Quickness] != 10 {
		t.Fatalf("expected Crumiro skills untouched, got %v", p.Skills[skill.Quickness])
	}
	if p.Reputation != 0 {
		t.Fatalf("expected Crumiro reputation zeroed, got %v", p.Reputation)
	}
}

func TestNewRandomProducesValidSkills(t *testing.T) {
	r := rng.Deterministic(1, 2, 3)
	p := NewRandom(ids.NewPlanetId(), Human, r)
	for i, v := range p.Skills {
		if v < 0 || v > skill.MaxSkill {
			t.Fatalf("generated skill %d out of bounds: %v", i, v)
		}
	}
	if p.Potential < p.AverageSkill() {
		t.Fatalf("expected potential >= average skill, got potential=%v avg=%v", p.Potential, p.AverageSkill())
	}
}

func TestShouldRetireNeverFiresBelowThreshold(t *testing.T) {
	p := New()
	p.Info.Population = Human
	p.Info.Age = Human.MinAge()
	r := rng.Deterministic(5, 6, 7)
	if p.ShouldRetire(r) {
		t.Fatalf("expected no retirement at minimum age")
	}
}
