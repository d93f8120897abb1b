package scripting_test

import "github.com/cory-johannsen/skirmish/internal/game/entity"

type fixedDraw float64

func (f fixedDraw) Intn(int) int     { return 0 }
func (f fixedDraw) Float64() float64 { return float64(f) }

func statsAt(level int) *entity.StatsProfile {
	s := &entity.StatsProfile{Hitpoints: 10, MaxHitpoints: 10}
	for sk := entity.SkillAttack; sk < entity.NumSkills; sk++ {
		s.Skills[sk] = entity.SkillLevel{Level: level}
	}
	return s
}
