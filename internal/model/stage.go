package model

// Stage описывает стадию роста растения. Стадии упорядочены и сравниваются как числа.
type Stage int

const (
	Seed Stage = iota
	Sprout
	Seedling
	YoungPlant
	MaturePlant
	BloomingTree
)

type stageInfo struct {
	threshold   int
	name        string
	displayName string
	image       string
	motivation  string
}

var stages = [...]stageInfo{
	Seed:         {0, "Seed", "Starting Journey", "plant_seed.png", "Every financial journey starts with a single step!"},
	Sprout:       {100, "Sprout", "Money Aware", "plant_sprout.png", "You're becoming more aware of your money!"},
	Seedling:     {300, "Seedling", "Building Habits", "plant_seedling.png", "Great habits are taking root!"},
	YoungPlant:   {600, "YoungPlant", "Financially Disciplined", "plant_young.png", "Your financial discipline is growing strong!"},
	MaturePlant:  {1000, "MaturePlant", "Money-Wise", "plant_mature.png", "You've achieved money wisdom!"},
	BloomingTree: {1500, "BloomingTree", "Financially Flourishing", "plant_blooming.png", "You're financially flourishing! Share your wisdom!"},
}

// Stages возвращает все стадии в порядке возрастания.
func Stages() []Stage {
	return []Stage{Seed, Sprout, Seedling, YoungPlant, MaturePlant, BloomingTree}
}

// StageFromPoints возвращает наибольшую стадию, порог которой не превышает points.
// Для отрицательных значений возвращается Seed.
func StageFromPoints(points int) Stage {
	for s := BloomingTree; s > Seed; s-- {
		if points >= stages[s].threshold {
			return s
		}
	}
	return Seed
}

// NextStageThreshold возвращает порог следующей стадии.
// На последней стадии значение насыщается порогом BloomingTree.
func NextStageThreshold(points int) int {
	next, ok := StageFromPoints(points).Next()
	if !ok {
		return stages[BloomingTree].threshold
	}
	return next.Threshold()
}

// Valid сообщает, входит ли значение в перечисление стадий.
func (s Stage) Valid() bool {
	return s >= Seed && s <= BloomingTree
}

// Next возвращает следующую стадию и false, если текущая последняя.
func (s Stage) Next() (Stage, bool) {
	if !s.Valid() || s == BloomingTree {
		return s, false
	}
	return s + 1, true
}

// Threshold возвращает минимальное количество баллов для стадии.
func (s Stage) Threshold() int {
	if !s.Valid() {
		return 0
	}
	return stages[s].threshold
}

func (s Stage) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stages[s].name
}

// DisplayName возвращает человекочитаемое название стадии.
func (s Stage) DisplayName() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stages[s].displayName
}

// ImageName возвращает имя файла изображения растения.
func (s Stage) ImageName() string {
	if !s.Valid() {
		return stages[Seed].image
	}
	return stages[s].image
}

// Motivation возвращает мотивирующее сообщение для стадии.
func (s Stage) Motivation() string {
	if !s.Valid() {
		return "Keep growing your financial wellness!"
	}
	return stages[s].motivation
}
