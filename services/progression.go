package services

import "math"

// LevelConfig: XP needed for *next* level (e.g., level 1 → 2 needs BaseXPPerLevel * 1^1.2)
const BaseXPPerLevel = 100

// MaxLevel bounds the derivation loop; beyond this the curve stays flat.
const MaxLevel = 500

// xpForNextLevel returns XP required to go from currentLevel to currentLevel+1.
// L_n = floor(BaseXPPerLevel * n^1.2)
func xpForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	return int64(float64(BaseXPPerLevel) * math.Pow(float64(currentLevel), 1.2))
}

// LevelForXP derives level from total XP. Pure and monotonic: it is recomputed
// on every award, so a stored level can never drift from the stored XP.
func LevelForXP(xp int64) int {
	level := 1
	var spent int64
	for level < MaxLevel {
		need := xpForNextLevel(level)
		if xp < spent+need {
			break
		}
		spent += need
		level++
	}
	return level
}

// TierThresholds: minimum level per tier.
// Bronze→Silver at level 10, Silver→Gold at 25, etc.
var TierThresholds = map[int]int{
	1: 1,   // Bronze (start)
	2: 10,  // Silver
	3: 25,  // Gold
	4: 50,  // Platinum
	5: 100, // Diamond
}

// TierForLevel derives the prestige tier from level. Pure and monotonic.
func TierForLevel(level int) int {
	for tier := 5; tier >= 1; tier-- {
		if level >= TierThresholds[tier] {
			return tier
		}
	}
	return 1
}

var tierNames = map[int]string{
	1: "Bronze",
	2: "Silver",
	3: "Gold",
	4: "Platinum",
	5: "Diamond",
}

func TierName(tier int) string {
	if name, ok := tierNames[tier]; ok {
		return name
	}
	return "Unknown"
}

// ProgressionReport describes what an XP change did to level and tier.
type ProgressionReport struct {
	NewLevel    int
	NewTier     int
	LeveledUp   bool
	TierChanged bool
}

// AdvanceProgression recomputes level and tier from the new XP total and
// compares against the previous derivations.
func AdvanceProgression(oldXP, newXP int64) ProgressionReport {
	oldLevel := LevelForXP(oldXP)
	newLevel := LevelForXP(newXP)
	oldTier := TierForLevel(oldLevel)
	newTier := TierForLevel(newLevel)
	return ProgressionReport{
		NewLevel:    newLevel,
		NewTier:     newTier,
		LeveledUp:   newLevel > oldLevel,
		TierChanged: newTier > oldTier,
	}
}
