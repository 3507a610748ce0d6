package domain

// XPPerLevel is the threshold step: a user at level L levels up once their
// xp reaches L*XPPerLevel.
const XPPerLevel = 100

// Completion describes the outcome of a successful task completion.
type Completion struct {
	TaskID    int64 `json:"task_id"`
	XPGained  int   `json:"xp_gained"`
	LeveledUp bool  `json:"leveled_up"`
	NewLevel  int   `json:"new_level"`
	TotalXP   int   `json:"total_xp"`
}

// ApplyCompletion credits reward to the user and applies the leveling rule.
//
// The threshold is checked once, so a user advances at most one level per
// completion even when the reward crosses several multiples of XPPerLevel.
func ApplyCompletion(user *User, taskID int64, reward int) Completion {
	user.XP += reward
	leveledUp := false
	if user.XP >= user.Level*XPPerLevel {
		user.Level++
		leveledUp = true
	}
	user.TasksCompleted++

	return Completion{
		TaskID:    taskID,
		XPGained:  reward,
		LeveledUp: leveledUp,
		NewLevel:  user.Level,
		TotalXP:   user.XP,
	}
}
