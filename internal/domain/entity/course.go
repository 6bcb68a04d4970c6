package entity

import "time"

// Skill levels a course may require.
var SkillLevels = []string{"beginner", "intermediate", "advanced"}

type Course struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Weeks                string    `json:"weeks"`
	Tuition              float64   `json:"tuition"`
	MinimumSkill         string    `json:"minimumSkill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`
	Bootcamp             string    `json:"bootcamp"`
	User                 string    `json:"user"`
}

func (c *Course) OwnedBy(userID string) bool {
	return c.User == userID
}
