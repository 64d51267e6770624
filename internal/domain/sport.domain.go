package domain

type Sport struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PartnerFilter narrows partner search results. Zero values mean "any".
type PartnerFilter struct {
	SportID  int64      `json:"sport_id,omitempty"`
	MinSkill SkillLevel `json:"min_skill,omitempty"`
	Day      string     `json:"day,omitempty"`
	Gender   Gender     `json:"gender,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}

type PartnerResult struct {
	UserID     string     `json:"user_id"`
	Location   string     `json:"location"`
	Gender     Gender     `json:"gender"`
	SportID    int64      `json:"sport_id"`
	SportName  string     `json:"sport_name"`
	SkillLevel SkillLevel `json:"skill_level"`
}
