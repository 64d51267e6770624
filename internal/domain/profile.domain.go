package domain

import "time"

// Setup steps. A profile is complete only after StepFinish commits.
const (
	StepPersonal = 1 // demographics
	StepSports   = 2 // sport preferences
	StepSchedule = 3 // weekly availability (optional content)
	StepFinish   = 4 // terms + finalization, flips ProfileComplete
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

func ValidWeekday(day string) bool {
	_, ok := weekdays[day]
	return ok
}

type UserProfile struct {
	UserID          string     `json:"user_id"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Gender          Gender     `json:"gender,omitempty"`
	Location        string     `json:"location,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	SetupStep       int        `json:"setup_step"`
	ProfileComplete bool       `json:"profile_complete"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	SportPreferences []SportPreference `json:"sport_preferences,omitempty"`
	WeeklySchedule   []ScheduleSlot    `json:"weekly_schedule,omitempty"`
}

type SportPreference struct {
	SportID     int64      `json:"sport_id"`
	SportName   string     `json:"sport_name,omitempty"`
	SkillLevel  SkillLevel `json:"skill_level"`
	IsPreferred bool       `json:"is_preferred"`
	Position    int        `json:"position"`
}

// ScheduleSlot times are "HH:MM", end strictly after start.
type ScheduleSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Step payloads as submitted by the client.

type Step1Request struct {
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Location  string `json:"location"`
}

type Step2Request struct {
	SportPreferences []SportPreferenceInput `json:"sport_preferences"`
}

type SportPreferenceInput struct {
	SportID     int64  `json:"sport_id"`
	SkillLevel  string `json:"skill_level"`
	IsPreferred bool   `json:"is_preferred,omitempty"`
}

type Step3Request struct {
	Schedule []ScheduleSlotInput `json:"schedule"`
}

// ScheduleSlotInput rows with any missing field are dropped during
// normalization, not rejected.
type ScheduleSlotInput struct {
	Day       string `json:"day,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type Step4Request struct {
	AcceptTerms bool   `json:"accept_terms"`
	Bio         string `json:"bio,omitempty"`
}

// SetupStatus is returned to the client after every step submission.
type SetupStatus struct {
	SetupStep       int  `json:"setup_step"`
	ProfileComplete bool `json:"profile_complete"`
}
