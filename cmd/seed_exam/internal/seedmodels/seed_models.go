package seedmodels

import (
	"encoding/json"
	"time"
)

// SeedAccount defines a participant login in the JSON seed file.
type SeedAccount struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Password      string `json:"password"`
}

// SeedTask defines one task of the seeded exam.
type SeedTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// SeedExam defines the exam assigned to AssignTo.
type SeedExam struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	ScenarioBrief   string          `json:"scenario_brief"`
	Constraints     []string        `json:"constraints"`
	SuccessCriteria []string        `json:"success_criteria"`
	Tasks           []SeedTask      `json:"tasks"`
	VerdictRules    json.RawMessage `json:"verdict_rules"`
	AssignTo        string          `json:"assign_to"`
}

// SeedSlot defines a finish slot.
type SeedSlot struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// SeedFile is the root of the seed document.
type SeedFile struct {
	Accounts []SeedAccount `json:"accounts"`
	Exams    []SeedExam    `json:"exams"`
	Slots    []SeedSlot    `json:"slots"`
}
