package survey

import "fmt"

// Stage is one node of the session state machine
type Stage int

const (
	StageIntro Stage = iota
	StageParticipantInfo
	StageInstruction
	StageStory
	StagePreQuestions
	StageQuestions
	StageComplete
	// StageAdmin is a side entry from intro; it is not on the participant's path
	StageAdmin
)

var stageNames = [...]string{
	StageIntro:           "intro",
	StageParticipantInfo: "participant_info",
	StageInstruction:     "instruction",
	StageStory:           "story",
	StagePreQuestions:    "pre_questions",
	StageQuestions:       "questions",
	StageComplete:        "complete",
	StageAdmin:           "admin",
}

// AllStages returns every stage, forward path first
func AllStages() []Stage {
	return []Stage{
		StageIntro,
		StageParticipantInfo,
		StageInstruction,
		StageStory,
		StagePreQuestions,
		StageQuestions,
		StageComplete,
		StageAdmin,
	}
}

// ForwardPath returns the participant stages in order
func ForwardPath() []Stage {
	return AllStages()[:StageAdmin]
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is a declared stage
func (s Stage) Valid() bool {
	return s >= StageIntro && s <= StageAdmin
}

// ParseStage converts a wire tag back to a Stage
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// MarshalText encodes the stage as its tag so stored sessions stay readable
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot encode invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
