package constant

// Progress banners shown alongside the raw phase while a construction
// session advances. Keyed by the workflow phase name.
var ConstructionPhaseMessages = map[string]string{
	"welcome":        "Starting your course project",
	"info_gathering": "Collecting course information",
	"upload":         "Waiting for course materials",
	"ingestion":      "Processing uploaded materials",
	"structuring":    "Analyzing course structure",
	"quiz_gen":       "Generating quizzes",
	"validation":     "Validating the course",
	"finalization":   "Publishing the course",
	"complete":       "Course published",
}

// Tutor mode banners, keyed by the tutoring mode name.
var TutorModeMessages = map[string]string{
	"welcome":      "Warming up",
	"intake":       "Deciding what to do next",
	"explainer":    "Explaining a topic",
	"gap_analysis": "Looking for knowledge gaps",
	"quiz":         "Running a quiz",
	"grade_quiz":   "Grading your answer",
	"summarize":    "Wrapping up the session",
	"end_turn":     "Ready for your next message",
}

const (
	CoursePublishedMailSubject = "Your course is live!"

	// NATS subjects for course lifecycle events.
	SubjectCoursePublished = "course.published"
	SubjectSessionEnded    = "session.ended"
)

// PhaseMessage returns the banner for a construction phase, falling
// back to the raw phase name.
func PhaseMessage(phase string) string {
	if msg, ok := ConstructionPhaseMessages[phase]; ok {
		return msg
	}
	return phase
}

// ModeMessage returns the banner for a tutoring mode, falling back to
// the raw mode name.
func ModeMessage(mode string) string {
	if msg, ok := TutorModeMessages[mode]; ok {
		return msg
	}
	return mode
}
