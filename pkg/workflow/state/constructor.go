package state

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConstructorPhase is the named state of the course-construction
// workflow's state machine.
type ConstructorPhase string

const (
	PhaseWelcome       ConstructorPhase = "welcome"
	PhaseInfoGathering ConstructorPhase = "info_gathering"
	PhaseUpload        ConstructorPhase = "upload"
	PhaseIngestion     ConstructorPhase = "ingestion"
	PhaseStructuring   ConstructorPhase = "structuring"
	PhaseQuizGen       ConstructorPhase = "quiz_gen"
	PhaseValidation    ConstructorPhase = "validation"
	PhaseFinalization  ConstructorPhase = "finalization"
	PhaseComplete      ConstructorPhase = "complete"
)

// FileStatus transitions only forward:
// pending → processing → {completed, error}.
type FileStatus string

const (
	FilePending    FileStatus = "pending"
	FileProcessing FileStatus = "processing"
	FileCompleted  FileStatus = "completed"
	FileError      FileStatus = "error"
)

// fileRank orders statuses so a merge can reject backward transitions.
var fileRank = map[FileStatus]int{
	FilePending:    0,
	FileProcessing: 1,
	FileCompleted:  2,
	FileError:      2,
}

type UploadedFile struct {
	ID       string     `json:"id"`
	Filename string     `json:"filename"`
	Path     string     `json:"path"`
	Type     string     `json:"type"`
	Size     int64      `json:"size"`
	Status   FileStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

type ContentChunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	Index      int    `json:"index"`
	VectorID   string `json:"vector_id,omitempty"`
}

type CourseInfo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
}

// Complete reports whether enough course info has been collected to
// move past info gathering.
func (ci CourseInfo) Complete() bool {
	return ci.Title != "" && ci.Description != "" && ci.Difficulty != ""
}

type Topic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Concepts    []string `json:"concepts"`
	UnitID      string   `json:"unit_id,omitempty"`
	Order       int      `json:"order"`
}

type Unit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TopicTitles []string `json:"topic_titles"`
	Order       int      `json:"order"`
}

// CourseStructure is the unit/topic hierarchy plus the prerequisite
// map (topic title → prerequisite titles).
type CourseStructure struct {
	Units         []Unit              `json:"units"`
	Topics        []Topic             `json:"topics"`
	Prerequisites map[string][]string `json:"prerequisites"`
	Suggestions   []string            `json:"suggestions,omitempty"`
	QualityScore  float64             `json:"quality_score"`
}

// TopicByRef resolves a topic by id, then by case-insensitive title.
func (cs *CourseStructure) TopicByRef(id, title string) (*Topic, bool) {
	if cs == nil {
		return nil, false
	}
	for i := range cs.Topics {
		if id != "" && cs.Topics[i].ID == id {
			return &cs.Topics[i], true
		}
	}
	if title == "" {
		return nil, false
	}
	for i := range cs.Topics {
		if strings.EqualFold(cs.Topics[i].Title, title) {
			return &cs.Topics[i], true
		}
	}
	return nil, false
}

// Question types and difficulties used by quiz generation.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type QuizQuestion struct {
	ID            string   `json:"id"`
	TopicID       string   `json:"topic_id"`
	TopicTitle    string   `json:"topic_title"`
	Type          string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
	Rubric        string   `json:"rubric,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type DimensionResult struct {
	Status   string   `json:"status"` // pass, warn, fail
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type ValidationResult struct {
	Passed         bool                       `json:"passed"`
	ReadinessScore float64                    `json:"readiness_score"`
	Errors         []string                   `json:"errors"`
	Warnings       []string                   `json:"warnings"`
	Dimensions     map[string]DimensionResult `json:"dimensions"`
	Report         string                     `json:"report,omitempty"`
}

// ConstructorState is the full checkpointed state of one construction
// session. Mutated only by workflow steps, never by transport code.
type ConstructorState struct {
	SessionID string           `json:"session_id"`
	CreatorID string           `json:"creator_id"`
	CourseID  string           `json:"course_id,omitempty"`
	Phase     ConstructorPhase `json:"phase"`

	Info       CourseInfo        `json:"info"`
	Messages   []Message         `json:"messages"`
	Files      []UploadedFile    `json:"files"`
	Chunks     []ContentChunk    `json:"chunks"`
	Structure  *CourseStructure  `json:"structure,omitempty"`
	Questions  []QuizQuestion    `json:"questions,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`

	// SubResults holds each sub-workflow's last raw result under its
	// own namespace key.
	SubResults map[string]map[string]any `json:"sub_results,omitempty"`

	Progress float64  `json:"progress"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConstructorState creates the initial state for a session.
func NewConstructorState(sessionID, creatorID string) *ConstructorState {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now()
	return &ConstructorState{
		SessionID:  sessionID,
		CreatorID:  creatorID,
		Phase:      PhaseWelcome,
		SubResults: map[string]map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PendingFiles returns files not yet completed or failed.
func (s *ConstructorState) PendingFiles() []UploadedFile {
	var pending []UploadedFile
	for _, f := range s.Files {
		if f.Status == FilePending {
			pending = append(pending, f)
		}
	}
	return pending
}

func (s *ConstructorState) FileByID(id string) (*UploadedFile, bool) {
	for i := range s.Files {
		if s.Files[i].ID == id {
			return &s.Files[i], true
		}
	}
	return nil, false
}
