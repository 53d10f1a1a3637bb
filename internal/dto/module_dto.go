package dto

import "github.com/sahayak-edu/sahayak-api/internal/history"

// ContentGenerateRequest is the content module's form input.
type ContentGenerateRequest struct {
	Topic       string `json:"topic" validate:"required"`
	ContentType string `json:"contentType" validate:"required,oneof=explanation story example activity"`
	GradeLevel  string `json:"gradeLevel" validate:"required"`
	Language    string `json:"language" validate:"required"`
	Length      string `json:"length" validate:"required,oneof=short medium long"`
}

// ContentGenerateResponse carries the generated text and its history entry.
type ContentGenerateResponse struct {
	Content string        `json:"content"`
	Entry   history.Entry `json:"entry"`
}

// KnowledgeAskRequest is the knowledge module's form input.
type KnowledgeAskRequest struct {
	Question   string `json:"question" validate:"required"`
	Language   string `json:"language" validate:"required"`
	GradeLevel string `json:"gradeLevel" validate:"required"`
	Length     string `json:"length" validate:"required,oneof=short medium long"`
}

// KnowledgeAskResponse carries the answer and its history entry.
type KnowledgeAskResponse struct {
	Answer string        `json:"answer"`
	Entry  history.Entry `json:"entry"`
}

// LessonGenerateRequest is the lesson planner's form input.
type LessonGenerateRequest struct {
	Topic      string `json:"topic" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
	GradeLevel string `json:"grade_level" validate:"required"`
	Language   string `json:"language" validate:"required"`
}

// LessonGenerateResponse carries the lesson plan and its history entry.
type LessonGenerateResponse struct {
	LessonPlan string        `json:"lesson_plan"`
	Entry      history.Entry `json:"entry"`
}

// WorksheetGenerateRequest is the worksheet module's form input; Image is a
// data URL of a photographed textbook page.
type WorksheetGenerateRequest struct {
	Image   string   `json:"image" validate:"required,startswith=data:"`
	Grades  []string `json:"grades" validate:"required,min=1,dive,required"`
	Subject string   `json:"subject" validate:"required"`
}

// WorksheetGenerateResponse maps grade levels to worksheet text.
type WorksheetGenerateResponse struct {
	Worksheets map[string]string `json:"worksheets"`
	Entry      history.Entry     `json:"entry"`
}

// VisualGenerateRequest is the visual-aid module's form input.
type VisualGenerateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Style  string `json:"style" validate:"omitempty,oneof=simple detailed diagram chart"`
}

// VisualGenerateResponse carries the image URL and its history entry.
type VisualGenerateResponse struct {
	ImageURL string        `json:"imageUrl"`
	Entry    history.Entry `json:"entry"`
}

// ReadingTextRequest asks for a practice passage to read aloud.
type ReadingTextRequest struct {
	GradeLevel string `json:"grade_level" validate:"required"`
	Language   string `json:"language" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	WordLimit  int    `json:"word_limit" validate:"required,min=10,max=500"`
}

// ReadingTextResponse carries the generated passage.
type ReadingTextResponse struct {
	Text string `json:"text"`
}

// AssessmentAnalyzeResponse carries the scoring report and its history entry.
type AssessmentAnalyzeResponse struct {
	OverallScore  float64       `json:"overall_score"`
	Accuracy      float64       `json:"accuracy"`
	Fluency       float64       `json:"fluency"`
	Pronunciation float64       `json:"pronunciation"`
	Transcription string        `json:"transcription"`
	Feedback      string        `json:"feedback"`
	Suggestions   []string      `json:"suggestions"`
	Entry         history.Entry `json:"entry"`
}

// HistoryResponse lists a module's persisted entries, newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// LanguagePreference is the persisted UI language choice.
type LanguagePreference struct {
	Language string `json:"language" validate:"required"`
}
