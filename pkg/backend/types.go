package backend

import "io"

// ContentRequest asks the backend for teaching content on a topic.
type ContentRequest struct {
	Topic       string `json:"topic"`
	ContentType string `json:"contentType"`
	GradeLevel  string `json:"gradeLevel"`
	Language    string `json:"language"`
	Length      string `json:"length"`
}

// KnowledgeRequest asks the backend to answer a student question.
type KnowledgeRequest struct {
	Question   string `json:"question"`
	Language   string `json:"language"`
	GradeLevel string `json:"gradeLevel"`
	Length     string `json:"length"`
}

// LessonRequest asks the backend for a lesson plan.
type LessonRequest struct {
	Topic      string `json:"topic"`
	Subject    string `json:"subject"`
	GradeLevel string `json:"grade_level"`
	Language   string `json:"language"`
}

// WorksheetRequest asks the backend to derive per-grade worksheets from a
// textbook page image, passed as a data URL.
type WorksheetRequest struct {
	Image   string   `json:"image"`
	Grades  []string `json:"grades"`
	Subject string   `json:"subject"`
}

// ReadingTextRequest asks the backend for a practice passage to read aloud.
type ReadingTextRequest struct {
	GradeLevel string `json:"grade_level"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
	WordLimit  int    `json:"word_limit"`
}

// AnalyzeRequest submits a recorded reading for scoring. Audio is streamed
// as one part of a multipart form.
type AnalyzeRequest struct {
	Audio        io.Reader
	AudioName    string
	OriginalText string
	Language     string
	GradeLevel   string
	WordLimit    int
}

// AssessmentReport is the backend's scoring of a reading recording.
type AssessmentReport struct {
	OverallScore  float64  `json:"overall_score"`
	Accuracy      float64  `json:"accuracy"`
	Fluency       float64  `json:"fluency"`
	Pronunciation float64  `json:"pronunciation"`
	Transcription string   `json:"transcription"`
	Feedback      string   `json:"feedback"`
	Suggestions   []string `json:"suggestions"`
}

type contentResponse struct {
	Content string `json:"content"`
}

type knowledgeResponse struct {
	Answer string `json:"answer"`
}

type lessonResponse struct {
	LessonPlan string `json:"lesson_plan"`
}

type worksheetResponse struct {
	Worksheets map[string]string `json:"worksheets"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

type readingTextResponse struct {
	Text string `json:"text"`
}
