package dto

import "time"

// StatsSnapshot holds the recomputed per-module history counts. It is never
// persisted as source of truth; each field equals the length of its store at
// the moment of recomputation.
type StatsSnapshot struct {
	StoriesGenerated     int `json:"storiesGenerated"`
	WorksheetsCreated    int `json:"worksheetsCreated"`
	QuestionsAnswered    int `json:"questionsAnswered"`
	VisualsGenerated     int `json:"visualsGenerated"`
	AssessmentsCompleted int `json:"assessmentsCompleted"`
	LessonPlans          int `json:"lessonPlans"`
}

// ActivityLogEntry is one line of the advisory recent-activity log.
type ActivityLogEntry struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Color       string    `json:"color"`
}

// DashboardResponse bundles the stats snapshot with the recent activities.
type DashboardResponse struct {
	Stats      StatsSnapshot      `json:"stats"`
	Activities []ActivityLogEntry `json:"activities"`
}
