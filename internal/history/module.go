package history

// Module identifies one of the six teaching modules, each with its own
// independently persisted history list.
type Module string

const (
	ModuleContent    Module = "content"
	ModuleWorksheets Module = "worksheets"
	ModuleQuestions  Module = "questions"
	ModuleVisuals    Module = "visuals"
	ModuleAssessment Module = "assessments"
	ModuleLessons    Module = "lesson_plans"
)

var storageKeys = map[Module]string{
	ModuleContent:    "sahayak_past_content",
	ModuleWorksheets: "sahayak_past_worksheets",
	ModuleQuestions:  "sahayak_past_questions",
	ModuleVisuals:    "sahayak_past_visuals",
	ModuleAssessment: "sahayak_past_assessments",
	ModuleLessons:    "sahayak_past_lesson_plans",
}

// StorageKey returns the store key the module's history list lives under.
func (m Module) StorageKey() string {
	return storageKeys[m]
}

// Cap returns the module's history limit; the content module keeps its full
// history, every other module retains only the most recent entries.
func (m Module) Cap(defaultCap int) int {
	if m == ModuleContent {
		return 0
	}
	return defaultCap
}

// Valid reports whether m names a known module.
func (m Module) Valid() bool {
	_, ok := storageKeys[m]
	return ok
}

// Modules lists all modules in dashboard display order.
func Modules() []Module {
	return []Module{
		ModuleContent,
		ModuleWorksheets,
		ModuleQuestions,
		ModuleVisuals,
		ModuleAssessment,
		ModuleLessons,
	}
}
