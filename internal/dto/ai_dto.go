package dto

// Classroom insight request/response shapes, mirroring the inference
// provider's JSON contract.

type StudentMetrics struct {
	Name       string `json:"name"`
	ActiveTime int    `json:"active_time"`
	IdleTime   int    `json:"idle_time"`
	Switches   int    `json:"switches"`
	CurrentApp string `json:"current_app"`
	Violations int    `json:"violations"`
	Progress   int    `json:"progress"`
}

type ClassroomInsightsRequest struct {
	Students map[string]StudentMetrics `json:"students"`
}

type AttentionItem struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Urgency string `json:"urgency"`
	Action  string `json:"action"`
}

type ClassroomInsights struct {
	EngagementPercentage int             `json:"engagement_percentage"`
	Status               string          `json:"status"`
	AttentionNeeded      []AttentionItem `json:"attention_needed"`
	PositiveMoments      []string        `json:"positive_moments"`
	ClassMood            string          `json:"class_mood,omitempty"`
	Recommendation       string          `json:"recommendation"`
	PredictedIssues      []string        `json:"predicted_issues,omitempty"`
}

// Per-screen code analysis.

type StudentScreen struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	Screenshot string `json:"screenshot"`
}

type CheckAllCodeRequest struct {
	Students []StudentScreen `json:"students"`
	Language string          `json:"language,omitempty"`
}

type CodeIssue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Line        *int   `json:"line"`
	Severity    string `json:"severity"`
}

type CodeAnalysis struct {
	HasCode          bool        `json:"has_code"`
	LanguageDetected string      `json:"language_detected,omitempty"`
	Status           string      `json:"status"`
	Issues           []CodeIssue `json:"issues"`
	PositiveAspects  []string    `json:"positive_aspects,omitempty"`
	Suggestions      []string    `json:"suggestions,omitempty"`
	Confidence       int         `json:"confidence"`
}

type StudentIssues struct {
	Name   string      `json:"name"`
	Issues []CodeIssue `json:"issues"`
}

// BatchCodeResults buckets every checked student by analysis status.
type BatchCodeResults struct {
	Correct   []string        `json:"correct"`
	HasIssues []StudentIssues `json:"has_issues"`
	Errors    []StudentIssues `json:"errors"`
	NoCode    []string        `json:"no_code"`
	OffTask   []string        `json:"off_task"`
}

// Smart message suggestions.

type StudentContext struct {
	Name            string   `json:"name"`
	CurrentActivity string   `json:"current_activity,omitempty"`
	DistractionTime int      `json:"distraction_time,omitempty"`
	Progress        int      `json:"progress,omitempty"`
	Issues          []string `json:"issues,omitempty"`
	TimeLeft        int      `json:"time_left,omitempty"`
	Personality     string   `json:"personality,omitempty"`
}

type MessageSuggestions struct {
	Encouraging string `json:"encouraging"`
	Direct      string `json:"direct"`
	Helpful     string `json:"helpful"`
}
