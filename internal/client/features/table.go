package features

// Feature identifiers known to the client.
const (
	ProfileView          = "profile_view"
	ResumeBasic          = "resume_basic"
	CRSView              = "crs_view"
	JobSearchBasic       = "job_search_basic"
	JobMatchBasic        = "job_match_basic"
	InterviewPrepBasic   = "interview_prep_basic"
	AdvancedJobMatching  = "advanced_job_matching"
	AIInterviewCoach     = "ai_interview_coach"
	SalaryInsights       = "salary_insights"
	MentorAccess         = "mentor_access"
	PriorityApplications = "priority_applications"
)

// Level is a CRS tier.
type Level struct {
	Number   int
	Name     string
	MinScore int
}

var (
	LevelFoundation = Level{Number: 1, Name: "Foundation", MinScore: 0}
	LevelDeveloping = Level{Number: 2, Name: "Developing", MinScore: 41}
	LevelProficient = Level{Number: 3, Name: "Proficient", MinScore: 61}
	LevelExpert     = Level{Number: 4, Name: "Expert", MinScore: 81}
)

// Levels is ordered by MinScore.
var Levels = []Level{LevelFoundation, LevelDeveloping, LevelProficient, LevelExpert}

// LevelForScore returns the highest level whose threshold score reaches.
func LevelForScore(score int) Level {
	lvl := LevelFoundation
	for _, l := range Levels {
		if score >= l.MinScore {
			lvl = l
		}
	}
	return lvl
}

// ThresholdTable maps a feature to the level that unlocks it.
type ThresholdTable map[string]Level

// DefaultTable is used when the server snapshot cannot decide.
var DefaultTable = ThresholdTable{
	ProfileView:          LevelFoundation,
	ResumeBasic:          LevelFoundation,
	CRSView:              LevelFoundation,
	JobSearchBasic:       LevelFoundation,
	JobMatchBasic:        LevelDeveloping,
	InterviewPrepBasic:   LevelDeveloping,
	AdvancedJobMatching:  LevelProficient,
	AIInterviewCoach:     LevelProficient,
	SalaryInsights:       LevelProficient,
	MentorAccess:         LevelExpert,
	PriorityApplications: LevelExpert,
}

// BasicFeatures stay available when nothing else is known.
var BasicFeatures = map[string]struct{}{
	ProfileView:    {},
	ResumeBasic:    {},
	CRSView:        {},
	JobSearchBasic: {},
}
