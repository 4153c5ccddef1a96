package constant

// Section indices are 1-based in progress records: "working on section 4"
// means index 4 of TotalBlueprintSections.
const (
	TotalBlueprintSections = 9

	// Token ceilings per model call. Fixed configuration, not derived
	// from input.
	ContextExpansionMaxTokens = 1024
	SectionMaxTokens          = 4096
)

// BlueprintSections lists the nine report sections in generation order.
// Sections are generated strictly sequentially; later prompts may lean on
// context accumulated from earlier ones.
var BlueprintSections = []BlueprintSection{
	{Key: "personality_profile", Title: "Personality Profile"},
	{Key: "strengths_weaknesses", Title: "Strengths & Weaknesses"},
	{Key: "career_trajectory", Title: "Career Trajectory"},
	{Key: "skill_development", Title: "Skill Development"},
	{Key: "learning_plan", Title: "Learning Plan"},
	{Key: "habits_routines", Title: "Habits & Routines"},
	{Key: "relationships_network", Title: "Relationships & Network"},
	{Key: "wellbeing", Title: "Wellbeing"},
	{Key: "action_roadmap", Title: "Action Roadmap"},
}

type BlueprintSection struct {
	Key   string
	Title string
}
