package recommend

import "codecoach/internal/complexity"

// Tip is a style-specific suggestion, shown when When is nil or holds.
type Tip struct {
	Text string
	When func(Analysis) bool
}

// StyleBundle is the static content for one learning style.
type StyleBundle struct {
	Name          string
	Description   string
	LearningStyle string
	FocusAreas    []string
	Feedback      string
	Tips          []Tip
	Resources     []Resource
	NextSteps     []string
	Strengths     []string
	GrowthAreas   []string
}

func slow(a Analysis) bool      { return a.Time.AtLeast(complexity.ON2) }
func recursive(a Analysis) bool { return a.UsesRecursion }
func lowQuality(a Analysis) bool {
	return a.QualityScore < 70
}

// StyleBundles holds the content for each style dimension.
var StyleBundles = map[Style]StyleBundle{
	Analytical: {
		Name:          "The Analytical Thinker",
		Description:   "Loves algorithms, data structures, and understanding systems deeply",
		LearningStyle: "systematic and thorough",
		FocusAreas:    []string{"algorithms", "complexity_analysis", "mathematical_foundations", "optimization"},
		Feedback:      "Focus on understanding the algorithmic complexity and mathematical foundations of your solution.",
		Tips: []Tip{
			{Text: "Write down the loop invariant of each nested loop and check which iterations are redundant", When: slow},
			{Text: "Derive the recurrence for your recursive function and solve it to confirm the running time", When: recursive},
			{Text: "Prove the tightest bound you can for both time and space before optimizing"},
			{Text: "Compare your solution against the lower bound for the problem"},
		},
		Resources: []Resource{
			{Title: "The Analytical Thinker Learning Path", Type: "course", Difficulty: DifficultyIntermediate},
		},
		NextSteps: []string{
			"Study algorithm design and analysis",
			"Practice complexity analysis",
			"Learn formal verification methods",
			"Explore mathematical optimization techniques",
		},
		Strengths: []string{
			"Strong logical thinking helps in algorithm design",
			"Attention to detail aids in finding edge cases",
			"Systematic approach leads to robust solutions",
		},
		GrowthAreas: []string{
			"Consider user experience and practical applications",
			"Practice explaining complex concepts simply",
			"Balance theoretical perfection with practical constraints",
		},
	},
	Creative: {
		Name:          "The Creative Builder",
		Description:   "Enjoys building unique solutions and creative applications",
		LearningStyle: "exploratory and experimental",
		FocusAreas:    []string{"innovation", "user_experience", "alternative_approaches", "experimentation"},
		Feedback:      "Explore alternative approaches and consider the user experience of your solution.",
		Tips: []Tip{
			{Text: "Sketch two alternative approaches, one trading memory for speed, and compare them", When: slow},
			{Text: "Try rewriting the recursion iteratively and see which version reads better", When: recursive},
			{Text: "Solve the problem again with a different data structure and note what changes"},
			{Text: "Build a small visualizer that prints each step of your algorithm"},
		},
		Resources: []Resource{
			{Title: "The Creative Builder Learning Path", Type: "course", Difficulty: DifficultyIntermediate},
		},
		NextSteps: []string{
			"Experiment with different programming paradigms",
			"Study user interface and experience design",
			"Practice creative problem-solving techniques",
			"Build projects that showcase innovation",
		},
		Strengths: []string{
			"Innovative thinking leads to unique solutions",
			"Adaptability helps in learning new technologies",
			"Creative approach makes code more engaging",
		},
		GrowthAreas: []string{
			"Focus on code efficiency and optimization",
			"Learn systematic debugging approaches",
			"Practice following established patterns and conventions",
		},
	},
	Practical: {
		Name:          "The Practical Problem Solver",
		Description:   "Focuses on real-world applications and best practices",
		LearningStyle: "structured and methodical",
		FocusAreas:    []string{"best_practices", "maintainability", "scalability", "industry_standards"},
		Feedback:      "Focus on code maintainability, best practices, and real-world applicability.",
		Tips: []Tip{
			{Text: "Focus on learning optimization techniques like hash tables or two pointers", When: slow},
			{Text: "Focus on code readability and proper naming conventions", When: lowQuality},
			{Text: "Start with simple recursive problems before tackling complex ones", When: recursive},
			{Text: "Add tests for empty input, a single element and duplicate values"},
			{Text: "Extract helper functions so each one does a single job"},
		},
		Resources: []Resource{
			{Title: "The Practical Problem Solver Learning Path", Type: "course", Difficulty: DifficultyIntermediate},
		},
		NextSteps: []string{
			"Study software engineering best practices",
			"Learn design patterns and architectural principles",
			"Practice test-driven development",
			"Focus on scalable and maintainable code",
		},
		Strengths: []string{
			"Focus on best practices ensures quality code",
			"Practical mindset leads to usable solutions",
			"Systematic approach aids in project management",
		},
		GrowthAreas: []string{
			"Explore innovative and creative approaches",
			"Study theoretical computer science concepts",
			"Practice thinking outside conventional solutions",
		},
	},
	Collaborative: {
		Name:          "The Collaborative Communicator",
		Description:   "Thrives in team environments and values knowledge sharing",
		LearningStyle: "social and discussion-based",
		FocusAreas:    []string{"code_readability", "documentation", "team_collaboration", "mentoring"},
		Feedback:      "Focus on code readability, documentation, and team collaboration aspects.",
		Tips: []Tip{
			{Text: "Rename short variables so a reviewer can follow the code without asking", When: lowQuality},
			{Text: "Explain your nested loops to a peer and ask how they would avoid them", When: slow},
			{Text: "Share your solutions with the community"},
			{Text: "Seek feedback from peers"},
		},
		Resources: []Resource{
			{Title: "The Collaborative Communicator Learning Path", Type: "course", Difficulty: DifficultyIntermediate},
		},
		NextSteps: []string{
			"Practice code review and pair programming",
			"Learn technical communication skills",
			"Study open source contribution practices",
			"Focus on mentoring and knowledge sharing",
		},
		Strengths: []string{
			"Strong communication aids in team development",
			"Collaborative mindset improves code quality",
			"Teaching others reinforces your own learning",
		},
		GrowthAreas: []string{
			"Develop independent problem-solving skills",
			"Practice deep technical analysis",
			"Focus on individual coding challenges",
		},
	},
}

// bundleFor returns the content for s; Balanced reuses the practical
// content under a neutral name.
func bundleFor(s Style) StyleBundle {
	if b, ok := StyleBundles[s]; ok {
		return b
	}
	b := StyleBundles[Practical]
	b.Name = "The Balanced Learner"
	b.Description = "No dominant learning style yet"
	return b
}

// StyleAdvice is the personality section of a bundle.
type StyleAdvice struct {
	Style       Style      `json:"style"`
	Name        string     `json:"name"`
	Feedback    string     `json:"feedback"`
	Tips        []string   `json:"tips"`
	Resources   []Resource `json:"resources,omitempty"`
	NextSteps   []string   `json:"next_steps"`
	Strengths   []string   `json:"strengths"`
	GrowthAreas []string   `json:"growth_areas"`
}

// applicable returns the tips that hold for a, in table order.
func (b StyleBundle) applicable(a Analysis) []string {
	var out []string
	for _, t := range b.Tips {
		if t.When == nil || t.When(a) {
			out = append(out, t.Text)
		}
	}
	return out
}

func adviceFor(s Style, a Analysis) *StyleAdvice {
	b := bundleFor(s)
	return &StyleAdvice{
		Style:       s,
		Name:        b.Name,
		Feedback:    b.Feedback,
		Tips:        b.applicable(a),
		Resources:   append([]Resource(nil), b.Resources...),
		NextSteps:   append([]string(nil), b.NextSteps...),
		Strengths:   append([]string(nil), b.Strengths...),
		GrowthAreas: append([]string(nil), b.GrowthAreas...),
	}
}
