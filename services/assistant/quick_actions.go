package assistant

// QuickAction is a canned prompt offered before the first user turn.
type QuickAction struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

var quickActions = []QuickAction{
	{Label: "My CGPA", Query: "What is my current CGPA?"},
	{Label: "Attendance", Query: "Show my attendance percentage"},
	{Label: "Class Schedule", Query: "What is my class schedule for today?"},
	{Label: "Courses", Query: "List my enrolled courses"},
	{Label: "Fee Status", Query: "What is my fee payment status?"},
	{Label: "Exam Results", Query: "Show my latest exam results"},
}

// QuickActions returns the quick action list.
func QuickActions() []QuickAction {
	out := make([]QuickAction, len(quickActions))
	copy(out, quickActions)
	return out
}
