package event

import "github.com/reelcut/reelcut/internal/timeline"

// CommitPayload accompanies TopicCommit: one command committed a new
// snapshot.
type CommitPayload struct {
	Command string
	Status  string
	Project *timeline.Project
}

// HistoryPayload accompanies TopicUndo and TopicRedo.
type HistoryPayload struct {
	Entry   string
	Project *timeline.Project
}

// GroupPayload accompanies TopicGroupClosed.
type GroupPayload struct {
	GroupID string
	Project *timeline.Project
}

// ProjectPayload accompanies TopicProjectLoaded and TopicProjectSaved.
type ProjectPayload struct {
	ProjectID string
	Name      string
}
