package event

import "strings"

// Topic is a hierarchical event name in dot notation, e.g. "editor.commit".
//
// Subscription patterns may use "*" to match exactly one segment and "**"
// to match any remaining segments:
//
//	editor.*        matches editor.commit, editor.undo
//	editor.**       matches editor.commit and any deeper topic
//	**              matches everything
type Topic string

// Canonical topics published by the editing session.
const (
	TopicCommit        Topic = "editor.commit"
	TopicUndo          Topic = "editor.undo"
	TopicRedo          Topic = "editor.redo"
	TopicGroupClosed   Topic = "editor.group.closed"
	TopicProjectLoaded Topic = "project.loaded"
	TopicProjectSaved  Topic = "project.saved"
)

// Segments splits the topic at its dots.
func (t Topic) Segments() []string {
	return strings.Split(string(t), ".")
}

// Match reports whether the topic satisfies the pattern.
func (t Topic) Match(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "**":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(topic); i++ {
				if matchSegments(topic[i:], pattern[1:]) {
					return true
				}
			}
			return false
		case "*":
			if len(topic) == 0 {
				return false
			}
		default:
			if len(topic) == 0 || topic[0] != pattern[0] {
				return false
			}
		}
		topic = topic[1:]
		pattern = pattern[1:]
	}
	return len(topic) == 0
}
