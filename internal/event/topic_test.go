package event

import "testing"

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"editor.commit", "editor.commit", true},
		{"editor.commit", "editor.undo", false},
		{"editor.commit", "editor.*", true},
		{"editor.undo", "editor.*", true},
		{"editor.group.closed", "editor.*", false},
		{"editor.group.closed", "editor.*.closed", true},
		{"editor.group.closed", "editor.**", true},
		{"editor.commit", "editor.**", true},
		{"project.loaded", "editor.**", false},
		{"editor.commit", "**", true},
		{"editor.group.closed", "**", true},
		{"editor", "editor.*", false},
		{"editor", "editor.**", true},
		{"editor.commit", "*.commit", true},
		{"project.saved", "*.commit", false},
		{"editor.commit.extra", "editor.commit", false},
		{"editor.commit", "**.commit", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.topic)+"/"+string(tt.pattern), func(t *testing.T) {
			if got := tt.topic.Match(tt.pattern); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestTopicSegments(t *testing.T) {
	got := Topic("editor.group.closed").Segments()
	want := []string{"editor", "group", "closed"}
	if len(got) != len(want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}
