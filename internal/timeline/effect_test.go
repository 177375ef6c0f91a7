package timeline

import (
	"reflect"
	"testing"
)

func TestEffectKindClipBound(t *testing.T) {
	tests := []struct {
		kind EffectKind
		want bool
	}{
		{KindZoom, false},
		{KindCrop, true},
		{KindSubtitle, false},
		{KindKeystroke, false},
		{KindCursor, true},
		{KindBackground, false},
		{KindScreen, true},
		{KindPlugin, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.ClipBound(); got != tt.want {
				t.Errorf("ClipBound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEffectKindRoundTrip(t *testing.T) {
	kinds := []EffectKind{
		KindZoom, KindCrop, KindSubtitle, KindKeystroke,
		KindCursor, KindBackground, KindScreen, KindPlugin,
	}
	for _, k := range kinds {
		got, ok := ParseEffectKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseEffectKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseEffectKind("glitter"); ok {
		t.Error("ParseEffectKind accepted an unknown kind")
	}
}

func TestEffectCloneDetachesPayload(t *testing.T) {
	e := NewEffect(0, 1000, PluginData{
		PluginID: "confetti",
		Params:   map[string]any{"density": 0.5},
	})

	dup := e.Clone()
	dup.Data.(PluginData).Params["density"] = 0.9

	if e.Data.(PluginData).Params["density"] != 0.5 {
		t.Error("Clone shares payload map with original")
	}
	if dup.ID != e.ID {
		t.Error("Clone should keep the same ID")
	}
}

func TestEffectWindowPredicates(t *testing.T) {
	e := NewEffect(1000, 3000, ZoomData{Scale: 2})

	if e.Midpoint() != 2000 {
		t.Errorf("Midpoint() = %d, want 2000", e.Midpoint())
	}
	if !e.Overlaps(0, 1500) {
		t.Error("Overlaps(0, 1500) = false, want true")
	}
	if e.Overlaps(3000, 4000) {
		t.Error("Overlaps(3000, 4000) = true, want false (end exclusive)")
	}
	if !e.Inside(1000, 3000) {
		t.Error("Inside(own window) = false, want true")
	}
	if e.Inside(1500, 3000) {
		t.Error("Inside(1500, 3000) = true, want false")
	}
}

func TestBackgroundSuppression(t *testing.T) {
	bg := BackgroundData{Color: "#1e1e2e", Opacity: 1}

	key := SuppressionKey{RecordingID: "rec1", ClusterIndex: 3}
	withKey := bg.WithSuppression(key)

	if bg.IsSuppressed("rec1", 3) {
		t.Error("WithSuppression mutated the receiver")
	}
	if !withKey.IsSuppressed("rec1", 3) {
		t.Error("IsSuppressed = false after WithSuppression")
	}
	if withKey.IsSuppressed("rec1", 4) {
		t.Error("IsSuppressed matched a different cluster")
	}

	// Re-adding is a no-op.
	again := withKey.WithSuppression(key)
	if !reflect.DeepEqual(again.Suppressed, withKey.Suppressed) {
		t.Errorf("duplicate suppression changed keys: %v", again.Suppressed)
	}
}

func TestBackgroundValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    BackgroundData
		wantErr bool
	}{
		{"valid", BackgroundData{Color: "#aabbcc", Opacity: 0.5}, false},
		{"empty color ok", BackgroundData{Opacity: 1}, false},
		{"bad color", BackgroundData{Color: "notacolor", Opacity: 1}, true},
		{"opacity above one", BackgroundData{Color: "#aabbcc", Opacity: 1.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackgroundNormalizeColor(t *testing.T) {
	bg := BackgroundData{Color: "#AABBCC"}
	got, err := bg.NormalizeColor()
	if err != nil {
		t.Fatalf("NormalizeColor() error = %v", err)
	}
	if got != "#aabbcc" {
		t.Errorf("NormalizeColor() = %q, want %q", got, "#aabbcc")
	}
}

func TestEffectValidate(t *testing.T) {
	t.Run("kind payload mismatch", func(t *testing.T) {
		e := &Effect{ID: "e1", Kind: KindZoom, StartTime: 0, EndTime: 1000, Data: CropData{}}
		if e.Validate() == nil {
			t.Error("Validate() accepted mismatched kind and payload")
		}
	})

	t.Run("clip bound without clip", func(t *testing.T) {
		e := NewEffect(0, 1000, CropData{Width: 1, Height: 1})
		if e.Validate() == nil {
			t.Error("Validate() accepted crop without clip binding")
		}
		e.ClipID = "c1"
		if err := e.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("empty window rejected", func(t *testing.T) {
		e := NewEffect(1000, 1000, ZoomData{Scale: 2})
		if e.Validate() == nil {
			t.Error("Validate() accepted an empty window")
		}
	})
}
