package command

import (
	"fmt"

	"github.com/reelcut/reelcut/internal/derive"
	"github.com/reelcut/reelcut/internal/timeline"
)

// CmdRegenerate is the derivation pass command name.
const CmdRegenerate = "effects.regenerate"

// RegenerateEffects runs a derivation pass over one recording's transcript,
// adding the derived blocks the project is missing. Kinds limits the pass;
// empty means typing highlights and captions both. The pass is idempotent:
// live blocks and tombstoned typing-highlight clusters are left alone.
type RegenerateEffects struct {
	RecordingID string
	Kinds       []timeline.EffectKind
	Settings    derive.Settings
}

func (c *RegenerateEffects) Name() string        { return CmdRegenerate }
func (c *RegenerateEffects) Description() string { return "Regenerate derived effects" }
func (c *RegenerateEffects) Category() string    { return CategoryEffect }

func (c *RegenerateEffects) CanExecute(p *timeline.Project) bool {
	return p.Recording(c.RecordingID) != nil
}

func (c *RegenerateEffects) Mutate(ctx *Context) (Result, error) {
	kinds := c.Kinds
	if len(kinds) == 0 {
		kinds = []timeline.EffectKind{timeline.KindKeystroke, timeline.KindSubtitle}
	}

	added := 0
	for _, kind := range kinds {
		var planned []*timeline.Effect
		switch kind {
		case timeline.KindKeystroke:
			planned = derive.Keystrokes(ctx.Project(), c.RecordingID, c.Settings)
		case timeline.KindSubtitle:
			planned = derive.Subtitles(ctx.Project(), c.RecordingID, c.Settings)
		default:
			return Result{}, fmt.Errorf("%w: %s effects are not derived", ErrInvalidState, kind)
		}
		for _, e := range planned {
			if err := ctx.InsertEffect(e); err != nil {
				return Result{}, err
			}
			added++
		}
	}

	if added == 0 {
		return NoOp("nothing to derive"), nil
	}
	return SuccessWithData("added", added), nil
}
