package store

import (
	"bufio"
	"fmt"
	"io"

	"github.com/reelcut/reelcut/internal/timeline"
)

// EDL timecode runs at a fixed 30 fps non-drop.
const edlFPS = 30

// ExportEDL writes the project's cut list as a CMX3600-style edit decision
// list. Each clip becomes one cut event; retimed clips get an M2 motion
// memo after their event.
func ExportEDL(p *timeline.Project, w io.Writer) error {
	bw := bufio.NewWriter(w)

	title := p.Name
	if title == "" {
		title = "untitled"
	}
	fmt.Fprintf(bw, "TITLE: %s\n", title)
	fmt.Fprintf(bw, "FCM: NON-DROP FRAME\n\n")

	event := 0
	for _, t := range p.Tracks {
		channel := edlChannel(t.Kind)
		for _, c := range t.Clips {
			event++
			fmt.Fprintf(bw, "%03d  AX       %-5s C        %s %s %s %s\n",
				event, channel,
				timecode(c.SourceIn), timecode(c.SourceOut),
				timecode(c.StartTime), timecode(c.EndTime()))
			if r := p.Recording(c.RecordingID); r != nil && r.Name != "" {
				fmt.Fprintf(bw, "* FROM CLIP NAME: %s\n", r.Name)
			}
			if c.PlaybackRate != 1.0 {
				fmt.Fprintf(bw, "M2   AX             %05.1f                %s\n",
					c.PlaybackRate*edlFPS, timecode(c.SourceIn))
			}
		}
	}

	return bw.Flush()
}

func edlChannel(kind timeline.TrackKind) string {
	switch kind {
	case timeline.TrackAudio:
		return "A"
	default:
		return "V"
	}
}

func timecode(m timeline.Millis) string {
	if m < 0 {
		m = 0
	}
	totalSec := int64(m) / 1000
	frames := int64(m) % 1000 * edlFPS / 1000
	return fmt.Sprintf("%02d:%02d:%02d:%02d", totalSec/3600, totalSec/60%60, totalSec%60, frames)
}
