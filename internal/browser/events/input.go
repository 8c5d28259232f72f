package events

// Button identifies a pointer button. Values follow the DOM MouseEvent
// numbering and are passed to callbacks as-is.
type Button uint8

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Event names matched against a node's events.
const (
	EventClick       = "onclick"
	EventRightClick  = "onrightclick"
	EventMiddleClick = "onmiddleclick"
)

// EventName returns the event a press of b fires, or "" for an unknown
// button.
func (b Button) EventName() string {
	switch b {
	case ButtonPrimary:
		return EventClick
	case ButtonSecondary:
		return EventRightClick
	case ButtonMiddle:
		return EventMiddleClick
	}
	return ""
}

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonSecondary:
		return "secondary"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// ParseButton accepts "primary"/"left", "secondary"/"right" and "middle".
func ParseButton(s string) (Button, bool) {
	switch s {
	case "primary", "left", "":
		return ButtonPrimary, true
	case "secondary", "right":
		return ButtonSecondary, true
	case "middle":
		return ButtonMiddle, true
	}
	return 0, false
}

// Input is one tick's worth of pointer state: the cursor position and the
// buttons that went down this tick.
type Input struct {
	X, Y    float32
	Pressed []Button
}
