package event

// PlayerEvent is the single event type flowing from the producer devices
// (buttons, audio player) to the player event loop. Data holds one of the
// XxxData variants below.
type PlayerEvent struct {
	Data interface{}
}

// Buttons
type ButtonId int

const (
	PLAY_PAUSE_BUTTON ButtonId = iota
	NEXT_BUTTON
	VOLUME_DOWN_BUTTON
	VOLUME_UP_BUTTON
)

func (b ButtonId) String() string {
	switch b {
	case PLAY_PAUSE_BUTTON:
		return "play/pause"
	case NEXT_BUTTON:
		return "next"
	case VOLUME_DOWN_BUTTON:
		return "volume down"
	case VOLUME_UP_BUTTON:
		return "volume up"
	}
	return "unknown"
}

type ButtonPressedData struct {
	ButtonId ButtonId
}

// Audio player
type MediaEndedData struct{}

// Display
type RefreshRequestedData struct{}
