package events

import "fmt"

// Kind enumerates the notifications collaborators send to the controller.
type Kind int

const (
	// SoundEffectFinished is sent by the audio engine when a one-shot sound
	// effect reached its end.
	SoundEffectFinished Kind = iota + 1
	// PlaylistStarted is sent by the music player when a playlist began.
	PlaylistStarted
)

func (k Kind) String() string {
	switch k {
	case SoundEffectFinished:
		return "sound_effect_finished"
	case PlaylistStarted:
		return "playlist_started"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one inbound notification.
type Event struct {
	Kind  Kind
	Title string
}

// Finished builds a SoundEffectFinished event.
func Finished(title string) Event { return Event{Kind: SoundEffectFinished, Title: title} }

// Started builds a PlaylistStarted event.
func Started(title string) Event { return Event{Kind: PlaylistStarted, Title: title} }

// Sink accepts inbound events. The controller implements it; collaborators
// call Deliver from any goroutine.
type Sink interface {
	Deliver(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Deliver calls f(ev).
func (f SinkFunc) Deliver(ev Event) { f(ev) }
