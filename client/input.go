// Package client is the terminal client: it samples keys once per tick,
// predicts its own movement and shows the replicated world and scoreboard.
package client

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"coinrush/game"
)

// Key is a logical movement key. Each direction has a primary and an alternate binding.
type Key uint8

const (
	KeyW Key = iota
	KeyS
	KeyA
	KeyD
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// KeyState reports whether a key is currently held.
type KeyState interface {
	Pressed(Key) bool
}

// Collect maps the current key state to one tick's input. With nothing
// pressed it returns the explicit none input, never an empty value.
func Collect(keys KeyState) game.Input {
	return game.DirectionInput(game.Direction{
		Up:    keys.Pressed(KeyW) || keys.Pressed(KeyArrowUp),
		Down:  keys.Pressed(KeyS) || keys.Pressed(KeyArrowDown),
		Left:  keys.Pressed(KeyA) || keys.Pressed(KeyArrowLeft),
		Right: keys.Pressed(KeyD) || keys.Pressed(KeyArrowRight),
	})
}

// HeldKeys turns terminal key presses into a held-key set. Terminals report
// presses and auto-repeats but no releases, so a key stays held for window
// after its last event.
type HeldKeys struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[Key]time.Time
	action game.InputKind
}

func NewHeldKeys(window time.Duration) *HeldKeys {
	return &HeldKeys{
		window: window,
		now:    time.Now,
		last:   make(map[Key]time.Time),
		action: game.InputNone,
	}
}

func (h *HeldKeys) Press(k Key) {
	h.mu.Lock()
	h.last[k] = h.now()
	h.mu.Unlock()
}

func (h *HeldKeys) Pressed(k Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.last[k]
	return ok && h.now().Sub(t) < h.window
}

// QueueAction makes the next Sample return kind instead of a direction.
func (h *HeldKeys) QueueAction(kind game.InputKind) {
	h.mu.Lock()
	h.action = kind
	h.mu.Unlock()
}

// Sample produces the input for the current tick.
func (h *HeldKeys) Sample() game.Input {
	h.mu.Lock()
	action := h.action
	h.action = game.InputNone
	h.mu.Unlock()
	if action != game.InputNone {
		return game.Input{Kind: action}
	}
	return Collect(h)
}

// Observe feeds a tcell key event. It reports true when the user asked to quit.
func (h *HeldKeys) Observe(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		h.Press(KeyArrowUp)
	case tcell.KeyDown:
		h.Press(KeyArrowDown)
	case tcell.KeyLeft:
		h.Press(KeyArrowLeft)
	case tcell.KeyRight:
		h.Press(KeyArrowRight)
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		h.QueueAction(game.InputDelete)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			h.Press(KeyW)
		case 's', 'S':
			h.Press(KeyS)
		case 'a', 'A':
			h.Press(KeyA)
		case 'd', 'D':
			h.Press(KeyD)
		case ' ':
			h.QueueAction(game.InputSpawn)
		case 'q', 'Q':
			return true
		}
	}
	return false
}
