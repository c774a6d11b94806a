// Package input turns terminal key events into per-frame camera controls.
package input

import (
	"errors"
	"fmt"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

// Control is an action a key can be bound to.
type Control int

const (
	MoveForward Control = iota
	MoveBack
	MoveLeft
	MoveRight
	OrbitUp
	OrbitDown
	OrbitLeft
	OrbitRight
	Quit
	ToggleHUD
	ToggleBounds
	Snapshot
	numControls
)

var controlNames = [numControls]string{
	MoveForward:  "move_forward",
	MoveBack:     "move_back",
	MoveLeft:     "move_left",
	MoveRight:    "move_right",
	OrbitUp:      "orbit_up",
	OrbitDown:    "orbit_down",
	OrbitLeft:    "orbit_left",
	OrbitRight:   "orbit_right",
	Quit:         "quit",
	ToggleHUD:    "toggle_hud",
	ToggleBounds: "toggle_bounds",
	Snapshot:     "snapshot",
}

// ErrUnknownControl is returned for a binding that names no control.
var ErrUnknownControl = errors.New("unknown control")

func (c Control) String() string {
	if c < 0 || c >= numControls {
		return fmt.Sprintf("Control(%d)", int(c))
	}
	return controlNames[c]
}

// ParseControl parses a control name as used in the config file.
func ParseControl(s string) (Control, error) {
	for c, name := range controlNames {
		if name == s {
			return Control(c), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownControl, s)
}

// Keyboard tracks which controls are held. Events arrive on the terminal
// goroutine while the frame loop polls, so all state is behind a mutex.
//
// Most terminals never report key releases. A press therefore stays active
// for the hold window and is refreshed by auto-repeat; a release, when the
// terminal sends one, ends it at once.
type Keyboard struct {
	mu       sync.Mutex
	bindings [numControls][]string
	hold     time.Duration
	last     [numControls]time.Time // last press or repeat, zero when released
	presses  [numControls]int       // presses not yet taken by Pressed
}

// NewKeyboard creates a keyboard from a control name -> keys map.
func NewKeyboard(bindings map[string][]string, hold time.Duration) (*Keyboard, error) {
	if hold <= 0 {
		return nil, fmt.Errorf("hold must be positive, got %v", hold)
	}
	k := &Keyboard{hold: hold}
	for name, keys := range bindings {
		c, err := ParseControl(name)
		if err != nil {
			return nil, err
		}
		k.bindings[c] = append([]string(nil), keys...)
	}
	return k, nil
}

// Bindings returns the keys bound to c.
func (k *Keyboard) Bindings(c Control) []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.bindings[c]...)
}

// HandleEvent records key presses and releases. It reports whether the
// event matched any binding.
func (k *Keyboard) HandleEvent(ev uv.Event) bool {
	return k.handleEventAt(ev, time.Now())
}

func (k *Keyboard) handleEventAt(ev uv.Event, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	matched := false
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		for c := range numControls {
			if ev.MatchString(k.bindings[c]...) {
				k.last[c] = now
				if !ev.IsRepeat {
					k.presses[c]++
				}
				matched = true
			}
		}
	case uv.KeyReleaseEvent:
		for c := range numControls {
			if ev.MatchString(k.bindings[c]...) {
				k.last[c] = time.Time{}
				matched = true
			}
		}
	}
	return matched
}

// Active reports whether c is held at now.
func (k *Keyboard) Active(c Control, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	last := k.last[c]
	return !last.IsZero() && now.Sub(last) <= k.hold
}

// Pressed consumes one pending press of c. Toggles and one-shot actions use
// this so a single key press fires exactly once.
func (k *Keyboard) Pressed(c Control) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.presses[c] == 0 {
		return false
	}
	k.presses[c]--
	return true
}

// Reset forgets all held keys and pending presses.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.last = [numControls]time.Time{}
	k.presses = [numControls]int{}
}
