package globalshortcut

import "github.com/gauntlet-host/launcherd/internal/domain"

// hotkeyCode is the OS-level key code handed to a HotkeyBackend. The actual
// numeric values are backend-specific; this package only needs a closed,
// stable Go-side enum to translate to/from.
type hotkeyCode string

var physicalKeyToCode = map[domain.PhysicalKey]hotkeyCode{
	"A": "KeyA", "B": "KeyB", "C": "KeyC", "D": "KeyD", "E": "KeyE",
	"F": "KeyF", "G": "KeyG", "H": "KeyH", "I": "KeyI", "J": "KeyJ",
	"K": "KeyK", "L": "KeyL", "M": "KeyM", "N": "KeyN", "O": "KeyO",
	"P": "KeyP", "Q": "KeyQ", "R": "KeyR", "S": "KeyS", "T": "KeyT",
	"U": "KeyU", "V": "KeyV", "W": "KeyW", "X": "KeyX", "Y": "KeyY", "Z": "KeyZ",
	"0": "Digit0", "1": "Digit1", "2": "Digit2", "3": "Digit3", "4": "Digit4",
	"5": "Digit5", "6": "Digit6", "7": "Digit7", "8": "Digit8", "9": "Digit9",
	"F1": "F1", "F2": "F2", "F3": "F3", "F4": "F4", "F5": "F5", "F6": "F6",
	"F7": "F7", "F8": "F8", "F9": "F9", "F10": "F10", "F11": "F11", "F12": "F12",
	"Space": "Space", "Enter": "Enter", "Escape": "Escape", "Tab": "Tab",
	"ArrowUp": "ArrowUp", "ArrowDown": "ArrowDown", "ArrowLeft": "ArrowLeft", "ArrowRight": "ArrowRight",
	"Home": "Home", "End": "End", "PageUp": "PageUp", "PageDown": "PageDown",
	"Numpad0": "Numpad0", "Numpad1": "Numpad1", "NumpadAdd": "NumpadAdd", "NumpadSubtract": "NumpadSubtract",
	"MediaPlayPause": "MediaPlayPause", "MediaTrackNext": "MediaTrackNext", "MediaTrackPrevious": "MediaTrackPrevious",
}

// codeForKey translates a PhysicalShortcut's key enum into a backend code.
func codeForKey(key domain.PhysicalKey) (hotkeyCode, bool) {
	c, ok := physicalKeyToCode[key]
	return c, ok
}

// modifierMask mirrors the backend's modifier bitset ordering.
type modifierMask struct {
	Shift, Control, Alt, Meta bool
}

func modifiersFor(s domain.PhysicalShortcut) modifierMask {
	return modifierMask{Shift: s.ModifierShift, Control: s.ModifierControl, Alt: s.ModifierAlt, Meta: s.ModifierMeta}
}
