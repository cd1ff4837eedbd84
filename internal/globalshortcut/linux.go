package globalshortcut

import "errors"

// LinuxBackend is a placeholder for the real X11/Wayland global-hotkey
// backend, an external collaborator outside this repo's scope. It satisfies
// HotkeyBackend so the dispatcher can be wired up end-to-end; every call
// fails until a real backend replaces it.
type LinuxBackend struct{}

func NewLinuxBackend() *LinuxBackend { return &LinuxBackend{} }

func (b *LinuxBackend) Register(code hotkeyCode, mods modifierMask) (HotkeyID, error) {
	return 0, errors.New("globalshortcut: no platform hotkey backend wired on linux")
}

func (b *LinuxBackend) Unregister(id HotkeyID) error {
	return errors.New("globalshortcut: no platform hotkey backend wired on linux")
}
