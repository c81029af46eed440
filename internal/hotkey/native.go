package hotkey

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"
)

// NativeBackend registers the toggle shortcut directly with the display
// session via golang.design/x/hotkey. It works on X11, Windows and macOS but
// not on Wayland. Registration is synchronous; presses are delivered to the
// trigger callback from a draining goroutine, never from the registration
// call's own stack.
type NativeBackend struct {
	mu         sync.Mutex
	registered []*registeredChord
	onTrigger  func()
}

type registeredChord struct {
	hk     *hotkey.Hotkey
	stopCh chan struct{}
}

// NewNativeBackend creates a native backend that invokes onTrigger once per
// shortcut press.
func NewNativeBackend(onTrigger func()) *NativeBackend {
	return &NativeBackend{onTrigger: onTrigger}
}

func parseNative(spec Spec) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := keyMap[spec.Key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unsupported key %q", ErrInvalidShortcut, spec.Key)
	}

	var modifiers []hotkey.Modifier
	for _, name := range spec.Mods {
		mod, err := nativeModifier(name)
		if err != nil {
			return nil, 0, err
		}
		modifiers = append(modifiers, mod)
	}

	return modifiers, key, nil
}

// Register parses the spec and installs the process-wide listener. On X11 the
// chord is additionally registered with the NumLock/CapsLock modifier states
// so it keeps firing while a lock key is lit.
func (b *NativeBackend) Register(spec Spec) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	modifiers, key, err := parseNative(spec)
	if err != nil {
		return err
	}

	var added []*registeredChord
	for _, combo := range expandModifiers(modifiers) {
		hk := hotkey.New(combo, key)
		if err := hk.Register(); err != nil {
			for _, rc := range added {
				rc.close()
			}
			return fmt.Errorf("failed to register hotkey %q: %w", spec, err)
		}

		rc := &registeredChord{hk: hk, stopCh: make(chan struct{})}
		rc.listen(b.onTrigger)
		added = append(added, rc)
	}

	b.registered = append(b.registered, added...)
	log.Printf("Native backend: registered hotkey %q (%d modifier variants)", spec, len(added))
	return nil
}

// Update unregisters all existing bindings and registers the new spec.
// The false return means the change applied immediately, no restart needed.
func (b *NativeBackend) Update(spec Spec) (needsRestart bool, err error) {
	b.UnregisterAll()
	if err := b.Register(spec); err != nil {
		return false, err
	}
	log.Printf("Native backend: updated hotkey to %q", spec)
	return false, nil
}

// UnregisterAll removes every registered chord variant.
func (b *NativeBackend) UnregisterAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rc := range b.registered {
		rc.close()
	}
	b.registered = nil
}

// listen drains the keydown channel and fires the callback on its own
// goroutine so the event delivery path is never blocked by a slow handler.
func (rc *registeredChord) listen(onTrigger func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic in hotkey listener: %v", r)
			}
		}()

		for {
			select {
			case <-rc.stopCh:
				return
			case <-rc.hk.Keydown():
				go onTrigger()
			}
		}
	}()
}

func (rc *registeredChord) close() {
	close(rc.stopCh)
	if err := rc.hk.Unregister(); err != nil {
		log.Printf("Native backend: error unregistering hotkey: %v", err)
	}
}
