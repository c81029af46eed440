//go:build linux

package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

const (
	portalBusName    = "org.freedesktop.portal.Desktop"
	portalObjectPath = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalIface      = "org.freedesktop.portal.GlobalShortcuts"
	requestIface     = "org.freedesktop.portal.Request"
)

// PortalAvailable reports whether the desktop session exposes the
// GlobalShortcuts portal. The probe is a synchronous introspection of the
// portal service; absence of a session bus or a failed query both mean
// "unavailable", never an error.
func PortalAvailable() bool {
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Printf("Portal probe: no session bus: %v", err)
		return false
	}

	var node string
	err = conn.Object(portalBusName, portalObjectPath).
		Call("org.freedesktop.DBus.Introspectable.Introspect", 0).Store(&node)
	if err != nil {
		log.Printf("Portal probe: introspection failed: %v", err)
		return false
	}

	return strings.Contains(node, "GlobalShortcuts")
}

// PortalVersion reads the GlobalShortcuts portal version property.
// Absence or parse failure yields 0, treated as "protocol unavailable".
func PortalVersion() uint32 {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0
	}

	v, err := conn.Object(portalBusName, portalObjectPath).GetProperty(portalIface + ".version")
	if err != nil {
		return 0
	}
	if u, ok := v.Value().(uint32); ok {
		return u
	}
	return 0
}

// PortalBackend negotiates the toggle shortcut through the GlobalShortcuts
// portal. Binding is async and session-based; activations arrive on a signal
// stream consumed for the lifetime of the process.
type PortalBackend struct {
	conn     *dbus.Conn
	tokenSeq atomic.Uint64
	version  func() uint32
}

// NewPortalBackend opens a private session-bus connection for the portal
// dialogue.
func NewPortalBackend() (*PortalBackend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return &PortalBackend{conn: conn, version: PortalVersion}, nil
}

func (b *PortalBackend) obj() dbus.BusObject {
	return b.conn.Object(portalBusName, portalObjectPath)
}

func (b *PortalBackend) newToken() string {
	return fmt.Sprintf("whis%d", b.tokenSeq.Add(1))
}

// portalCall performs the portal request/response handshake: it predicts the
// request object path from the handle token, subscribes to its Response
// signal before calling, then waits for the response and returns the results
// vardict. A non-zero response code is a rejection.
func (b *PortalBackend) portalCall(method string, options map[string]dbus.Variant, args ...interface{}) (map[string]dbus.Variant, error) {
	if options == nil {
		options = map[string]dbus.Variant{}
	}
	token := b.newToken()
	options["handle_token"] = dbus.MakeVariant(token)

	sender := strings.ReplaceAll(strings.TrimPrefix(b.conn.Names()[0], ":"), ".", "_")
	reqPath := dbus.ObjectPath("/org/freedesktop/portal/desktop/request/" + sender + "/" + token)

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(reqPath),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	}
	if err := b.conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("%s: subscribe to response: %w", method, err)
	}
	defer b.conn.RemoveMatchSignal(match...)

	sigCh := make(chan *dbus.Signal, 4)
	b.conn.Signal(sigCh)
	defer b.conn.RemoveSignal(sigCh)

	callArgs := append(append([]interface{}{}, args...), options)
	var handle dbus.ObjectPath
	if err := b.obj().Call(portalIface+"."+method, 0, callArgs...).Store(&handle); err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	for sig := range sigCh {
		if sig.Name != requestIface+".Response" {
			continue
		}
		// Older portals return a request handle that differs from the
		// predicted path; accept either.
		if sig.Path != reqPath && sig.Path != handle {
			continue
		}
		if len(sig.Body) < 2 {
			return nil, fmt.Errorf("%s: malformed response signal", method)
		}
		code, _ := sig.Body[0].(uint32)
		if code != 0 {
			return nil, fmt.Errorf("%s request rejected (response code %d)", method, code)
		}
		results, _ := sig.Body[1].(map[string]dbus.Variant)
		return results, nil
	}
	return nil, fmt.Errorf("%s: response signal stream closed", method)
}

func (b *PortalBackend) createSession() (dbus.ObjectPath, error) {
	results, err := b.portalCall("CreateSession", map[string]dbus.Variant{
		"session_handle_token": dbus.MakeVariant(b.newToken()),
	})
	if err != nil {
		return "", err
	}

	v, ok := results["session_handle"]
	if !ok {
		return "", fmt.Errorf("CreateSession response carries no session handle")
	}
	switch h := v.Value().(type) {
	case dbus.ObjectPath:
		return h, nil
	case string:
		return dbus.ObjectPath(h), nil
	}
	return "", fmt.Errorf("unexpected session handle type %T", v.Value())
}

// portalShortcut marshals as the portal's (sa{sv}) shortcut tuple.
type portalShortcut struct {
	ID      string
	Options map[string]dbus.Variant
}

// bindShortcut requests binding of the toggle shortcut with an optional
// preferred trigger hint and returns the trigger description the portal
// reports back ("" when the response carries none).
func (b *PortalBackend) bindShortcut(session dbus.ObjectPath, preferredTrigger string) (string, error) {
	sc := portalShortcut{
		ID: ShortcutID,
		Options: map[string]dbus.Variant{
			"description": dbus.MakeVariant("Toggle voice recording"),
		},
	}
	if preferredTrigger != "" {
		sc.Options["preferred_trigger"] = dbus.MakeVariant(preferredTrigger)
	}

	results, err := b.portalCall("BindShortcuts", nil, session, []portalShortcut{sc}, "")
	if err != nil {
		return "", err
	}
	return triggerFromResults(results), nil
}

// triggerFromResults digs the trigger description for our shortcut id out of
// a BindShortcuts/ListShortcuts results vardict.
func triggerFromResults(results map[string]dbus.Variant) string {
	v, ok := results["shortcuts"]
	if !ok {
		return ""
	}
	list, ok := v.Value().([][]interface{})
	if !ok {
		return ""
	}
	for _, entry := range list {
		if len(entry) != 2 {
			continue
		}
		id, _ := entry[0].(string)
		if id != ShortcutID {
			continue
		}
		opts, _ := entry[1].(map[string]dbus.Variant)
		if tv, ok := opts["trigger_description"]; ok {
			if s, ok := tv.Value().(string); ok {
				return s
			}
		}
	}
	return ""
}

// Setup runs the whole portal flow and then never returns while the process
// lives: publish any dconf-saved binding so the UI has something to show,
// open a session, request the bind (failure and rejection are both non-fatal;
// the dconf value remains the best available display binding), then consume
// the activation stream, invoking onToggle once per activation of our
// shortcut identifier.
func (b *PortalBackend) Setup(preferredTrigger string, onToggle func(), onBinding func(string), onBindError func(string)) error {
	if existing, ok := ReadPortalShortcutFromDconf(); ok {
		log.Printf("Found existing portal binding in dconf: %s", existing)
		onBinding(existing)
	}

	session, err := b.createSession()
	if err != nil {
		return fmt.Errorf("portal session: %w", err)
	}

	if trigger, err := b.bindShortcut(session, preferredTrigger); err != nil {
		log.Printf("Portal bind failed: %v", err)
		log.Println("Will use dconf binding if available")
		onBindError(err.Error())
	} else if trigger != "" {
		log.Printf("Portal bound shortcut: %s", trigger)
		onBinding(trigger)
	}

	if err := b.conn.AddMatchSignal(
		dbus.WithMatchInterface(portalIface),
		dbus.WithMatchMember("Activated"),
	); err != nil {
		return fmt.Errorf("subscribe to activations: %w", err)
	}

	sigCh := make(chan *dbus.Signal, 16)
	b.conn.Signal(sigCh)

	log.Println("Portal shortcuts registered. Listening for activations...")
	runActivationLoop(sigCh, onToggle)
	return fmt.Errorf("portal activation stream closed")
}

// runActivationLoop consumes the Activated signal stream until it closes.
// Dispatch is asynchronous so a slow toggle cannot stall the stream; godbus
// drops signals that arrive while the channel is full.
func runActivationLoop(sigCh <-chan *dbus.Signal, onToggle func()) {
	for sig := range sigCh {
		// Activated carries (session_handle, shortcut_id, timestamp, options).
		if sig.Name != portalIface+".Activated" || len(sig.Body) < 2 {
			continue
		}
		if id, _ := sig.Body[1].(string); id == ShortcutID {
			log.Println("Portal shortcut activated")
			go onToggle()
		}
	}
}

// ConfigureDialog opens the system's shortcut-configuration UI. It requires
// portal version 2+, re-binds our shortcut id so the session knows about it,
// blocks until the user dismisses the dialog, then re-queries the binding
// list and returns the current trigger description for the toggle shortcut.
func (b *PortalBackend) ConfigureDialog() (string, error) {
	if err := b.checkConfigureSupport(); err != nil {
		return "", err
	}

	session, err := b.createSession()
	if err != nil {
		return "", fmt.Errorf("portal session: %w", err)
	}

	// Idempotent: the bind may be rejected if already registered, which is
	// fine here, the session just needs to know the shortcut id.
	if _, err := b.bindShortcut(session, ""); err != nil {
		log.Printf("Re-bind before configure dialog: %v", err)
	}

	if call := b.obj().Call(portalIface+".ConfigureShortcuts", 0, session, "", map[string]dbus.Variant{}); call.Err != nil {
		return "", fmt.Errorf("open configuration dialog: %w", call.Err)
	}

	results, err := b.portalCall("ListShortcuts", nil, session)
	if err != nil {
		return "", fmt.Errorf("list shortcuts after configure: %w", err)
	}
	return triggerFromResults(results), nil
}

// checkConfigureSupport gates the configuration dialog on portal version 2+.
func (b *PortalBackend) checkConfigureSupport() error {
	if v := b.version(); v < 2 {
		return fmt.Errorf("%w: need 2+, have %d", ErrUnsupportedPortalVersion, v)
	}
	return nil
}
