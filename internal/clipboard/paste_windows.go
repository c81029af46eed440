//go:build windows

package clipboard

import (
	"log"
	"os/exec"
	"syscall"
	"time"
	"unsafe"
)

const (
	inputKeyboard   = 1
	keyEventfKeyUp  = 0x0002
	vkControl       = 0x11
	vkV             = 0x56
)

type keyboardInput struct {
	Type uint32
	Ki   struct {
		WVk         uint16
		WScan       uint16
		DwFlags     uint32
		Time        uint32
		DwExtraInfo uintptr
		Padding1    uint32
		Padding2    uint32
		Padding3    uint32
	}
}

// pasteWithSendInput injects Ctrl down, V down, V up, Ctrl up as one batch.
func pasteWithSendInput() bool {
	user32 := syscall.NewLazyDLL("user32.dll")
	sendInput := user32.NewProc("SendInput")

	inputs := make([]keyboardInput, 4)
	keys := []struct {
		vk    uint16
		flags uint32
	}{
		{vkControl, 0},
		{vkV, 0},
		{vkV, keyEventfKeyUp},
		{vkControl, keyEventfKeyUp},
	}
	for i, k := range keys {
		inputs[i].Type = inputKeyboard
		inputs[i].Ki.WVk = k.vk
		inputs[i].Ki.DwFlags = k.flags
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(inputs[0])),
	)
	if ret != uintptr(len(inputs)) {
		log.Printf("SendInput sent %d of %d inputs: %v", ret, len(inputs), err)
		return false
	}
	return true
}

func pasteWithKeybdEvent() bool {
	user32 := syscall.NewLazyDLL("user32.dll")
	keybdEvent := user32.NewProc("keybd_event")

	keybdEvent.Call(vkControl, 0, 0, 0)
	keybdEvent.Call(vkV, 0, 0, 0)
	keybdEvent.Call(vkV, 0, keyEventfKeyUp, 0)
	keybdEvent.Call(vkControl, 0, keyEventfKeyUp, 0)
	return true
}

func pasteWithPowershell() bool {
	psScript := `
	Add-Type -AssemblyName System.Windows.Forms
	[System.Windows.Forms.SendKeys]::SendWait("^v")
	`
	if err := exec.Command("powershell", "-Command", psScript).Run(); err != nil {
		log.Printf("PowerShell paste failed: %v", err)
		return false
	}
	return true
}

// simulatePlatformPaste tries SendInput first, then the legacy keybd_event
// API, then PowerShell SendKeys.
func simulatePlatformPaste() {
	time.Sleep(100 * time.Millisecond)

	if pasteWithSendInput() {
		return
	}
	if pasteWithKeybdEvent() {
		return
	}
	if pasteWithPowershell() {
		return
	}
	log.Println("All paste simulation methods failed; transcript remains on the clipboard.")
}
