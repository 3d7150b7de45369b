// Package collect gathers the identity, hardware and operating system facts
// recorded for a logon.
package collect

import "sync"

// Identity describes who logged on where, as resolved against the directory.
type Identity struct {
	ComputerName  string `json:"computer_name"`
	Username      string `json:"username"`
	UserOU        string `json:"user_ou"`
	FullOU        string `json:"full_ou"`
	WorkstationOU string `json:"ws_ou"`
}

// Hardware describes the machine.
type Hardware struct {
	Make          string `json:"make"`
	Model         string `json:"model"`
	UUID          string `json:"uuid"`
	SerialNumber  string `json:"serial_number"`
	OSDescription string `json:"os_description"`
}

// OS describes the installed operating system.
type OS struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Facts is the shared sink collectors write into. Each collector owns one
// field; the mutex only guards concurrent stores.
type Facts struct {
	mu       sync.Mutex
	identity Identity
	hardware Hardware
	os       OS
}

// SetIdentity stores the identity facts.
func (f *Facts) SetIdentity(id Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = id
}

// SetHardware stores the hardware facts.
func (f *Facts) SetHardware(hw Hardware) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hardware = hw
}

// SetOS stores the operating system facts.
func (f *Facts) SetOS(os OS) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.os = os
}

// Snapshot returns the facts collected so far.
func (f *Facts) Snapshot() (Identity, Hardware, OS) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity, f.hardware, f.os
}
