// Package record defines the logon record and the column schemas that project it onto a log document.
package record

import (
	"time"

	"logonlog/internal/collect"
)

// Logon is one logon event's worth of identity, hardware and OS facts.
// Every log kind is a projection of this single fact set.
type Logon struct {
	ComputerName  string    `json:"computer_name"`
	Username      string    `json:"username"`
	UserOU        string    `json:"user_ou"`
	FullOU        string    `json:"full_ou"`
	WorkstationOU string    `json:"ws_ou"`
	Time          time.Time `json:"date_time"`
	Period        string    `json:"period"`
	Description   string    `json:"description"`
	OSVersion     string    `json:"os_version"`
	OSName        string    `json:"os"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	UUID          string    `json:"uuid"`
	SerialNumber  string    `json:"serial_number"`
}

// New builds a Logon from collected facts. Values are copied verbatim.
func New(id collect.Identity, hw collect.Hardware, os collect.OS, now time.Time, period string) Logon {
	return Logon{
		ComputerName:  id.ComputerName,
		Username:      id.Username,
		UserOU:        id.UserOU,
		FullOU:        id.FullOU,
		WorkstationOU: id.WorkstationOU,
		Time:          now,
		Period:        period,
		Description:   hw.OSDescription,
		OSVersion:     os.Version,
		OSName:        os.Name,
		Make:          hw.Make,
		Model:         hw.Model,
		UUID:          hw.UUID,
		SerialNumber:  hw.SerialNumber,
	}
}
