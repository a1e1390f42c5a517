// pkg/core/match.go
package core

import "time"

// Match describes one recorded match session.
type Match struct {
	ID               uint      `json:"id"`
	SessionID        string    `json:"sessionId"`
	Mode             GameMode  `json:"mode"`
	StartTime        time.Time `json:"startTime"`
	ExtensionVersion string    `json:"extensionVersion"`
}
