package wifi

import (
	"strconv"
	"strings"
)

// StateKind is a coarse classification of a daemon state token.
//
// The daemon's vocabulary changes between releases, so the raw token is
// always kept next to it and anything unknown maps to StateUnrecognized.
type StateKind int

const (
	StateUnrecognized StateKind = iota
	StateUnmanaged
	StateUnavailable
	StateDisconnected
	StateConnecting
	StateConnected
)

func (k StateKind) String() string {
	switch k {
	case StateUnmanaged:
		return "unmanaged"
	case StateUnavailable:
		return "unavailable"
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unrecognized"
	}
}

// ClassifyState maps a raw state token onto a StateKind.
//
// It understands both the word form used by device listings ("connected",
// "connecting (getting IP configuration)") and the numeric form used by
// device details ("100 (connected)").
func ClassifyState(raw string) StateKind {
	s := strings.TrimSpace(raw)
	if s == "" {
		return StateUnrecognized
	}

	// "100 (connected)": prefer the numeric code when present.
	if i := strings.IndexByte(s, ' '); i > 0 {
		if code, err := strconv.Atoi(s[:i]); err == nil {
			return classifyCode(code)
		}
	}
	if code, err := strconv.Atoi(s); err == nil {
		return classifyCode(code)
	}

	switch word, _, _ := strings.Cut(s, " "); word {
	case "unmanaged":
		return StateUnmanaged
	case "unavailable":
		return StateUnavailable
	case "disconnected":
		return StateDisconnected
	case "connecting", "prepare", "config", "need-auth", "ip-config", "ip-check", "secondaries":
		return StateConnecting
	case "connected", "activated":
		return StateConnected
	}
	return StateUnrecognized
}

// classifyCode maps NetworkManager's NMDeviceState values.
func classifyCode(code int) StateKind {
	switch {
	case code == 10:
		return StateUnmanaged
	case code == 20:
		return StateUnavailable
	case code == 30:
		return StateDisconnected
	case code >= 40 && code <= 90:
		return StateConnecting
	case code == 100:
		return StateConnected
	}
	return StateUnrecognized
}
