// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package device derives a read-only snapshot of device and browser
// characteristics from host-supplied hints. The probe is pure: it never
// touches the environment itself, so hosts on any platform can feed it
// whatever context they have.
package device

import (
	"strings"

	"github.com/studylens/studylens/internal/models"
)

// Hints is the raw context a host supplies about the end device.
type Hints struct {
	UserAgent      string
	TouchCapable   bool
	ViewportWidth  int
	ViewportHeight int

	// ConnectionType is passed through verbatim when the host knows it
	// (e.g. "4g", "wifi", "slow-2g").
	ConnectionType string
}

// Probe classifies the hints into a DeviceInfo snapshot. Unknown or empty
// hints classify as DeviceUnknown with empty OS/browser fields.
func Probe(h Hints) models.DeviceInfo {
	ua := strings.ToLower(h.UserAgent)
	return models.DeviceInfo{
		Type:           classify(ua),
		OS:             operatingSystem(ua),
		Browser:        browser(ua),
		TouchCapable:   h.TouchCapable,
		ViewportWidth:  h.ViewportWidth,
		ViewportHeight: h.ViewportHeight,
		ConnectionType: h.ConnectionType,
	}
}

// classify buckets the user agent into a device class. Order matters: bots
// first, then tablets (an iPad UA also contains "mobile"), then phones.
func classify(ua string) models.DeviceType {
	switch {
	case ua == "":
		return models.DeviceUnknown
	case containsAny(ua, "bot", "crawler", "spider", "curl", "wget"):
		return models.DeviceBot
	case containsAny(ua, "ipad", "tablet", "kindle", "silk"):
		return models.DeviceTablet
	case containsAny(ua, "mobile", "iphone", "android", "windows phone"):
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}

func operatingSystem(ua string) string {
	switch {
	case containsAny(ua, "iphone", "ipad", "ipod"):
		return "ios"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "windows"):
		return "windows"
	case containsAny(ua, "mac os", "macintosh"):
		return "macos"
	case strings.Contains(ua, "cros"):
		return "chromeos"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return ""
	}
}

// browser identifies the browser family. Edge and Opera embed "chrome" in
// their user agents, and Chrome embeds "safari", so the checks run from most
// specific to least.
func browser(ua string) string {
	switch {
	case containsAny(ua, "edg/", "edge/"):
		return "edge"
	case containsAny(ua, "opr/", "opera"):
		return "opera"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case containsAny(ua, "chrome", "crios"):
		return "chrome"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return ""
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
