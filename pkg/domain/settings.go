package domain

import (
	"slices"
	"strings"
	"time"
)

// Timezones are the zones offered by the settings screen.
var Timezones = []string{
	"UTC",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Europe/London",
	"Europe/Paris",
	"America/New_York",
	"America/Chicago",
	"America/Los_Angeles",
}

// Languages are the profile languages the server accepts.
var Languages = []string{"zh", "en"}

// User statuses an admin can assign.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// NextStatus cycles a user status for the admin screen.
func NextStatus(s string) string {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// ValidTimezone reports whether tz is one of Timezones.
func ValidTimezone(tz string) bool {
	return slices.Contains(Timezones, tz)
}

// ValidLanguage reports whether lang is one of Languages.
func ValidLanguage(lang string) bool {
	return slices.Contains(Languages, lang)
}

// Location loads the profile's timezone, falling back to UTC.
func (p Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseTags splits "a, b,,c" into [a b c]. Blank input gives nil.
func ParseTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
