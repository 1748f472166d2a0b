// Package featureflags evaluates on/off and percentage switches read from
// the FEATURE_FLAGS setting.
package featureflags

import (
	"hash/fnv"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Known flags.
const (
	// SubmissionConfirmation sends the acknowledgement email after intake.
	SubmissionConfirmation = "submission_confirmation"
	// ReportRepeatHeader redraws the recap column header on every page.
	ReportRepeatHeader = "report_repeat_header"
)

var defaults = map[string]string{
	SubmissionConfirmation: "on",
	ReportRepeatHeader:     "on",
}

// Defaults returns the values known flags take when not configured.
func Defaults() map[string]string {
	return maps.Clone(defaults)
}

// Manager holds flag values parsed from "name=value,name=value".
// Values are on/true/1, off/false/0 or N% for a deterministic rollout keyed
// by subject. A nil Manager behaves as if nothing was configured.
type Manager struct {
	flags map[string]string
}

// NewManager parses raw on top of the defaults. Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	flags := maps.Clone(defaults)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || value == "" {
			continue
		}
		flags[key] = value
	}
	return &Manager{flags: flags}
}

func (m *Manager) lookup(name string) (string, bool) {
	if m == nil {
		v, ok := defaults[normalize(name)]
		return v, ok
	}
	v, ok := m.flags[normalize(name)]
	return v, ok
}

// Enabled reports whether a flag is on. Percentage flags are off without a
// subject.
func (m *Manager) Enabled(name string) bool {
	return m.EnabledFor(name, "")
}

// EnabledFor evaluates a flag for one subject, such as a recipient address.
func (m *Manager) EnabledFor(name, subject string) bool {
	value, ok := m.lookup(name)
	if !ok {
		return false
	}
	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctText, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctText)
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	}
	subject = normalize(subject)
	return subject != "" && rolloutBucket(name, subject) < pct
}

// Raw returns a copy of the effective values, defaults included.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return Defaults()
	}
	return maps.Clone(m.flags)
}

// Names returns the effective flag names in sorted order.
func (m *Manager) Names() []string {
	return slices.Sorted(maps.Keys(m.Raw()))
}

// Snapshot evaluates every flag without a subject.
func (m *Manager) Snapshot() map[string]bool {
	out := make(map[string]bool)
	for _, name := range m.Names() {
		out[name] = m.Enabled(name)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
