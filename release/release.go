package release

import (
	"sort"
	"time"
)

// Release is one product release and the changes that ship in it. A Release
// owns its Changes: AddChange attaches the back-reference, and the list never
// contains nil entries (malformed changes are dropped by the adapter before
// they reach the release).
type Release struct {
	// Code is the release identifier (e.g. "2.4.0").
	Code string
	// Date is when the release ships.
	Date time.Time
	// Commit is the VCS revision the release was cut from.
	Commit string
	// Memo is free-form text shown at the top of the notes.
	Memo string

	changes []*Change
}

// New creates an empty release.
func New(code string, date time.Time, commit, memo string) *Release {
	return &Release{Code: code, Date: date, Commit: commit, Memo: memo}
}

// AddChange adopts a change: the release back-reference is attached and the
// change is appended in call order. Nil changes are ignored so the list never
// has holes.
func (r *Release) AddChange(c *Change) {
	if c == nil {
		return
	}
	c.release = r
	r.changes = append(r.changes, c)
}

// Changes returns the owned changes in adoption order.
func (r *Release) Changes() []*Change { return r.changes }

// ChangeCount returns how many changes the release owns.
func (r *Release) ChangeCount() int { return len(r.changes) }

// Contributors returns the deduplicated list of change leads, sorted for
// deterministic output. Changes without a lead contribute nothing.
func (r *Release) Contributors() []string {
	seen := make(map[string]bool, len(r.changes))
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		if c.Lead == "" || seen[c.Lead] {
			continue
		}
		seen[c.Lead] = true
		out = append(out, c.Lead)
	}
	sort.Strings(out)
	return out
}

// TagStats tallies every displayed tag across all changes.
func (r *Release) TagStats() map[string]int {
	stats := make(map[string]int)
	for _, c := range r.changes {
		for _, t := range c.Tags {
			stats[t]++
		}
	}
	return stats
}

// ToMap returns the release as a plain nested map for the rendering stage.
func (r *Release) ToMap() map[string]any {
	m := map[string]any{
		"code": r.Code,
	}
	if !r.Date.IsZero() {
		m["date"] = r.Date.Format("2006-01-02")
	}
	if r.Commit != "" {
		m["commit"] = r.Commit
	}
	if r.Memo != "" {
		m["memo"] = r.Memo
	}
	changes := make([]map[string]any, 0, len(r.changes))
	for _, c := range r.changes {
		changes = append(changes, c.ToMap())
	}
	m["changes"] = changes
	return m
}
