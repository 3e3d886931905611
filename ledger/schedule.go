package ledger

import (
	"maps"
	"slices"
	"strings"

	"github.com/robinvdvleuten/moneybook/date"
)

// Exception overrides a single occurrence of a schedule. A deleted occurrence
// spawns nothing; otherwise Override replaces the template for that date.
type Exception struct {
	Deleted  bool
	Override *Transaction
}

func (e Exception) clone() Exception {
	if e.Override != nil {
		e.Override = e.Override.Clone()
	}
	return e
}

func (e Exception) equal(o Exception) bool {
	return e.Deleted == o.Deleted && e.Override.Equal(o.Override)
}

// Schedule is a template transaction repeated by a recurrence rule.
type Schedule struct {
	ID         string
	Rule       Recurrence
	Template   *Transaction
	Exceptions map[date.Date]Exception
}

// NewSchedule creates a schedule for template. The template is cloned, gets the
// schedule start as its date and loses its reconciliation dates.
func NewSchedule(template *Transaction, rule Recurrence) *Schedule {
	s := &Schedule{ID: NewID(), Rule: rule}
	s.SetTemplate(template)
	return s
}

func (s *Schedule) EntityID() string { return s.ID }

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	c := *s
	if s.Template != nil {
		c.Template = s.Template.Clone()
	}
	c.Exceptions = make(map[date.Date]Exception, len(s.Exceptions))
	for d, e := range s.Exceptions {
		c.Exceptions[d] = e.clone()
	}
	return &c
}

// Equal reports whether both schedules hold the same state.
func (s *Schedule) Equal(o *Schedule) bool {
	return s.ID == o.ID &&
		s.Rule == o.Rule &&
		s.Template.Equal(o.Template) &&
		maps.EqualFunc(s.Exceptions, o.Exceptions, Exception.equal)
}

// SetTemplate replaces the template with a clean copy of t.
func (s *Schedule) SetTemplate(t *Transaction) {
	tmpl := t.Clone()
	tmpl.ID = s.ID
	tmpl.Date = s.Rule.Start
	tmpl.ScheduleID = ""
	tmpl.RecurrenceDate = date.Date{}
	tmpl.ClearReconciliation()
	s.Template = tmpl
}

// SpawnID returns the stable id of the occurrence of scheduleID on d.
func SpawnID(scheduleID string, d date.Date) string {
	return scheduleID + "@" + d.String()
}

// ParseSpawnID splits a spawn id into its schedule id and recurrence date.
func ParseSpawnID(id string) (scheduleID string, d date.Date, ok bool) {
	sid, day, found := strings.Cut(id, "@")
	if !found {
		return "", date.Date{}, false
	}
	parsed, err := date.Parse(day)
	if err != nil {
		return "", date.Date{}, false
	}
	return sid, parsed, true
}

// Spawn returns the transaction of the occurrence on d, or nil when the
// occurrence was deleted. Overrides keep their own date.
func (s *Schedule) Spawn(d date.Date) *Transaction {
	if e, ok := s.Exceptions[d]; ok {
		if e.Deleted {
			return nil
		}
		if e.Override != nil {
			t := e.Override.Clone()
			t.ID = SpawnID(s.ID, d)
			t.ScheduleID = s.ID
			t.RecurrenceDate = d
			return t
		}
	}

	t := s.Template.Clone()
	t.ID = SpawnID(s.ID, d)
	t.Date = d
	t.ScheduleID = s.ID
	t.RecurrenceDate = d
	return t
}

// Spawns returns the transactions dated on or before until. Overrides are
// placed by their own date: one moved past until is left out, one moved in
// from a later occurrence is included.
func (s *Schedule) Spawns(until date.Date) []*Transaction {
	var out []*Transaction
	for d := range s.Rule.Occurrences(until) {
		if t := s.Spawn(d); t != nil && !t.Date.After(until) {
			out = append(out, t)
		}
	}
	for _, d := range slices.SortedFunc(maps.Keys(s.Exceptions), date.Date.Compare) {
		e := s.Exceptions[d]
		if !d.After(until) || e.Override == nil || e.Override.Date.After(until) || !s.Rule.Includes(d) {
			continue
		}
		out = append(out, s.Spawn(d))
	}
	return out
}

// IsMaterialized reports whether the occurrence on d has an override.
func (s *Schedule) IsMaterialized(d date.Date) bool {
	e, ok := s.Exceptions[d]
	return ok && e.Override != nil
}

// IsDeleted reports whether the occurrence on d was deleted.
func (s *Schedule) IsDeleted(d date.Date) bool {
	e, ok := s.Exceptions[d]
	return ok && e.Deleted
}

// Override stores t as the override of the occurrence on d.
func (s *Schedule) Override(d date.Date, t *Transaction) {
	o := t.Clone()
	o.ID = SpawnID(s.ID, d)
	o.ScheduleID = s.ID
	o.RecurrenceDate = d
	s.exceptions()[d] = Exception{Override: o}
}

// Delete marks the occurrence on d as deleted.
func (s *Schedule) Delete(d date.Date) {
	s.exceptions()[d] = Exception{Deleted: true}
}

// ChangeGlobally makes the edited spawn the new template. When the spawn was
// moved to another date, the rule start shifts by the same number of days.
// Existing exceptions are kept.
func (s *Schedule) ChangeGlobally(spawn *Transaction) {
	if delta := spawn.Date.DaysSince(spawn.RecurrenceDate); delta != 0 && !spawn.RecurrenceDate.IsZero() {
		s.Rule = s.Rule.Shift(delta)
		shifted := make(map[date.Date]Exception, len(s.Exceptions))
		for d, e := range s.Exceptions {
			nd := d.AddDays(delta)
			if e.Override != nil {
				e.Override.RecurrenceDate = nd
				e.Override.ID = SpawnID(s.ID, nd)
			}
			shifted[nd] = e
		}
		s.Exceptions = shifted
	}
	s.SetTemplate(spawn)
}

// StopBefore ends the schedule the day before d and drops the exceptions from d on.
func (s *Schedule) StopBefore(d date.Date) {
	s.Rule.Stop = d.AddDays(-1)
	for od := range s.Exceptions {
		if !od.Before(d) {
			delete(s.Exceptions, od)
		}
	}
}

// Affects reports whether the template or an override posts to accountID.
func (s *Schedule) Affects(accountID string) bool {
	if s.Template.Affects(accountID) {
		return true
	}
	for _, e := range s.Exceptions {
		if e.Override != nil && e.Override.Affects(accountID) {
			return true
		}
	}
	return false
}

// ReassignAccount moves template and override splits from one account to another.
func (s *Schedule) ReassignAccount(from, to string) bool {
	changed := s.Template.ReassignAccount(from, to)
	for _, e := range s.Exceptions {
		if e.Override != nil && e.Override.ReassignAccount(from, to) {
			changed = true
		}
	}
	return changed
}

func (s *Schedule) exceptions() map[date.Date]Exception {
	if s.Exceptions == nil {
		s.Exceptions = make(map[date.Date]Exception)
	}
	return s.Exceptions
}
