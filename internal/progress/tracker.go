package progress

import (
	"context"
	"time"

	"restart50-service/internal/assessment"
	"restart50-service/internal/catalog"
	"restart50-service/internal/domain"
	"restart50-service/internal/store"
)

// recentAttempts is how many attempts a course report lists.
const recentAttempts = 3

// Tracker mutates and summarizes per-user, per-course progress.
type Tracker struct {
	users   *store.Repository[domain.User]
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewTracker(users *store.Repository[domain.User], courses *catalog.Catalog) *Tracker {
	return NewTrackerWithClock(users, courses, time.Now)
}

// NewTrackerWithClock allows deterministic attempt timestamps in tests.
func NewTrackerWithClock(users *store.Repository[domain.User], courses *catalog.Catalog, now func() time.Time) *Tracker {
	return &Tracker{users: users, catalog: courses, now: now}
}

// Enroll makes sure a progress entry exists for the pair. Calling it again
// leaves the entry untouched.
func (t *Tracker) Enroll(ctx context.Context, userID, courseID string) (domain.CourseProgress, error) {
	if _, ok := t.catalog.Get(courseID); !ok {
		return domain.CourseProgress{}, domain.ErrCourseNotFound
	}
	var result domain.CourseProgress
	err := t.users.Update(ctx, func(c *store.Collection[domain.User]) error {
		u, ok := c.Get(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if p, exists := u.Progress[courseID]; exists {
			result = p
			return store.ErrNoChange
		}
		if u.Progress == nil {
			u.Progress = make(map[string]domain.CourseProgress)
		}
		result = newProgress()
		u.Progress[courseID] = result
		c.Put(u.ID, u)
		return nil
	})
	return result, err
}

// RecordAttempt appends an attempt for the course, overwrites the score with
// its percent and marks the course completed whatever the percent.
func (t *Tracker) RecordAttempt(ctx context.Context, userID, courseID string, res assessment.Result) (domain.CourseProgress, error) {
	if _, ok := t.catalog.Get(courseID); !ok {
		return domain.CourseProgress{}, domain.ErrCourseNotFound
	}
	var result domain.CourseProgress
	err := t.users.Update(ctx, func(c *store.Collection[domain.User]) error {
		u, ok := c.Get(userID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if u.Progress == nil {
			u.Progress = make(map[string]domain.CourseProgress)
		}
		p, exists := u.Progress[courseID]
		if !exists {
			p = newProgress()
		}
		score := res.Percent
		p.Attempts = append(p.Attempts, domain.Attempt{
			Timestamp: domain.NewTimestamp(t.now()),
			Score:     res.Percent,
			Raw:       res.Raw,
		})
		p.Score = &score
		p.Completed = true
		u.Progress[courseID] = p
		c.Put(u.ID, u)
		result = p
		return nil
	})
	return result, err
}

// Summary aggregates progress over the catalog. Entries for courses missing
// from the catalog are ignored.
func (t *Tracker) Summary(u domain.User) domain.Summary {
	s := domain.Summary{TotalCourses: t.catalog.Len()}
	sum, n := 0, 0
	for _, course := range t.catalog.All() {
		p, ok := u.Progress[course.ID]
		if !ok {
			continue
		}
		if p.Completed {
			s.CompletedCount++
		}
		if p.Score != nil {
			sum += *p.Score
			n++
		}
	}
	s.CompletionPercent = assessment.Percent(s.CompletedCount, s.TotalCourses)
	if n > 0 {
		avg := sum / n
		s.AverageScore = &avg
	}
	return s
}

// Report is the summary plus one line per catalog course, listing the most
// recent attempts newest first.
func (t *Tracker) Report(u domain.User) domain.Report {
	courses := t.catalog.All()
	r := domain.Report{
		UserName: u.Name,
		Summary:  t.Summary(u),
		Courses:  make([]domain.CourseReport, 0, len(courses)),
	}
	for _, course := range courses {
		p := u.Progress[course.ID]
		r.Courses = append(r.Courses, domain.CourseReport{
			CourseID:       course.ID,
			Title:          course.Title,
			Level:          course.Level,
			Hours:          course.Hours,
			Completed:      p.Completed,
			Score:          p.Score,
			RecentAttempts: latestFirst(p.Attempts, recentAttempts),
		})
	}
	return r
}

func latestFirst(attempts []domain.Attempt, limit int) []domain.Attempt {
	start := len(attempts) - limit
	if start < 0 {
		start = 0
	}
	out := make([]domain.Attempt, 0, len(attempts)-start)
	for i := len(attempts) - 1; i >= start; i-- {
		out = append(out, attempts[i])
	}
	return out
}

func newProgress() domain.CourseProgress {
	return domain.CourseProgress{Attempts: []domain.Attempt{}}
}
