package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"restart50-service/internal/domain"
)

// GeneralLabel is the contact subject used when no course is chosen.
const GeneralLabel = "Geral"

// Catalog is the read-only list of courses supplied at startup.
type Catalog struct {
	courses []domain.Course
}

// New validates courses and builds a catalog. Ids must be non-empty and unique.
func New(courses []domain.Course) (*Catalog, error) {
	seen := make(map[string]struct{}, len(courses))
	for i, c := range courses {
		if c.ID == "" {
			return nil, fmt.Errorf("course %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("course %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return &Catalog{courses: append([]domain.Course(nil), courses...)}, nil
}

// Default returns the built-in course catalog.
func Default() *Catalog {
	c, err := New(defaultCourses())
	if err != nil {
		panic(err)
	}
	return c
}

type fixture struct {
	Courses []domain.Course `yaml:"courses"`
}

// LoadFile reads a catalog from a YAML file with a top-level `courses` list.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(f.Courses) == 0 {
		return nil, errors.New("catalog has no courses")
	}
	return New(f.Courses)
}

// Get finds a course by id.
func (c *Catalog) Get(id string) (domain.Course, bool) {
	for _, course := range c.courses {
		if course.ID == id {
			return course, true
		}
	}
	return domain.Course{}, false
}

// All returns the courses in catalog order.
func (c *Catalog) All() []domain.Course {
	return append([]domain.Course(nil), c.courses...)
}

func (c *Catalog) Len() int {
	return len(c.courses)
}

// ContactLabels lists the subjects a contact message can be about.
func (c *Catalog) ContactLabels() []string {
	labels := make([]string, 0, len(c.courses)+1)
	labels = append(labels, GeneralLabel)
	for _, course := range c.courses {
		labels = append(labels, course.Title)
	}
	return labels
}
