package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"restart50-service/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 6 {
		t.Fatalf("expected 6 courses, got %d", c.Len())
	}
	course, ok := c.Get("c_iot_home")
	if !ok || course.Category != "IoT" || len(course.Quiz) != 2 {
		t.Fatalf("unexpected iot course %+v", course)
	}
	if _, ok := c.Get("c_missing"); ok {
		t.Fatalf("expected unknown course to be absent")
	}
	labels := c.ContactLabels()
	if len(labels) != 7 || labels[0] != GeneralLabel || labels[1] != "IA Essencial para Iniciantes" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Title = "changed"
	if got, _ := c.Get(all[0].ID); got.Title == "changed" {
		t.Fatalf("catalog must not be mutable through All")
	}
}

func TestNewRejectsBadIDs(t *testing.T) {
	if _, err := New([]domain.Course{{Title: "no id"}}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := New([]domain.Course{{ID: "a"}, {ID: "a"}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	fixture := `courses:
  - id: c_tablet
    title: Tablet sem Medo
    category: Dispositivos
    level: Iniciante
    hours: 3
    description: Primeiros passos com tablets.
    quiz:
      - q: Para ligar o tablet use
        choices: [O botao lateral, A tela, O carregador]
        answer: 0
`
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	course, ok := c.Get("c_tablet")
	if !ok || course.Hours != 3 || course.Quiz[0].Choices[2] != "O carregador" {
		t.Fatalf("unexpected course %+v", course)
	}
}
