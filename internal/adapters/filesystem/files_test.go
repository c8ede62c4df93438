package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thesaurus/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestReadOutline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.txt", "Europe\r\n\tFrance\r\nAsia\r\n")

	lines, err := NewFiles(dir).ReadOutline("geo.txt")
	if err != nil {
		t.Fatalf("ReadOutline failed: %v", err)
	}

	entries, err := domain.ParseOutline(lines, domain.OutlineTab)
	if err != nil {
		t.Fatalf("ParseOutline failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Label != "France" || entries[1].Level != 1 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestReadOutline_Missing(t *testing.T) {
	_, err := NewFiles(t.TempDir()).ReadOutline("nope.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read outline") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadStructure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "structure.json", `{"12": {"parent": null}, "13": {"parent": 12}, "11": {"parent": 12, "remove": true}}`)

	structure, err := NewFiles(dir).ReadStructure(filepath.Join(dir, "structure.json"))
	if err != nil {
		t.Fatalf("ReadStructure failed: %v", err)
	}

	if len(structure) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(structure))
	}
	if structure[0].ID != 12 || structure[0].Parent != nil {
		t.Errorf("expected top concept 12 first, got %+v", structure[0])
	}
	if structure[2].ID != 11 || !structure[2].Remove {
		t.Errorf("expected 11 marked for removal, got %+v", structure[2])
	}
}

func TestReadStructure_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `"nope"`)

	_, err := NewFiles(dir).ReadStructure("bad.json")
	if err == nil {
		t.Fatal("expected error for invalid structure")
	}
	if !strings.HasPrefix(err.Error(), "bad.json:") {
		t.Errorf("expected error prefixed with file name, got %v", err)
	}
}

func TestWriteOutline(t *testing.T) {
	dir := t.TempDir()
	files := NewFiles(dir)

	entries := []domain.FlatEntry{
		{Concept: &domain.Concept{ID: 1, Title: "Europe"}, Level: 0},
		{Concept: &domain.Concept{ID: 2, Title: "France"}, Level: 1},
		{Concept: &domain.Concept{ID: 3, Title: "Asia"}, Level: 0},
	}
	if err := files.WriteOutline("out/geo.txt", entries, domain.OutlineCoded); err != nil {
		t.Fatalf("WriteOutline failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "out", "geo.txt"))
	if err != nil {
		t.Fatalf("failed to read written outline: %v", err)
	}
	want := "01 Europe\n01-01 France\n02 Asia\n"
	if string(content) != want {
		t.Errorf("expected %q, got %q", want, string(content))
	}

	if _, err := os.Stat(filepath.Join(dir, "out", "geo.txt.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}
}

func TestPath(t *testing.T) {
	files := NewFiles("/base")
	if got := files.Path("a.txt"); got != filepath.Join("/base", "a.txt") {
		t.Errorf("unexpected relative path: %s", got)
	}
	if got := files.Path("/abs/a.txt"); got != "/abs/a.txt" {
		t.Errorf("unexpected absolute path: %s", got)
	}
}
