package markdown

import (
	"strings"
	"testing"

	"github.com/dgallion1/docx2md/internal/chapter"
	"github.com/dgallion1/docx2md/internal/classify"
)

func segment(t *testing.T, els []classify.Element) []chapter.Chapter {
	t.Helper()
	s, err := chapter.NewSegmenter(chapter.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s.Segment(els)
}

func TestEmitChapter_Scenario(t *testing.T) {
	chapters := segment(t, []classify.Element{
		classify.Heading(1, "1. Общие сведения"),
		classify.Text("Текст."),
	})
	e := NewEmitter(Options{})
	got, err := e.EmitChapter(chapters[0], nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Общие сведения\n\nТекст.\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEmitChapter_UnparsedNumber(t *testing.T) {
	chapters := segment(t, []classify.Element{
		classify.Heading(1, "1.Общие сведения"),
		classify.Text("Текст."),
	})
	md, err := NewEmitter(Options{Frontmatter: true}).EmitChapter(chapters[0], nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "---\ntitle: Общие сведения\n---\n\n# Общие сведения\n\nТекст.\n"
	if md != want {
		t.Errorf("expected %q, got %q", want, md)
	}
}

func TestEmitChapter_AllElementKinds(t *testing.T) {
	chapters := segment(t, []classify.Element{
		classify.Heading(1, "2    Архитектура комплекса\t6"),
		classify.Heading(2, "2.1 Состав\t7"),
		classify.ListItem("- первый", 0),
		classify.ListItem("- второй", 1),
		classify.Text("Между списками."),
		classify.ListItem("- третий", 0),
		classify.Code("version: '3'"),
		classify.Code("services:"),
		classify.Table([][]string{{"A", "B"}, {"1", "2"}}),
		classify.Text("Таблица 1 – Параметры"),
		classify.Note("Примечание – перезапуск обязателен."),
		{Kind: classify.KindTOCEntry, Text: "1 Общие сведения\t3"},
	})
	if len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chapters))
	}
	e := NewEmitter(Options{Extended: true})
	got, err := e.EmitChapter(chapters[0], nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"# Архитектура комплекса",
		"## 2.1 Состав",
		"- первый\n  - второй",
		"Между списками.",
		"- третий",
		"```yaml docker-compose.yaml\nversion: '3'\nservices:\n```",
		"| A | B |\n| --- | --- |\n| 1 | 2 |\n\n> Таблица 1 – Параметры",
		"> _Примечание_ – перезапуск обязателен.",
	}, "\n\n") + "\n"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestEmitChapter_Frontmatter(t *testing.T) {
	chapters := segment(t, []classify.Element{
		classify.Heading(1, "1. Общие сведения"),
		classify.Text("a"),
		classify.Heading(1, "2. Архитектура комплекса"),
		classify.Text("b"),
		classify.Heading(1, "3. Установка"),
		classify.Text("c"),
	})
	e := NewEmitter(Options{Frontmatter: true})
	out, err := e.EmitChapters(chapters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(out))
	}

	first := "---\ntitle: Общие сведения\nnextRead:\n  to: /path/to/next\n  label: Следующий раздел\n---\n\n# Общие сведения\n\na\n"
	if out[0] != first {
		t.Errorf("expected:\n%s\ngot:\n%s", first, out[0])
	}
	middle := "---\ntitle: Архитектура комплекса\nreadPrev:\n  to: /path/to/prev\n  label: Предыдущий раздел\nnextRead:\n  to: /path/to/next\n  label: Следующий раздел\n---\n"
	if !strings.HasPrefix(out[1], middle) {
		t.Errorf("expected prefix:\n%s\ngot:\n%s", middle, out[1])
	}
	if strings.Contains(out[2], "nextRead") {
		t.Error("expected no nextRead in last chapter")
	}
	for i, md := range out {
		fm := md[:strings.Index(md[3:], "---")+6]
		if strings.Contains(fm, "\n\n") {
			t.Errorf("chapter %d: blank line inside frontmatter", i)
		}
	}
}

func TestEmitChapter_NavBasePath(t *testing.T) {
	chapters := segment(t, []classify.Element{
		classify.Heading(1, "1. Общие сведения"),
		classify.Heading(1, "2. Архитектура комплекса"),
	})
	e := NewEmitter(Options{Frontmatter: true, NavBasePath: "/docs/admin/", NextLabel: "Далее"})
	md, err := e.EmitChapter(chapters[0], nil, &chapters[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "  to: /docs/admin/2.architecture\n  label: Далее\n") {
		t.Errorf("unexpected frontmatter in %q", md)
	}
}

func TestEmitChapter_Idempotent(t *testing.T) {
	els := []classify.Element{
		classify.Heading(1, "4. Эксплуатация"),
		classify.Heading(2, "4.1 Запуск"),
		classify.Code("docker compose up -d"),
		classify.Text("Готово."),
	}
	s, err := chapter.NewSegmenter(chapter.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := NewEmitter(Options{Frontmatter: true, Extended: true})

	first, err := e.EmitChapters(s.Segment(els))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.EmitChapters(s.Segment(els))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 || first[0] != second[0] {
		t.Errorf("expected identical output, got %q and %q", first, second)
	}
}

func TestEmitDocument(t *testing.T) {
	e := NewEmitter(Options{Frontmatter: true})
	got, err := e.EmitDocument("Руководство", []classify.Element{
		classify.Heading(1, "1. Общие сведения"),
		classify.Text("Текст."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "---\ntitle: Руководство\n---\n\n# 1. Общие сведения\n\nТекст.\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEmitDocument_Empty(t *testing.T) {
	got, err := NewEmitter(Options{}).EmitDocument("x", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestNote(t *testing.T) {
	e := NewEmitter(Options{})
	tests := []struct {
		in   string
		want string
	}{
		{"Примечание – текст", "> _Примечание_ – текст"},
		{"Примечание: текст", "> _Примечание_ – текст"},
		{"Примечание. Перезапустите Docker.", "> _Примечание_ – Перезапустите `Docker`."},
		{"Примечание", "> _Примечание_"},
	}
	for _, tt := range tests {
		if got := e.note(tt.in); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestHeadingLine(t *testing.T) {
	tests := []struct {
		level int
		text  string
		want  string
	}{
		{2, "2.1  Состав\t\t7", "## 2.1 Состав"},
		{3, "Шаг третий", "### Шаг третий"},
		{2, "2.1 Требования к серверу    12", "## 2.1 Требования к серверу"},
		{2, "2.1 Требования к серверу\t12", "## 2.1 Требования к серверу"},
		{9, "Глубоко", "###### Глубоко"},
	}
	for _, tt := range tests {
		if got := HeadingLine(tt.level, tt.text); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
