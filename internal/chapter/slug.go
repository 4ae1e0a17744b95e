package chapter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// DefaultSlugs maps well-known chapter titles to short file slugs.
var DefaultSlugs = map[string]string{
	"Общие сведения":                        "common",
	"Архитектура комплекса":                 "architecture",
	"Технические и программные требования":  "technical-requirements",
	"Технические требования":                "technical-requirements",
	"Установка и запуск комплекса":          "installation-setup",
	"Установка и настройка":                 "installation-setup",
	"Установка":                             "installation",
	"Настройка":                             "setup",
	"Тонкая настройка операционной системы": "system-setup",
	"Эксплуатация":                          "operation",
	"Администрирование":                     "administration",
	"Мониторинг и диагностика":              "monitoring",
	"Мониторинг":                            "monitoring",
	"Управление контентом через Winter CMS": "winter-cms",
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// cyrillicCharMap is the go-slug char map for translit, upper case included.
var cyrillicCharMap = func() map[string]string {
	m := make(map[string]string, 2*len(translit))
	for r, latin := range translit {
		m[string(r)] = latin
		m[strings.ToUpper(string(r))] = latin
	}
	return m
}()

// Filename returns "{number}.{slug}.md" for a chapter.
func Filename(info Info, slugs map[string]string) string {
	return fmt.Sprintf("%d.%s.md", info.Number, Slug(info.Title, slugs))
}

// Slug returns the known slug for a title or a transliterated one.
// Titles with nothing left after normalization become "chapter".
func Slug(title string, slugs map[string]string) string {
	title = strings.TrimSpace(title)
	if s, ok := slugs[title]; ok {
		return s
	}
	latin, err := slug.HashNormalizeWithCharMap(title, cyrillicCharMap)
	if err != nil {
		return "chapter"
	}
	s, err := slug.DefaultNormalize(latin)
	if err != nil {
		return "chapter"
	}
	return s
}
