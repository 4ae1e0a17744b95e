package markdown

import (
	"strings"
)

// TerminalLines is the longest bash block still labeled as a terminal session.
const TerminalLines = 5

// CodeBlock is an aggregated run of code lines.
type CodeBlock struct {
	Text string // Lines joined by "\n"
	Lang string // Fence language tag, may be empty
	Hint string // Filename hint, may be empty
}

var shellPrefixes = []string{
	"sudo", "docker", "systemctl", "$", "git",
	"#!/bin/bash", "#!/bin/sh", "#!/usr/bin/env bash",
}

// AggregateCode merges code lines into one block and detects its language.
// In extended mode the "ini" family is reported as "conf" and well-known
// block shapes get a filename hint.
func AggregateCode(lines []string, extended bool) CodeBlock {
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimSpace(l)
	}
	b := CodeBlock{Text: strings.Join(trimmed, "\n")}
	b.Lang = DetectLanguage(b.Text, extended)
	if extended {
		b.Hint = FilenameHint(b.Text, b.Lang)
	}
	return b
}

// DetectLanguage infers a fence language from the block text.
func DetectLanguage(code string, extended bool) string {
	switch {
	case hasAnyPrefix(code, shellPrefixes):
		return "bash"
	case strings.Contains(code, "version:"), strings.Contains(code, "services:"):
		return "yaml"
	case isSectionHeader(firstLine(code)):
		if extended {
			return "conf"
		}
		return "ini"
	}
	upper := strings.ToUpper(code)
	switch {
	case strings.Contains(upper, "CREATE"), strings.Contains(upper, "SELECT"), strings.Contains(upper, "INSERT"):
		return "sql"
	case strings.Contains(code, "def "), strings.Contains(code, "import "):
		return "python"
	}
	return ""
}

// FilenameHint names the file a block most likely belongs to.
func FilenameHint(code, lang string) string {
	switch lang {
	case "yaml":
		if strings.Contains(code, "services:") {
			return "docker-compose.yaml"
		}
	case "bash":
		if strings.HasPrefix(code, "#!") {
			return "script.sh"
		}
		if strings.Count(code, "\n")+1 <= TerminalLines {
			return "Terminal"
		}
	case "conf":
		if strings.HasPrefix(code, "[main]") {
			return "tuned.conf"
		}
	}
	return ""
}

// Fence returns the opening fence line.
func (b CodeBlock) Fence() string {
	fence := "```" + b.Lang
	if b.Hint != "" {
		fence += " " + b.Hint
	}
	return fence
}

// String renders the fenced block.
func (b CodeBlock) String() string {
	return b.Fence() + "\n" + b.Text + "\n```"
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "[") && strings.Contains(line, "]")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
