package grammar

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps a lowercased file extension (without the dot)
// to the canonical language identifier used throughout the registry and
// the provider layer. Grounded on the extension sets the teacher wires
// to tree-sitter grammars in internal/indexer/parsers.
var languageByExtension = map[string]string{
	"go":   "go",
	"py":   "python",
	"pyi":  "python",
	"rb":   "ruby",
	"rs":   "rust",
	"java": "java",
	"c":    "c",
	"h":    "c",
	"ts":   "typescript",
	"tsx":  "typescript",
	"js":   "javascript",
	"jsx":  "javascript",
	"php":  "php",
}

// languageByBasename resolves files identified by exact name rather than
// extension (config/build files with no stable suffix). Checked before
// the extension map so "Makefile" never falls through to a ".mk"-derived
// guess.
var languageByBasename = map[string]string{
	"Makefile":   "make",
	"makefile":   "make",
	"Dockerfile": "dockerfile",
	"Rakefile":   "ruby",
	"Gemfile":    "ruby",
}

// fingerprintLanguage resolves extension-less scripts by shebang line,
// read by the caller and passed in verbatim.
var fingerprintLanguage = []struct {
	prefix   string
	language string
}{
	{"#!/usr/bin/env python", "python"},
	{"#!/usr/bin/python", "python"},
	{"#!/usr/bin/env ruby", "ruby"},
	{"#!/usr/bin/ruby", "ruby"},
	{"#!/bin/bash", "shell"},
	{"#!/usr/bin/env bash", "shell"},
	{"#!/bin/sh", "shell"},
}

// IdentifyLanguage resolves a file's language using, in order: exact
// basename (config files like Makefile), extension, then shebang
// fingerprint of the first line (empty string if none of the three
// match). Precedence is basename first because some basenames (e.g.
// "Makefile") have no reliable extension and would otherwise collide
// with an unrelated ".mk"-style guess; extension next because it is
// cheap and almost always correct; fingerprint last since it requires
// having already read part of the file.
func IdentifyLanguage(path string, firstLine string) string {
	base := filepath.Base(path)
	if lang, ok := languageByBasename[base]; ok {
		return lang
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "" {
		if lang, ok := languageByExtension[ext]; ok {
			return lang
		}
	}
	for _, fp := range fingerprintLanguage {
		if strings.HasPrefix(firstLine, fp.prefix) {
			return fp.language
		}
	}
	return ""
}

// SupportedLanguages returns the languages with an actual tree-sitter
// grammar wired in (the ones the teacher's go.mod carries bindings
// for). "go" and "javascript" are recognized by IdentifyLanguage for
// filtering and metadata purposes but have no grammar binding in this
// build, so files in those languages fall back to recursive chunking.
func SupportedLanguages() []string {
	return []string{"python", "ruby", "rust", "java", "c", "typescript", "php"}
}
