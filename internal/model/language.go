package model

import "path/filepath"

// Language of a source file.
type Language int

const (
	LanguageCXX Language = iota
	LanguageC
)

// DetectLanguage selects C only for the lowercase .c extension. Everything
// else, including .cc, .cxx, .cpp, .C, headers and extensionless names, is
// compiled as C++.
func DetectLanguage(src string) Language {
	if filepath.Ext(src) == ".c" {
		return LanguageC
	}
	return LanguageCXX
}

// Compiler returns the toolchain driver for the language.
func (l Language) Compiler() string {
	if l == LanguageC {
		return "gcc"
	}
	return "g++"
}

func (l Language) String() string {
	if l == LanguageC {
		return "C"
	}
	return "C++"
}
