package sanitizer

import "strings"

// Pipeline applies normalizers left to right.
type Pipeline []func(string) string

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	emailPipeline    = Pipeline{strings.TrimSpace, strings.ToLower}
	locationPipeline = Pipeline{CollapseSpaces, trimTrailingComma}
)

func trimTrailingComma(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, ","))
}

func NormalizeEmail(email string) string {
	return emailPipeline.Apply(email)
}

// NormalizeLocation also drops a dangling comma left by place autocompletion.
func NormalizeLocation(location string) string {
	return locationPipeline.Apply(location)
}

func NormalizeName(name string) string {
	return CollapseSpaces(name)
}

// NormalizeUsername trims the login name. Inner spaces are kept so the
// travel API can reject them with its own message.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
