package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "fc-form"
	ClassHeader  ChromeClass = "fc-header"
	ClassActions ChromeClass = "fc-actions"
	ClassErrors  ChromeClass = "fc-errors"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":    string(ClassForm),
		"header":  string(ClassHeader),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
	}
}
