package validation

import "strings"

// ValidateCreate checks the inputs of a create request before anything is
// sent to the generation service.
func ValidateCreate(name, message string) error {
	fields := map[string]string{}
	var labels []string
	if strings.TrimSpace(name) == "" {
		fields["formName"] = "Form name required"
		labels = append(labels, fields["formName"])
	}
	if strings.TrimSpace(message) == "" {
		fields["message"] = "Message required"
		labels = append(labels, fields["message"])
	}
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields, Message: strings.Join(labels, "; ")}
}

// ValidateMessage checks a refinement message.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return &Error{Fields: map[string]string{"message": "Message required"}, Message: "Message required"}
	}
	return nil
}
