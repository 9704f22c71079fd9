package conversation

// Suggestions are starter prompts offered before the first message.
func Suggestions() []string {
	return []string{
		"Create a simple contact form with name, email, and message.",
		"Build a job application form with personal details, work history.",
		"Make a feedback form with rating scale, comments, and improvement suggestions.",
		"Design an event registration form with attendee name, email, and ticket type selection.",
	}
}
