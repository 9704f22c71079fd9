// Package tui fills a form interactively in the terminal using survey
// prompts behind a PromptDriver seam.
package tui
