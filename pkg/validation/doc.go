// Package validation implements the submission validator, the create input
// checks and the ingestion checks run on every generated schema.
package validation
