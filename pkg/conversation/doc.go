// Package conversation drives a form draft from the first natural-language
// prompt to a published schema.
//
// A Controller owns one FormDraft. Each network-backed transition (create,
// refine, publish) runs with the controller unlocked but flagged busy, so a
// second request while one is pending is rejected with ErrBusy instead of
// racing the wholesale schema replacement. User messages are appended to the
// log as pending before the call and settle as confirmed or failed after it.
package conversation
