package port

// Weather provides a textual weather summary for a city. It never
// fails: lookup errors degrade to an advisory fallback message so the
// orchestrator can always interpolate something into the prompt.
type Weather interface {
	Summary(city string) string
}
