package observability

// Hooks into the unexported construction steps of Init.
var (
	BuildResource = buildResource
	SelectSampler = selectSampler
)
