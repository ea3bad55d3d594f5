package client

// ResolveEndpoint returns the websocket endpoint to dial: the explicit
// override when set, otherwise ws://<host>/ derived from the serving host.
func ResolveEndpoint(override, host string) string {
	if override != "" {
		return override
	}
	return "ws://" + host + "/"
}
