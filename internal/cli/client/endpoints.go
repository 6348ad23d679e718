package client

const (
	// Report endpoints
	endpointReportsGenerate = "/reports/generate" // POST - binary-safe response

	// Session endpoints (read only, used for hydration)
	endpointSessions    = "/sessions"   // GET ?user_id=
	endpointSessionByID = "/session/%s" // GET
)
