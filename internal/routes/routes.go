package routes

const (
	// Health
	Health = "/health"

	// Move-out endpoints
	MoveOut          = "/api/v1/moveout"
	MoveOutRefData   = "/api/v1/moveout/refdata"
	MoveOutSignature = "/api/v1/moveout/signature"
)
