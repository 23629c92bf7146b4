package constants

// Audit actions.
const (
	Update      = "UPDATE"
	Delete      = "DELETE"
	CreateIndex = "CREATE_INDEX"
)
