package models

// User is the minimal staff record the pipeline needs: role resolution and
// reminder delivery addresses. Account management lives in a separate system.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleID    int    `json:"role_id"`
}
