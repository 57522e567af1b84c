package dto

type UserSignup struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthClaims is the decoded session credential. Only the email subject is
// carried in the token; the user record itself is always re-fetched.
type AuthClaims struct {
	Email  string
	Expiry float64
}
