package convoapi

// Envelope holds the fields every Convo API response carries.
type Envelope struct {
	Timestamp  string `json:"timestamp,omitempty"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
}

type RegisterRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Password    string  `json:"password"`
	Firstname   *string `json:"firstname,omitempty"`
	Lastname    *string `json:"lastname,omitempty"`
}

type RegisterResponse struct {
	Envelope
	Data *UserData `json:"data"`
}

type UserData struct {
	UserID                int64   `json:"userId"`
	Username              string  `json:"username"`
	Email                 string  `json:"email"`
	IsEmailVerified       bool    `json:"isEmailVerified"`
	PhoneNumber           string  `json:"phoneNumber"`
	IsPhoneNumberVerified bool    `json:"isPhoneNumberVerified"`
	Firstname             *string `json:"firstname"`
	Lastname              *string `json:"lastname"`
}

type OtpResponse struct {
	Envelope
}

// LoginRequest is sent as query parameters, not as a body.
type LoginRequest struct {
	Username    string
	Password    string
	DeviceModel string
	DeviceOS    string
	DeviceID    string
	DeviceToken string
}

type LoginResponse struct {
	Envelope
	Data *LoginData `json:"data"`
}

type LoginData struct {
	SessionID string `json:"sessionId"`
}

// ErrorResponse is the body the server sends with a failing status.
type ErrorResponse struct {
	Envelope
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}
