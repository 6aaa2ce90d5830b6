package dto

type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	UserName string `json:"username,omitempty"`
}
