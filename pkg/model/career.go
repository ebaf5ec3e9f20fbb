package model

type Resume struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type CareerApplication struct {
	UserKey  string `json:"userKey"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Position string `json:"position" validate:"required,max=100"`
	Resume   Resume `json:"resume"`
}
