package dto

// ContactDTO 通讯录项响应，Status 来自在线登记表
type ContactDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}
