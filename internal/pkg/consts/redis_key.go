package consts

const (
	ContactInfoKey = "chat:contact:info:"
)
