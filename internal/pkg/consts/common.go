package consts

const (
	ContactStatusOnline  = "online"
	ContactStatusOffline = "offline"
)
