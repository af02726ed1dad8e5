package domain

const (
	ActingUserCtxKey = "pt-actingUser"
)
