package models

// Built-in base-content entries of the game. They always lead the load-order
// document and never enter the registry.
const (
	GustavDevUUID  = "28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8"
	GustavXDevUUID = "cb555efe-2d9e-131f-8195-a89329d218ea"
)

// IsSentinel reports whether uuid is one of the built-in entries.
func IsSentinel(uuid string) bool {
	return uuid == GustavDevUUID || uuid == GustavXDevUUID
}
