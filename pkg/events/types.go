package events

// Event codes published on the bus. Each one has a matching row in the
// notification_types registry.
const (
	MirrorCompleted = "MIRROR_COMPLETED"
	MirrorFailed    = "MIRROR_FAILED"
	MirrorShared    = "MIRROR_SHARED"
	FriendRequested = "FRIEND_REQUESTED"
	FriendAccepted  = "FRIEND_ACCEPTED"
)
