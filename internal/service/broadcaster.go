package service

// Broadcaster publishes handler outcomes to every connected observer. The
// connection registry satisfies this; handlers never touch channels
// directly.
type Broadcaster interface {
	Broadcast(message string)
}

// PushDispatcher hands a machine id to the web-push worker pool. A nil
// dispatcher disables push notifications.
type PushDispatcher interface {
	Dispatch(machineID int64)
}
