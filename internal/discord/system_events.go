package discord

type SystemEventType string

const (
	SystemEventRefreshCommands SystemEventType = "refresh_commands"
	SystemEventLeaveGuild      SystemEventType = "leave_guild"
)

type SystemEvent struct {
	Type    SystemEventType
	GuildID string
}

var systemEventBus = make(chan SystemEvent, 16)

// PublishSystemEvent queues an event for the running bot. It never blocks and
// reports false when the queue is full.
func PublishSystemEvent(evt SystemEvent) bool {
	select {
	case systemEventBus <- evt:
		return true
	default:
		return false
	}
}

func SystemEvents() <-chan SystemEvent {
	return systemEventBus
}
