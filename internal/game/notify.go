package game

import "github.com/arenapilot/arenapilot/internal/game/rules"

// notify publishes a notification to every subscriber.
func (e *Engine) notify(kind rules.NotificationType, message string, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["game_id"] = e.id
	e.bus.Publish(rules.Notification{
		Type:    kind,
		Message: message,
		Data:    data,
	})
}
