package blocks

import (
	"github.com/lixenwraith/scratchrun/engine"
	"github.com/lixenwraith/scratchrun/project"
	"github.com/lixenwraith/scratchrun/registry"
)

func init() {
	registry.RegisterFamily("events", eventHandlers)
}

func eventHandlers() map[string]engine.Handler {
	return map[string]engine.Handler{
		engine.HatFlag:           noop,
		engine.HatKey:            noop,
		engine.HatBroadcast:      noop,
		engine.HatSpriteClick:    noop,
		engine.HatStageClick:     noop,
		"event_broadcast":        broadcast,
		"event_broadcastandwait": broadcastAndWait,
		"event_broadcast_menu":   menu("BROADCAST_OPTION"),
	}
}

func broadcast(t *engine.Thread, id project.BlockID) (string, error) {
	t.World.Broadcast(t.Evaluate(id).Str("BROADCAST_INPUT"))
	return "", nil
}

// broadcastAndWait blocks until every receiver it started has finished
func broadcastAndWait(t *engine.Thread, id project.BlockID) (string, error) {
	started := t.World.Broadcast(t.Evaluate(id).Str("BROADCAST_INPUT"))
	return "", t.Wait(started)
}
