package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (any, error)

type schemaVersion struct {
	eventType enums.OutboxEventType
	version   int
}

func (k schemaVersion) String() string {
	return fmt.Sprintf("%s@v%d", k.eventType, k.version)
}

// DecoderRegistry maps an event type and envelope version to the function
// that decodes its data. Consumers look payloads up here.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[schemaVersion]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: map[schemaVersion]decoderFunc{}}
}

// NewDomainDecoderRegistry knows v1 of every event in domainSchemas.
func NewDomainDecoderRegistry() *DecoderRegistry {
	reg := NewDecoderRegistry()
	for _, desc := range domainSchemas() {
		reg.Register(desc.EventType, 1, factoryDecoder(desc.PayloadFactory))
	}
	return reg
}

// Register replaces any decoder already known for the pair.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mu.Lock()
	r.decoders[schemaVersion{eventType, version}] = decoder
	r.mu.Unlock()
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	key := schemaVersion{eventType, version}
	r.mu.RLock()
	decode, ok := r.decoders[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder registered for %s", key)
	}
	out, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func factoryDecoder(factory func() any) decoderFunc {
	return func(payload json.RawMessage) (any, error) {
		out := factory()
		if err := json.Unmarshal(payload, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
