package discovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

// Device describes the monitored host in a discovery payload.
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
}

// Payload is the sensor config document published on the discovery topic.
type Payload struct {
	StateTopic        string `json:"state_topic"`
	Icon              string `json:"icon"`
	Name              string `json:"name"`
	UniqueID          string `json:"unique_id"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	Device            Device `json:"device"`
}

// Builder renders discovery topics and payloads for one host.
type Builder struct {
	topics       mqtt.Topics
	manufacturer string
	model        string
}

// NewBuilder creates a Builder. model is the detected hardware model; it is
// trimmed of surrounding whitespace.
func NewBuilder(topics mqtt.Topics, manufacturer, model string) *Builder {
	return &Builder{
		topics:       topics,
		manufacturer: manufacturer,
		model:        strings.TrimSpace(model),
	}
}

// Topic returns the discovery topic for d.
func (b *Builder) Topic(d metric.Descriptor) string {
	return b.topics.Discovery(d.Kind.String())
}

// Payload returns the discovery document for d.
func (b *Builder) Payload(d metric.Descriptor) Payload {
	host := b.topics.Host
	return Payload{
		StateTopic:        b.topics.Value(d.Kind.String()),
		Icon:              d.Icon,
		Name:              fmt.Sprintf("%s %s", host, d.DisplayName),
		UniqueID:          b.topics.UniqueID(d.Kind.String()),
		UnitOfMeasurement: d.Unit,
		Device: Device{
			Identifiers:  []string{host},
			Manufacturer: b.manufacturer,
			Model:        b.model,
			Name:         host,
		},
	}
}

// Encode returns the JSON encoding of the discovery document for d.
func (b *Builder) Encode(d metric.Descriptor) ([]byte, error) {
	data, err := json.Marshal(b.Payload(d))
	if err != nil {
		return nil, fmt.Errorf("encoding discovery payload for %s: %w", d.Kind, err)
	}
	return data, nil
}
