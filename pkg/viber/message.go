package viber

import "encoding/json"

// Message is one of the fixed message kinds the platform accepts. Its fields
// are merged over the request envelope at send time; on a key collision the
// message field wins. RawMessage is the escape hatch for shapes this package
// does not model.
type Message interface {
	payload() map[string]interface{}
}

// TextMessage is a plain text message.
type TextMessage struct {
	Text string
}

func (m TextMessage) payload() map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": m.Text}
}

// PictureMessage sends an image by URL with an optional caption and thumbnail.
type PictureMessage struct {
	Text      string
	Media     string
	Thumbnail string
}

func (m PictureMessage) payload() map[string]interface{} {
	p := map[string]interface{}{"type": "picture", "text": m.Text, "media": m.Media}
	if m.Thumbnail != "" {
		p["thumbnail"] = m.Thumbnail
	}
	return p
}

// URLMessage sends a link rendered by the platform.
type URLMessage struct {
	Media string
}

func (m URLMessage) payload() map[string]interface{} {
	return map[string]interface{}{"type": "url", "media": m.Media}
}

// StickerMessage sends a sticker from the platform catalogue.
type StickerMessage struct {
	StickerID int
}

func (m StickerMessage) payload() map[string]interface{} {
	return map[string]interface{}{"type": "sticker", "sticker_id": m.StickerID}
}

// RawMessage is an opaque payload forwarded as-is. The caller owns the key
// set, including the "type" field.
type RawMessage map[string]interface{}

func (m RawMessage) payload() map[string]interface{} {
	p := make(map[string]interface{}, len(m))
	for k, v := range m {
		p[k] = v
	}
	return p
}

// validateMessage rejects a raw message that names a type but carries no data
// for it. Typed messages always carry their full field set.
func validateMessage(msg Message) error {
	rm, ok := msg.(RawMessage)
	if !ok {
		return nil
	}
	if _, hasType := rm["type"]; hasType && len(rm) == 1 {
		return ErrMissingMessageData
	}
	return nil
}

// mergeMessage applies the message fields over the envelope. Message fields
// override envelope defaults.
func mergeMessage(envelope map[string]interface{}, msg Message) {
	if msg == nil {
		return
	}
	for k, v := range msg.payload() {
		envelope[k] = v
	}
}

// serializeTrackingData encodes caller tracking data as the JSON string the
// platform round-trips. Nil and empty input become the literal empty string,
// never null: the server mishandles a null tracking_data field.
func serializeTrackingData(trackingData map[string]interface{}) string {
	if len(trackingData) == 0 {
		return ""
	}
	data, err := json.Marshal(trackingData)
	if err != nil {
		return ""
	}
	return string(data)
}
