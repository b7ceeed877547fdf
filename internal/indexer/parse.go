package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bitbotScope/internal/model"
)

// ErrMalformedEnvelope marks a "721" envelope that does not follow the bitbot layout.
var ErrMalformedEnvelope = errors.New("malformed metadata envelope")

type assetMetadata struct {
	Image      json.RawMessage `json:"image"`
	References *struct {
		Src []string `json:"src"`
	} `json:"references"`
	LuckyFruit string                     `json:"Lucky Fruit"`
	Moon       string                     `json:"Moon"`
	UID        string                     `json:"Unique identification"`
	Traits     map[string]json.RawMessage `json:"traits"`
}

// ParseEnvelope converts a "721" envelope into a Bitbot. The record name is the
// only key of the object stored under policy.
func ParseEnvelope(envelope model.MetadataEnvelope, policy string) (model.Bitbot, error) {
	if !envelope.IsNFTMetadata() {
		return model.Bitbot{}, fmt.Errorf("%w: label %q", ErrMalformedEnvelope, envelope.Label)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(envelope.JSONMetadata, &root); err != nil {
		return model.Bitbot{}, malformed("decode metadata: %v", err)
	}

	rawPolicy, ok := root[policy]
	if !ok {
		return model.Bitbot{}, malformed("missing policy %s", policy)
	}

	var assets map[string]json.RawMessage
	if err := json.Unmarshal(rawPolicy, &assets); err != nil {
		return model.Bitbot{}, malformed("decode policy object: %v", err)
	}
	if len(assets) != 1 {
		return model.Bitbot{}, malformed("expected one asset under policy, got %d", len(assets))
	}

	var (
		name    string
		rawMeta json.RawMessage
	)
	for key, value := range assets {
		name, rawMeta = key, value
	}

	var meta assetMetadata
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return model.Bitbot{}, malformed("decode %s: %v", name, err)
	}

	image, err := parseImage(meta.Image)
	if err != nil {
		return model.Bitbot{}, malformed("%s image: %v", name, err)
	}
	if meta.References == nil {
		return model.Bitbot{}, malformed("%s: missing references", name)
	}

	bot := model.Bitbot{
		Name:       name,
		IPFS:       image,
		References: meta.References.Src,
		Meta: model.BitbotMeta{
			Fruit: meta.LuckyFruit,
			Moon:  meta.Moon,
			UID:   meta.UID,
		},
	}
	if bot.References == nil {
		bot.References = []string{}
	}
	for category, value := range meta.Traits {
		bot.Meta.Traits.Set(category, jsonString(value))
	}

	if rawPayload, ok := root["payload"]; ok && !isNull(rawPayload) {
		payloads, err := parsePayloads(rawPayload)
		if err != nil {
			return model.Bitbot{}, malformed("%s payload: %v", name, err)
		}
		bot.Payloads = payloads
	}

	return bot, nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedEnvelope, fmt.Sprintf(format, args...))
}

// Images longer than 64 bytes are split into an array of chunks on chain.
func parseImage(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", errors.New("missing")
	}
	var whole string
	if err := json.Unmarshal(raw, &whole); err == nil {
		return whole, nil
	}
	var chunks []string
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return "", fmt.Errorf("want string or array of strings")
	}
	return strings.Join(chunks, ""), nil
}

func parsePayloads(raw json.RawMessage) ([]map[string]string, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	payloads := make([]map[string]string, 0, len(items))
	for _, item := range items {
		payload := make(map[string]string, len(item))
		for label, value := range item {
			payload[label] = jsonString(value)
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// jsonString returns raw unquoted when it is a JSON string, else its JSON text.
func jsonString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
