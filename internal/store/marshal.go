package store

import (
	"encoding/json"
	"fmt"

	"github.com/strataops/backsim/internal/model"
)

// Detail payloads are serialized with the canonical marshaler so the stored
// bytes are deterministic: storing the same response twice produces
// byte-identical rows, and goldens over dumped rows stay stable.

func marshalSnapshot(s model.Snapshot) (string, error) {
	b, err := model.MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

func marshalItem(it model.BacklogItem) (string, error) {
	b, err := model.MarshalCanonical(it)
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	return string(b), nil
}

func marshalSummary(sum model.Summary) (string, error) {
	b, err := model.MarshalCanonical(sum)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(b), nil
}

func unmarshalSnapshot(data string) (model.Snapshot, error) {
	var s model.Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return model.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

func unmarshalItem(data string) (model.BacklogItem, error) {
	var it model.BacklogItem
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		return model.BacklogItem{}, fmt.Errorf("unmarshal item: %w", err)
	}
	return it, nil
}

func unmarshalSummary(data string) (model.Summary, error) {
	var sum model.Summary
	if err := json.Unmarshal([]byte(data), &sum); err != nil {
		return model.Summary{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	return sum, nil
}
