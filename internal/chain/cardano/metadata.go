package cardano

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/observation"
)

// RosenLabel is the metadata label carrying the bridge request.
const RosenLabel = "0"

type labelled struct {
	label string
	value json.RawMessage
}

// ParseRosenData extracts the bridge intent from a transaction's metadata.
// Koios returns metadata either as a list of {key, json} entries or as an
// object keyed by label; both are accepted. The rosen label must be the first
// entry and its value must carry to, bridgeFee, networkFee and toAddress.
// Any other shape is rejected with an *observation.RejectError.
func ParseRosenData(metadata json.RawMessage) (model.BridgeIntent, error) {
	entries, err := metadataEntries(metadata)
	if err != nil {
		return model.BridgeIntent{}, err
	}
	if len(entries) == 0 {
		return model.BridgeIntent{}, observation.Reject("no metadata")
	}
	if entries[0].label != RosenLabel {
		return model.BridgeIntent{}, observation.Reject("first metadata label is %q", entries[0].label)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entries[0].value, &fields); err != nil || fields == nil {
		return model.BridgeIntent{}, observation.Reject("rosen metadata is not an object")
	}

	toChain, err := stringField(fields, "to")
	if err != nil {
		return model.BridgeIntent{}, err
	}
	bridgeFee, err := stringField(fields, "bridgeFee")
	if err != nil {
		return model.BridgeIntent{}, err
	}
	networkFee, err := stringField(fields, "networkFee")
	if err != nil {
		return model.BridgeIntent{}, err
	}
	toAddress, err := addressField(fields, "toAddress")
	if err != nil {
		return model.BridgeIntent{}, err
	}

	return observation.NewBridgeIntent(toChain, toAddress, networkFee, bridgeFee)
}

func metadataEntries(metadata json.RawMessage) ([]labelled, error) {
	trimmed := bytes.TrimSpace(metadata)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var list []MetadataEntry
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, observation.Reject("malformed metadata list")
		}
		out := make([]labelled, 0, len(list))
		for _, entry := range list {
			label, ok := metadataLabel(entry.Key)
			if !ok {
				return nil, observation.Reject("malformed metadata key")
			}
			out = append(out, labelled{label: label, value: entry.JSON})
		}
		return out, nil
	case '{':
		var byLabel map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byLabel); err != nil {
			return nil, observation.Reject("malformed metadata object")
		}
		out := make([]labelled, 0, len(byLabel))
		for label, value := range byLabel {
			out = append(out, labelled{label: label, value: value})
		}
		sort.Slice(out, func(i, j int) bool { return labelLess(out[i].label, out[j].label) })
		return out, nil
	default:
		return nil, observation.Reject("metadata is neither a list nor an object")
	}
}

func metadataLabel(raw json.RawMessage) (string, bool) {
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return label, true
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String(), true
	}
	return "", false
}

func labelLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", observation.Reject("missing %s", key)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", observation.Reject("%s is not a string", key)
	}
	return value, nil
}

// addressField accepts a string or a list of string chunks, since metadata
// strings are capped at 64 bytes on Cardano.
func addressField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", observation.Reject("missing %s", key)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, nil
	}
	var chunks []string
	if err := json.Unmarshal(raw, &chunks); err != nil || len(chunks) == 0 {
		return "", observation.Reject("%s is neither a string nor a list of strings", key)
	}
	return strings.Join(chunks, ""), nil
}
