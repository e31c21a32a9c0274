package ergo

import (
	"unicode/utf8"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/observation"
)

// RosenRegister holds the bridge request of a lock box.
const RosenRegister = "R4"

// ParseRosenData extracts the bridge intent from a box's R4 register, a
// Coll[Coll[Byte]] of toChain, toAddress, networkFee and bridgeFee. Any other
// shape is rejected with an *observation.RejectError.
func ParseRosenData(box Box) (model.BridgeIntent, error) {
	register, ok := box.AdditionalRegisters[RosenRegister]
	if !ok || register.SerializedValue == "" {
		return model.BridgeIntent{}, observation.Reject("no %s register", RosenRegister)
	}

	items, err := DecodeCollCollByte(register.SerializedValue)
	if err != nil {
		return model.BridgeIntent{}, observation.Reject("%s: %v", RosenRegister, err)
	}
	if len(items) < 4 {
		return model.BridgeIntent{}, observation.Reject("%s has %d items, want 4", RosenRegister, len(items))
	}

	fields := make([]string, 4)
	for i := range fields {
		if !utf8.Valid(items[i]) {
			return model.BridgeIntent{}, observation.Reject("%s item %d is not utf-8", RosenRegister, i)
		}
		fields[i] = string(items[i])
	}

	return observation.NewBridgeIntent(fields[0], fields[1], fields[2], fields[3])
}
