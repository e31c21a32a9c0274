package observation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rosenIndexer/internal/model"
)

// ErrRejected marks auxiliary data that does not encode a bridge request.
var ErrRejected = errors.New("not a rosen bridge request")

// RejectError explains why auxiliary data was rejected.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejected.Error(), e.Reason)
}

func (e *RejectError) Is(target error) bool {
	return target == ErrRejected
}

// Reject builds a RejectError with a formatted reason.
func Reject(format string, args ...interface{}) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a parse rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

// NewBridgeIntent validates the four intent fields and returns the intent.
// Either every field is usable or the intent is rejected as a whole.
func NewBridgeIntent(toChain, toAddress, networkFee, bridgeFee string) (model.BridgeIntent, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"to chain", toChain},
		{"to address", toAddress},
		{"network fee", networkFee},
		{"bridge fee", bridgeFee},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return model.BridgeIntent{}, Reject("empty %s", field.name)
		}
	}
	if err := checkFee("network fee", networkFee); err != nil {
		return model.BridgeIntent{}, err
	}
	if err := checkFee("bridge fee", bridgeFee); err != nil {
		return model.BridgeIntent{}, err
	}

	return model.BridgeIntent{
		ToChain:    strings.TrimSpace(toChain),
		ToAddress:  strings.TrimSpace(toAddress),
		NetworkFee: strings.TrimSpace(networkFee),
		BridgeFee:  strings.TrimSpace(bridgeFee),
	}, nil
}

func checkFee(name, value string) error {
	fee, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Reject("%s %q is not a decimal", name, value)
	}
	if fee.IsNegative() {
		return Reject("%s %q is negative", name, value)
	}
	return nil
}
