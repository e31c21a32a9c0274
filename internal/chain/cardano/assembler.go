package cardano

import (
	"fmt"

	"go.uber.org/zap"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/observation"
	"rosenIndexer/internal/tokens"
)

// Assembler turns Koios transactions into observations.
type Assembler struct {
	resolver tokens.Resolver
	logger   *zap.Logger
}

func NewAssembler(resolver tokens.Resolver, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{resolver: resolver, logger: logger}
}

// Assemble returns the observations found in a block's transactions.
// Transactions without a usable bridge request are skipped.
func (a *Assembler) Assemble(txs []Transaction, block model.Block) ([]model.Observation, error) {
	if a.resolver == nil {
		return nil, fmt.Errorf("token resolver is nil")
	}

	observations := make([]model.Observation, 0)
	for _, tx := range txs {
		obs, ok, err := a.assemble(tx, block)
		if err != nil {
			return nil, fmt.Errorf("assemble tx %s: %w", tx.TxHash, err)
		}
		if ok {
			observations = append(observations, obs)
		}
	}
	return observations, nil
}

func (a *Assembler) assemble(tx Transaction, block model.Block) (model.Observation, bool, error) {
	intent, err := ParseRosenData(tx.Metadata)
	if err != nil {
		a.logger.Debug("skip tx", zap.String("tx", tx.TxHash), zap.Error(err))
		return model.Observation{}, false, nil
	}

	if len(tx.Outputs) == 0 || len(tx.Outputs[0].AssetList) == 0 {
		a.logger.Debug("skip tx without bridged asset", zap.String("tx", tx.TxHash))
		return model.Observation{}, false, nil
	}
	asset := tx.Outputs[0].AssetList[0]

	targetTokenID, ok := a.resolver.Resolve(ChainName, asset.Fingerprint, intent.ToChain)
	if !ok {
		a.logger.Debug("skip tx with unknown token",
			zap.String("tx", tx.TxHash),
			zap.String("fingerprint", asset.Fingerprint),
			zap.String("to_chain", intent.ToChain),
		)
		return model.Observation{}, false, nil
	}

	toAddress, ok := observation.NormalizeTargetAddress(intent.ToChain, intent.ToAddress)
	if !ok {
		a.logger.Debug("skip tx with invalid target address",
			zap.String("tx", tx.TxHash),
			zap.String("to_chain", intent.ToChain),
			zap.String("to_address", intent.ToAddress),
		)
		return model.Observation{}, false, nil
	}

	amount, err := observation.NormalizeAmount(asset.Quantity)
	if err != nil {
		return model.Observation{}, false, err
	}

	var fromAddress string
	if len(tx.Inputs) > 0 {
		fromAddress = tx.Inputs[0].PaymentAddr.Bech32
	}

	return model.Observation{
		FromChain:          ChainName,
		ToChain:            intent.ToChain,
		FromAddress:        fromAddress,
		ToAddress:          toAddress,
		Amount:             amount,
		BridgeFee:          intent.BridgeFee,
		NetworkFee:         intent.NetworkFee,
		SourceChainTokenID: asset.Fingerprint,
		TargetChainTokenID: targetTokenID,
		SourceTxID:         tx.TxHash,
		SourceBlockID:      block.Hash,
		RequestID:          observation.RequestID(tx.TxHash),
	}, true, nil
}
