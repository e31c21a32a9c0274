package ergo

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"rosenIndexer/internal/model"
	"rosenIndexer/internal/observation"
	"rosenIndexer/internal/tokens"
)

// Assembler turns Ergo transactions into observations.
type Assembler struct {
	resolver tokens.Resolver
	network  Network
	logger   *zap.Logger
}

func NewAssembler(resolver tokens.Resolver, network Network, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{resolver: resolver, network: network, logger: logger}
}

// Assemble returns the observations found in a block's transactions. A
// transaction yields at most one observation, from its first lock box.
func (a *Assembler) Assemble(txs []Transaction, block model.Block) ([]model.Observation, error) {
	if a.resolver == nil {
		return nil, fmt.Errorf("token resolver is nil")
	}

	observations := make([]model.Observation, 0)
	for _, tx := range txs {
		obs, ok, err := a.assemble(tx, block)
		if err != nil {
			return nil, fmt.Errorf("assemble tx %s: %w", tx.ID, err)
		}
		if ok {
			observations = append(observations, obs)
		}
	}
	return observations, nil
}

func (a *Assembler) assemble(tx Transaction, block model.Block) (model.Observation, bool, error) {
	for _, box := range tx.Outputs {
		intent, err := ParseRosenData(box)
		if err != nil {
			continue
		}
		if len(box.Assets) == 0 {
			a.logger.Debug("skip lock box without token", zap.String("tx", tx.ID), zap.String("box", box.BoxID))
			continue
		}
		token := box.Assets[0]

		targetTokenID, ok := a.resolver.Resolve(ChainName, token.TokenID, intent.ToChain)
		if !ok {
			a.logger.Debug("skip lock box with unknown token",
				zap.String("tx", tx.ID),
				zap.String("token", token.TokenID),
				zap.String("to_chain", intent.ToChain),
			)
			continue
		}

		toAddress, ok := observation.NormalizeTargetAddress(intent.ToChain, intent.ToAddress)
		if !ok {
			a.logger.Debug("skip lock box with invalid target address",
				zap.String("tx", tx.ID),
				zap.String("to_chain", intent.ToChain),
				zap.String("to_address", intent.ToAddress),
			)
			continue
		}

		fromAddress, err := a.inputAddress(tx)
		if err != nil {
			return model.Observation{}, false, err
		}

		txID := tx.ID
		if txID == "" {
			txID = box.TransactionID
		}

		return model.Observation{
			FromChain:          ChainName,
			ToChain:            intent.ToChain,
			FromAddress:        fromAddress,
			ToAddress:          toAddress,
			Amount:             strconv.FormatUint(token.Amount, 10),
			BridgeFee:          intent.BridgeFee,
			NetworkFee:         intent.NetworkFee,
			SourceChainTokenID: token.TokenID,
			TargetChainTokenID: targetTokenID,
			SourceTxID:         txID,
			SourceBlockID:      block.Hash,
			RequestID:          observation.RequestID(txID),
		}, true, nil
	}
	return model.Observation{}, false, nil
}

func (a *Assembler) inputAddress(tx Transaction) (string, error) {
	if len(tx.Inputs) == 0 {
		return "", nil
	}
	input := tx.Inputs[0]
	if input.Address != "" || input.ErgoTree == "" {
		return input.Address, nil
	}
	address, err := AddressFromErgoTree(input.ErgoTree, a.network)
	if err != nil {
		return "", fmt.Errorf("input %s address: %w", input.BoxID, err)
	}
	return address, nil
}
