package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bitbotScope/internal/model"
)

// ExtractResult counts the work done for one or more assets.
type ExtractResult struct {
	Transactions int
	Skipped      int
	Processed    int
	Records      int
	Malformed    int
}

func (e *ExtractResult) add(other ExtractResult) {
	e.Transactions += other.Transactions
	e.Skipped += other.Skipped
	e.Processed += other.Processed
	e.Records += other.Records
	e.Malformed += other.Malformed
}

// Extract fetches the asset's transactions and turns the "721" metadata of
// every unprocessed one into bitbot records. The record cache and the
// processed set are persisted after each transaction, so an interrupted run
// resumes at the first unprocessed hash.
func (r *Runner) Extract(ctx context.Context, assetID string) (ExtractResult, error) {
	var result ExtractResult

	processedHashes, err := r.state.ProcessedTxs(ctx)
	if err != nil {
		return result, err
	}
	processed := NewOrderedSet(processedHashes)

	records, err := r.state.Bitbots(ctx)
	if err != nil {
		return result, err
	}

	txHashes, err := r.source.AssetTransactions(ctx, assetID)
	if err != nil {
		return result, fmt.Errorf("list transactions: %w", err)
	}
	result.Transactions = len(txHashes)

	logger := r.logger.With(
		zap.String("asset", assetID),
		zap.String("asset_name", model.AssetName(assetID, r.cfg.Policy)),
	)

	for _, txHash := range txHashes {
		if processed.Has(txHash) {
			result.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		envelopes, err := r.source.TransactionMetadata(ctx, txHash)
		if err != nil {
			return result, fmt.Errorf("metadata for tx %s: %w", txHash, err)
		}

		for _, envelope := range envelopes {
			if !envelope.IsNFTMetadata() {
				continue
			}
			bot, err := ParseEnvelope(envelope, r.cfg.Policy)
			if err != nil {
				result.Malformed++
				logger.Warn("skip malformed envelope", zap.String("tx_hash", txHash), zap.Error(err))
				continue
			}
			records = append(records, bot)
			result.Records++
			logger.Info("appended bitbot", zap.String("name", bot.Name), zap.String("tx_hash", txHash))
		}

		processed.Add(txHash)
		if err := r.state.SaveBitbots(ctx, records); err != nil {
			return result, err
		}
		if err := r.state.SaveProcessedTxs(ctx, processed.Items()); err != nil {
			return result, err
		}
		result.Processed++
	}

	return result, nil
}
