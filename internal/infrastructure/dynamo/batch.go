package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/endpoint-nf-store/internal/domain"
)

// PartialBatchError reports writes DynamoDB returned as unprocessed. The
// processed writes stay applied.
type PartialBatchError struct {
	Unprocessed int
	Total       int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch write: %d of %d items unprocessed", e.Unprocessed, e.Total)
}

func (e *PartialBatchError) Unwrap() error { return domain.ErrPartialBatch }

// batchWrite is a single write request addressed to a table.
type batchWrite struct {
	table string
	req   types.WriteRequest
}

func deleteWrite(table string, key map[string]types.AttributeValue) batchWrite {
	return batchWrite{table: table, req: types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}}}
}

// chunkWrites splits writes into BatchWriteItem request maps of at most
// maxBatchWriteItems entries, keeping the input order within each table.
func chunkWrites(writes []batchWrite) []map[string][]types.WriteRequest {
	var chunks []map[string][]types.WriteRequest
	for start := 0; start < len(writes); start += maxBatchWriteItems {
		end := min(start+maxBatchWriteItems, len(writes))
		chunk := make(map[string][]types.WriteRequest)
		for _, w := range writes[start:end] {
			chunk[w.table] = append(chunk[w.table], w.req)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// writeBatch sends writes as unordered, non-atomic BatchWriteItem requests.
// A client error stops the remaining chunks and is returned unchanged; earlier
// chunks are not rolled back. Unprocessed items are not retried and are
// reported as a *PartialBatchError once every chunk has been sent.
func writeBatch(ctx context.Context, client API, writes []batchWrite) error {
	unprocessed := 0
	for _, chunk := range chunkWrites(writes) {
		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: chunk})
		if err != nil {
			return err
		}
		for _, reqs := range out.UnprocessedItems {
			unprocessed += len(reqs)
		}
	}
	if unprocessed > 0 {
		return &PartialBatchError{Unprocessed: unprocessed, Total: len(writes)}
	}
	return nil
}
