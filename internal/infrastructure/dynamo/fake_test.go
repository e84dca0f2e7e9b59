package dynamo

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	testNotificationsTable = "endpoint_notifications"
	testNfByAppTable       = "notifications_by_app"
	testEpByAppTable       = "endpoints_by_app"
)

type fakeTable struct {
	hashAttr  string
	rangeAttr string
	items     map[string]map[string]types.AttributeValue
}

func (t *fakeTable) key(item map[string]types.AttributeValue) string {
	return avKey(item[t.hashAttr]) + "|" + avKey(item[t.rangeAttr])
}

// fakeDynamo is an in-memory stand-in for the tables the repositories use.
// It understands the "#pk = :pk" partition queries built by partitionQuery.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]*fakeTable

	// errs makes the named operation fail.
	errs map[string]error
	// unprocessedTable makes BatchWriteItem hand back every write to that table.
	unprocessedTable string
	// pageSize caps the items of one Query page when positive.
	pageSize int

	batchCalls []*dynamodb.BatchWriteItemInput
	queries    []*dynamodb.QueryInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables: map[string]*fakeTable{
			testNotificationsTable: {hashAttr: attrEndpointKeyHash, rangeAttr: attrSeqNum, items: map[string]map[string]types.AttributeValue{}},
			testNfByAppTable:       {hashAttr: attrApplicationID, rangeAttr: attrEndpointKeyHash, items: map[string]map[string]types.AttributeValue{}},
			testEpByAppTable:       {hashAttr: attrApplicationID, rangeAttr: attrEndpointKeyHash, items: map[string]map[string]types.AttributeValue{}},
		},
		errs: map[string]error{},
	}
}

func (f *fakeDynamo) table(name *string) (*fakeTable, error) {
	t, ok := f.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table " + aws.ToString(name))}
	}
	return t, nil
}

func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table].items)
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["PutItem"]; err != nil {
		return nil, err
	}
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	t.items[t.key(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["GetItem"]; err != nil {
		return nil, err
	}
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: t.items[t.key(in.Key)]}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["DeleteItem"]; err != nil {
		return nil, err
	}
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	delete(t.items, t.key(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	if err := f.errs["Query"]; err != nil {
		return nil, err
	}
	t, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	if aws.ToString(in.KeyConditionExpression) != "#pk = :pk" || in.ExpressionAttributeNames["#pk"] != t.hashAttr {
		return nil, errors.New("fake: unsupported key condition")
	}
	pk := avKey(in.ExpressionAttributeValues[":pk"])
	var items []map[string]types.AttributeValue
	for _, item := range t.items {
		if avKey(item[t.hashAttr]) == pk {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return avLess(items[i][t.rangeAttr], items[j][t.rangeAttr])
	})
	if len(in.ExclusiveStartKey) > 0 {
		start := t.key(in.ExclusiveStartKey)
		for i, item := range items {
			if t.key(item) == start {
				items = items[i+1:]
				break
			}
		}
	}
	out := &dynamodb.QueryOutput{}
	if f.pageSize > 0 && len(items) > f.pageSize {
		items = items[:f.pageSize]
		last := items[len(items)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			t.hashAttr:  last[t.hashAttr],
			t.rangeAttr: last[t.rangeAttr],
		}
	}
	out.Items, out.Count = items, int32(len(items))
	return out, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, in)
	if err := f.errs["BatchWriteItem"]; err != nil {
		return nil, err
	}
	total := 0
	for _, reqs := range in.RequestItems {
		total += len(reqs)
	}
	if total == 0 || total > maxBatchWriteItems {
		return nil, fmt.Errorf("fake: ValidationException: %d write requests", total)
	}
	for name, reqs := range in.RequestItems {
		t, err := f.table(aws.String(name))
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		for _, req := range reqs {
			var k string
			switch {
			case req.PutRequest != nil:
				k = t.key(req.PutRequest.Item)
			case req.DeleteRequest != nil:
				k = t.key(req.DeleteRequest.Key)
			}
			if seen[k] {
				return nil, errors.New("fake: ValidationException: provided list of item keys contains duplicates")
			}
			seen[k] = true
		}
	}
	unprocessed := map[string][]types.WriteRequest{}
	for name, reqs := range in.RequestItems {
		t := f.tables[name]
		if name == f.unprocessedTable {
			unprocessed[name] = reqs
			continue
		}
		for _, req := range reqs {
			switch {
			case req.PutRequest != nil:
				t.items[t.key(req.PutRequest.Item)] = req.PutRequest.Item
			case req.DeleteRequest != nil:
				delete(t.items, t.key(req.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

func avKey(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + v.Value
	case *types.AttributeValueMemberN:
		return "N:" + v.Value
	case *types.AttributeValueMemberB:
		return "B:" + hex.EncodeToString(v.Value)
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", av)
}

func avLess(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			break
		}
		x, _ := strconv.ParseFloat(av.Value, 64)
		y, _ := strconv.ParseFloat(bv.Value, 64)
		return x < y
	case *types.AttributeValueMemberB:
		if bv, ok := b.(*types.AttributeValueMemberB); ok {
			return bytes.Compare(av.Value, bv.Value) < 0
		}
	}
	return avKey(a) < avKey(b)
}
