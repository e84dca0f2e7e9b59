package dynamo

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/endpoint-nf-store/internal/domain"
	"github.com/endpoint-nf-store/internal/pkg/metrics"
)

func strAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func binAttr(kh domain.KeyHash) types.AttributeValue {
	return &types.AttributeValueMemberB{Value: kh}
}

func numAttr(n int32) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(n), 10)}
}

// notificationKey builds the primary key of an endpoint notification row.
func notificationKey(kh domain.KeyHash, seqNum int32) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrEndpointKeyHash: binAttr(kh),
		attrSeqNum:          numAttr(seqNum),
	}
}

// appEndpointKey builds the primary key of an application/endpoint association row.
func appEndpointKey(appID string, kh domain.KeyHash) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrApplicationID:   strAttr(appID),
		attrEndpointKeyHash: binAttr(kh),
	}
}

// partitionQuery returns a query over the whole partition hashAttr = pk.
// When keyAttrs is non-empty only those attributes are projected.
func partitionQuery(table, hashAttr string, pk types.AttributeValue, keyAttrs ...string) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		ExpressionAttributeNames:  map[string]string{"#pk": hashAttr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":pk": pk},
	}
	if len(keyAttrs) > 0 {
		proj := ""
		for i, a := range keyAttrs {
			name := "#k" + strconv.Itoa(i)
			in.ExpressionAttributeNames[name] = a
			if i > 0 {
				proj += ", "
			}
			proj += name
		}
		in.ProjectionExpression = aws.String(proj)
	}
	return in
}

// queryKeys pages through a partition and returns the primary key of every row.
func queryKeys(ctx context.Context, client API, table, hashAttr string, pk types.AttributeValue, rangeAttr string) ([]map[string]types.AttributeValue, error) {
	p := dynamodb.NewQueryPaginator(client, partitionQuery(table, hashAttr, pk, hashAttr, rangeAttr))
	var keys []map[string]types.AttributeValue
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			keys = append(keys, map[string]types.AttributeValue{
				hashAttr:  item[hashAttr],
				rangeAttr: item[rangeAttr],
			})
		}
	}
	return keys, nil
}

// observe records the duration and outcome of a repository operation. Use as
// `defer observe("op", table, time.Now(), &err)` with a named error result.
func observe(operation, table string, start time.Time, err *error) {
	metrics.ObserveDBQuery(operation, table, start, *err)
}
