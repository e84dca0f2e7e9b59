package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/endpoint-nf-store/internal/domain"
)

// appEndpoint is one application -> endpoint association.
// PK: application_id, SK: endpoint_key_hash.
type appEndpoint struct {
	ApplicationID   string         `dynamodbav:"application_id"`
	EndpointKeyHash domain.KeyHash `dynamodbav:"endpoint_key_hash"`
}

// appEndpointTable implements the operations shared by every table keyed by
// (application_id, endpoint_key_hash).
type appEndpointTable struct {
	client    API
	tableName string
}

func (t appEndpointTable) put(ctx context.Context, appID string, kh domain.KeyHash) error {
	item, err := attributevalue.MarshalMap(appEndpoint{ApplicationID: appID, EndpointKeyHash: kh})
	if err != nil {
		return fmt.Errorf("marshal app endpoint: %w", err)
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.tableName),
		Item:      item,
	})
	return err
}

func (t appEndpointTable) delete(ctx context.Context, appID string, kh domain.KeyHash) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.tableName),
		Key:       appEndpointKey(appID, kh),
	})
	return err
}

func (t appEndpointTable) list(ctx context.Context, appID string) ([]domain.KeyHash, error) {
	p := dynamodb.NewQueryPaginator(t.client, partitionQuery(t.tableName, attrApplicationID, strAttr(appID), attrApplicationID, attrEndpointKeyHash))
	var hashes []domain.KeyHash
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []appEndpoint
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, ae := range page {
			hashes = append(hashes, ae.EndpointKeyHash)
		}
	}
	return hashes, nil
}
