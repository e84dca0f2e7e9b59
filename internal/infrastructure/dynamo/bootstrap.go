package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/endpoint-nf-store/internal/config"
	"go.uber.org/zap"
)

// TableAdmin is the subset of *dynamodb.Client Bootstrap uses.
type TableAdmin interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, in *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// Bootstrap creates the notification tables if they don't already exist.
// Safe to call on every startup: existing tables are skipped.
func Bootstrap(ctx context.Context, client TableAdmin, tables config.DynamoTables, log *zap.Logger) {
	createTable(ctx, client, log, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.EndpointNotifications),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrEndpointKeyHash), AttributeType: types.ScalarAttributeTypeB},
			{AttributeName: aws.String(attrSeqNum), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrEndpointKeyHash), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrSeqNum), KeyType: types.KeyTypeRange},
		},
	})
	enableTTL(ctx, client, log, tables.EndpointNotifications, attrTTL)

	for _, name := range []string{tables.NotificationsByApp, tables.EndpointsByApp} {
		createTable(ctx, client, log, appEndpointTableInput(name))
	}
}

func appEndpointTableInput(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrApplicationID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrEndpointKeyHash), AttributeType: types.ScalarAttributeTypeB},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrApplicationID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrEndpointKeyHash), KeyType: types.KeyTypeRange},
		},
	}
}

func createTable(ctx context.Context, client TableAdmin, log *zap.Logger, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException: the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			log.Warn("Could not create table", zap.String("table", *input.TableName), zap.Error(err))
		}
	} else {
		log.Info("Created table", zap.String("table", *input.TableName))
	}
}

func enableTTL(ctx context.Context, client TableAdmin, log *zap.Logger, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		log.Warn("Could not enable TTL", zap.String("table", tableName), zap.Error(err))
	}
}
