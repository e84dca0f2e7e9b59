package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/endpoint-nf-store/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockTableAdmin struct{ mock.Mock }

func (m *mockTableAdmin) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, aws.ToString(in.TableName))
	return &dynamodb.CreateTableOutput{}, args.Error(0)
}

func (m *mockTableAdmin) UpdateTimeToLive(ctx context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	args := m.Called(ctx, aws.ToString(in.TableName), aws.ToString(in.TimeToLiveSpecification.AttributeName))
	return &dynamodb.UpdateTimeToLiveOutput{}, args.Error(0)
}

var testTables = config.DynamoTables{
	EndpointNotifications: testNotificationsTable,
	NotificationsByApp:    testNfByAppTable,
	EndpointsByApp:        testEpByAppTable,
}

func TestBootstrap_CreatesAllTables(t *testing.T) {
	admin := &mockTableAdmin{}
	admin.On("CreateTable", mock.Anything, testNotificationsTable).Return(nil)
	admin.On("CreateTable", mock.Anything, testNfByAppTable).Return(nil)
	admin.On("CreateTable", mock.Anything, testEpByAppTable).Return(nil)
	admin.On("UpdateTimeToLive", mock.Anything, testNotificationsTable, attrTTL).Return(nil)

	core, logs := observer.New(zapcore.InfoLevel)
	Bootstrap(context.Background(), admin, testTables, zap.New(core))

	admin.AssertExpectations(t)
	assert.Equal(t, 3, logs.FilterMessage("Created table").Len())
}

func TestBootstrap_ExistingTablesAreQuiet(t *testing.T) {
	admin := &mockTableAdmin{}
	admin.On("CreateTable", mock.Anything, mock.Anything).Return(&types.ResourceInUseException{Message: aws.String("exists")})
	admin.On("UpdateTimeToLive", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("TTL is already enabled"))

	core, logs := observer.New(zapcore.InfoLevel)
	Bootstrap(context.Background(), admin, testTables, zap.New(core))

	assert.Zero(t, logs.FilterMessage("Could not create table").Len())
	assert.Zero(t, logs.FilterMessage("Created table").Len())
	assert.Equal(t, 1, logs.FilterMessage("Could not enable TTL").Len())
}

func TestAppEndpointTableInput_KeySchema(t *testing.T) {
	in := appEndpointTableInput("x")
	assert.Equal(t, attrApplicationID, aws.ToString(in.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
	assert.Equal(t, attrEndpointKeyHash, aws.ToString(in.KeySchema[1].AttributeName))
	assert.Equal(t, types.KeyTypeRange, in.KeySchema[1].KeyType)
}
