package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/notify-dispatch/internal/model"
	"github.com/pkg/errors"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by the store.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// usageUpdateExpression starts the counter at 0 when absent and increments
// it in the same write.
const usageUpdateExpression = "SET #count = if_not_exists(#count, :start) + :inc, subject = :subject, message = :message"

// DynamoDBUsageStore keeps usage in a table whose partition key is the
// string attribute "protocol".
type DynamoDBUsageStore struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoDBUsageStore(client DynamoDBAPI, table string) *DynamoDBUsageStore {
	return &DynamoDBUsageStore{client: client, table: table}
}

func usageKey(protocol model.Protocol) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"protocol": &types.AttributeValueMemberS{Value: protocol.String()},
	}
}

func buildUpdateInput(table string, protocol model.Protocol, subject, message string) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:        aws.String(table),
		Key:              usageKey(protocol),
		UpdateExpression: aws.String(usageUpdateExpression),
		ExpressionAttributeNames: map[string]string{
			"#count": "counter",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start":   &types.AttributeValueMemberN{Value: "0"},
			":inc":     &types.AttributeValueMemberN{Value: "1"},
			":subject": &types.AttributeValueMemberS{Value: subject},
			":message": &types.AttributeValueMemberS{Value: message},
		},
		ReturnValues: types.ReturnValueAllNew,
	}
}

func (s *DynamoDBUsageStore) Upsert(ctx context.Context, protocol model.Protocol, subject, message string) (*model.UsageRecord, error) {
	out, err := s.client.UpdateItem(ctx, buildUpdateInput(s.table, protocol, subject, message))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return decodeUsageItem(out.Attributes)
}

func (s *DynamoDBUsageStore) Get(ctx context.Context, protocol model.Protocol) (*model.UsageRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            usageKey(protocol),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(out.Item) == 0 {
		return nil, ErrUsageNotFound
	}
	return decodeUsageItem(out.Item)
}

func decodeUsageItem(item map[string]types.AttributeValue) (*model.UsageRecord, error) {
	var rec model.UsageRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, errors.Wrap(err, "decode usage item")
	}
	return &rec, nil
}
