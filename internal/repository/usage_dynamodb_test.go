package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/notify-dispatch/internal/model"
)

type fakeDynamo struct {
	items     map[string]map[string]types.AttributeValue
	lastInput *dynamodb.UpdateItemInput
	err       error
}

// UpdateItem applies the usage expression to an in-memory item.
func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}

	key := in.Key["protocol"].(*types.AttributeValueMemberS).Value
	item, ok := f.items[key]
	if !ok {
		item = map[string]types.AttributeValue{"protocol": in.Key["protocol"]}
	}

	count := "0"
	if c, ok := item["counter"].(*types.AttributeValueMemberN); ok {
		count = c.Value
	}
	next := map[string]string{"0": "1", "1": "2", "2": "3"}[count]
	item["counter"] = &types.AttributeValueMemberN{Value: next}
	item["subject"] = in.ExpressionAttributeValues[":subject"]
	item["message"] = in.ExpressionAttributeValues[":message"]

	if f.items == nil {
		f.items = map[string]map[string]types.AttributeValue{}
	}
	f.items[key] = item
	return &dynamodb.UpdateItemOutput{Attributes: item}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key := in.Key["protocol"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[key]}, nil
}

func TestBuildUpdateInput(t *testing.T) {
	in := buildUpdateInput("NotificationUsage", model.ProtocolPush, "S", "M")

	if aws.ToString(in.TableName) != "NotificationUsage" {
		t.Errorf("TableName = %q", aws.ToString(in.TableName))
	}
	if aws.ToString(in.UpdateExpression) != usageUpdateExpression {
		t.Errorf("UpdateExpression = %q", aws.ToString(in.UpdateExpression))
	}
	if in.ExpressionAttributeNames["#count"] != "counter" {
		t.Errorf("#count = %q, want counter", in.ExpressionAttributeNames["#count"])
	}
	if in.ReturnValues != types.ReturnValueAllNew {
		t.Errorf("ReturnValues = %v, want ALL_NEW", in.ReturnValues)
	}
	start := in.ExpressionAttributeValues[":start"].(*types.AttributeValueMemberN).Value
	inc := in.ExpressionAttributeValues[":inc"].(*types.AttributeValueMemberN).Value
	if start != "0" || inc != "1" {
		t.Errorf(":start = %s, :inc = %s, want 0, 1", start, inc)
	}
	if key := in.Key["protocol"].(*types.AttributeValueMemberS).Value; key != "PUSH" {
		t.Errorf("key = %q, want PUSH", key)
	}
}

func TestDynamoDBUsageStore_UpsertAndGet(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewDynamoDBUsageStore(fake, "NotificationUsage")
	ctx := context.Background()

	if _, err := store.Get(ctx, model.ProtocolEmail); !errors.Is(err, ErrUsageNotFound) {
		t.Fatalf("Get() before upsert error = %v, want ErrUsageNotFound", err)
	}

	if _, err := store.Upsert(ctx, model.ProtocolEmail, "first", "one"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	rec, err := store.Upsert(ctx, model.ProtocolEmail, "second", "two")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	want := model.UsageRecord{Protocol: model.ProtocolEmail, Counter: 2, Subject: "second", Message: "two"}
	if *rec != want {
		t.Errorf("Upsert() = %+v, want %+v", *rec, want)
	}

	got, err := store.Get(ctx, model.ProtocolEmail)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *got != want {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}

func TestDynamoDBUsageStore_UpsertError(t *testing.T) {
	cause := errors.New("ResourceNotFoundException")
	store := NewDynamoDBUsageStore(&fakeDynamo{err: cause}, "missing")

	_, err := store.Upsert(context.Background(), model.ProtocolSMS, "s", "m")
	if !errors.Is(err, cause) {
		t.Errorf("Upsert() error = %v, want %v", err, cause)
	}
	if err.Error() != cause.Error() {
		t.Errorf("Upsert() error text = %q, want %q", err.Error(), cause.Error())
	}
}
