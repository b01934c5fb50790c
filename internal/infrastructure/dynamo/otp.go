package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
)

// OtpRepo stores issued codes. PK: otp_id; GSI email-otp_id-index lets a
// lookup walk one email's records newest first.
type OtpRepo struct {
	client    tableAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewOtpRepo creates an OtpRepo. Records inserted without an expiry get now+ttl.
func NewOtpRepo(client *dynamodb.Client, tableName string, ttl time.Duration) *OtpRepo {
	return &OtpRepo{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

// Insert appends a record. Missing id, timestamps and expiry are filled in on o.
func (r *OtpRepo) Insert(ctx context.Context, o *domain.OtpRecord) error {
	now := r.now().UTC()
	if o.OtpID == "" {
		o.OtpID = id.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = now.Add(r.ttl)
	}
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": attrOtpID},
	})
	if err != nil {
		return storageErr("insert otp record", err)
	}
	return nil
}

// FindLatest returns the newest record matching f, or domain.ErrNotFound.
func (r *OtpRepo) FindLatest(ctx context.Context, f domain.OtpFilter) (*domain.OtpRecord, error) {
	input, err := latestOtpQuery(r.tableName, f)
	if err != nil {
		return nil, err
	}
	// The filter runs after each page is read, so a match may sit several pages in.
	p := dynamodb.NewQueryPaginator(r.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storageErr("query otp records", err)
		}
		if len(page.Items) == 0 {
			continue
		}
		var o domain.OtpRecord
		if err := attributevalue.UnmarshalMap(page.Items[0], &o); err != nil {
			return nil, storageErr("unmarshal otp record", err)
		}
		return &o, nil
	}
	return nil, fmt.Errorf("otp record for %s: %w", f.Email, domain.ErrNotFound)
}

// MarkUsed flips one record from UNUSED to USED. Losing that race, or marking a
// record that is already USED, yields domain.ErrCodeAlreadyUsed.
func (r *OtpRepo) MarkUsed(ctx context.Context, otpID string) error {
	used, err := attributevalue.Marshal(domain.OtpUsed)
	if err != nil {
		return fmt.Errorf("marshal otp status: %w", err)
	}
	unused, err := attributevalue.Marshal(domain.OtpUnused)
	if err != nil {
		return fmt.Errorf("marshal otp status: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrOtpID, otpID),
		UpdateExpression:    aws.String("SET #s = :used"),
		ConditionExpression: aws.String("attribute_exists(#pk) AND #s = :unused"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrOtpID,
			"#s":  attrOtpStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":used":   used,
			":unused": unused,
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp record %s: %w", otpID, domain.ErrCodeAlreadyUsed)
	}
	if err != nil {
		return storageErr("mark otp record used", err)
	}
	return nil
}

// latestOtpQuery builds a newest-first query over one email's records,
// filtered by purpose and code and, when set, status.
func latestOtpQuery(table string, f domain.OtpFilter) (*dynamodb.QueryInput, error) {
	if f.Purpose == "" {
		return nil, errors.New("otp filter: purpose is required")
	}
	names := map[string]string{
		"#e": attrEmail,
		"#p": attrPurpose,
		"#c": attrCode,
	}
	values := map[string]types.AttributeValue{
		":e": &types.AttributeValueMemberS{Value: f.Email},
		":p": &types.AttributeValueMemberS{Value: string(f.Purpose)},
		":c": &types.AttributeValueMemberS{Value: f.Code},
	}
	filter := "#p = :p AND #c = :c"
	if f.Status != nil {
		av, err := attributevalue.Marshal(*f.Status)
		if err != nil {
			return nil, fmt.Errorf("marshal otp status: %w", err)
		}
		names["#s"] = attrOtpStatus
		values[":s"] = av
		filter += " AND #s = :s"
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(indexOtpEmail),
		KeyConditionExpression:    aws.String("#e = :e"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	}, nil
}
