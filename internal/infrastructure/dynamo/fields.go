package dynamo

// DynamoDB attribute names shared by the repositories and Bootstrap.
// They must match the dynamodbav tags on the domain types.
const (
	attrEndpointKeyHash = "endpoint_key_hash"
	attrSeqNum          = "seq_num"
	attrApplicationID   = "application_id"
	attrTTL             = "ttl"
)

// maxBatchWriteItems is the DynamoDB limit of write requests per BatchWriteItem call.
const maxBatchWriteItems = 25
