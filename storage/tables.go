package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
)

const (
	// Binary properties are limited to 64 KiB; chunks stay below that.
	tableChunkSize = 48 * 1024
	// Entities carry at most 252 custom properties.
	tableMaxChunks = 240
)

// ErrValueTooLarge is returned when a blob does not fit in one table entity.
var ErrValueTooLarge = errors.New("value too large for table entity")

type tableClient interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	UpsertEntity(ctx context.Context, entity []byte, options *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error)
}

// Tables stores blobs in an Azure table, one entity per key. The blob is
// split into Edm.Binary chunk properties.
type Tables struct {
	client    tableClient
	partition string
}

// NewTables connects to the snapshot table using a storage connection string.
func NewTables(connStr, table, partition string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return newTables(svc.NewClient(table), partition), nil
}

func newTables(client tableClient, partition string) *Tables {
	if partition == "" {
		partition = "board"
	}
	return &Tables{client: client, partition: partition}
}

func (t *Tables) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.client.GetEntity(ctx, t.partition, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeChunkedEntity(resp.Value)
}

func (t *Tables) Set(ctx context.Context, key string, value []byte) error {
	payload, err := encodeChunkedEntity(t.partition, key, value)
	if err != nil {
		return err
	}
	_, err = t.client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func chunkProperty(i int) string {
	return "Data" + strconv.Itoa(i)
}

func encodeChunkedEntity(pk, rk string, value []byte) ([]byte, error) {
	n := (len(value) + tableChunkSize - 1) / tableChunkSize
	if n > tableMaxChunks {
		return nil, fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(value))
	}
	ent := map[string]any{
		"PartitionKey": pk,
		"RowKey":       rk,
		"Chunks":       n,
	}
	for i := 0; i < n; i++ {
		end := (i + 1) * tableChunkSize
		if end > len(value) {
			end = len(value)
		}
		name := chunkProperty(i)
		ent[name] = base64.StdEncoding.EncodeToString(value[i*tableChunkSize : end])
		ent[name+"@odata.type"] = "Edm.Binary"
	}
	return sonic.Marshal(ent)
}

func decodeChunkedEntity(data []byte) ([]byte, error) {
	var ent map[string]any
	if err := sonic.Unmarshal(data, &ent); err != nil {
		return nil, err
	}
	count, ok := ent["Chunks"].(float64)
	if !ok || count < 0 {
		return nil, fmt.Errorf("%w: missing chunk count", ErrCorrupt)
	}
	var out []byte
	for i := 0; i < int(count); i++ {
		s, ok := ent[chunkProperty(i)].(string)
		if !ok {
			return nil, fmt.Errorf("%w: missing chunk %d", ErrCorrupt, i)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", ErrCorrupt, i, err)
		}
		out = append(out, b...)
	}
	return out, nil
}
