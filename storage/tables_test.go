package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
)

type fakeTable struct {
	entities map[string][]byte
	lastOpts *aztables.UpsertEntityOptions
}

func (f *fakeTable) GetEntity(ctx context.Context, pk, rk string, _ *aztables.GetEntityOptions) (aztables.GetEntityResponse, error) {
	v, ok := f.entities[pk+"/"+rk]
	if !ok {
		return aztables.GetEntityResponse{}, &azcore.ResponseError{StatusCode: 404}
	}
	return aztables.GetEntityResponse{Value: v}, nil
}

func (f *fakeTable) UpsertEntity(ctx context.Context, entity []byte, opts *aztables.UpsertEntityOptions) (aztables.UpsertEntityResponse, error) {
	var keys struct {
		PartitionKey string
		RowKey       string
	}
	if err := sonic.Unmarshal(entity, &keys); err != nil {
		return aztables.UpsertEntityResponse{}, err
	}
	if f.entities == nil {
		f.entities = map[string][]byte{}
	}
	f.entities[keys.PartitionKey+"/"+keys.RowKey] = entity
	f.lastOpts = opts
	return aztables.UpsertEntityResponse{}, nil
}

func TestTablesRoundTrip(t *testing.T) {
	ctx := context.Background()
	table := &fakeTable{}
	kv := newTables(table, "")

	if _, err := kv.Get(ctx, TasksKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	value := []byte(`{"version":1,"state":{"tasks":[]}}`)
	if err := kv.Set(ctx, TasksKey, value); err != nil {
		t.Fatalf("set: %v", err)
	}
	if table.lastOpts == nil || table.lastOpts.UpdateMode != aztables.UpdateModeReplace {
		t.Fatalf("expected replace upsert, got %#v", table.lastOpts)
	}
	if _, ok := table.entities["board/"+TasksKey]; !ok {
		t.Fatalf("expected entity in default partition")
	}
	got, err := kv.Get(ctx, TasksKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestTablesChunksLargeValues(t *testing.T) {
	ctx := context.Background()
	table := &fakeTable{}
	kv := newTables(table, "p")

	value := []byte(strings.Repeat("é", tableChunkSize+1))
	if err := kv.Set(ctx, TasksKey, value); err != nil {
		t.Fatalf("set: %v", err)
	}
	var ent map[string]any
	if err := sonic.Unmarshal(table.entities["p/"+TasksKey], &ent); err != nil {
		t.Fatalf("decode entity: %v", err)
	}
	if ent["Chunks"].(float64) != 3 {
		t.Fatalf("expected 3 chunks, got %v", ent["Chunks"])
	}
	if ent["Data0@odata.type"] != "Edm.Binary" {
		t.Fatalf("expected binary annotation, got %v", ent["Data0@odata.type"])
	}
	got, err := kv.Get(ctx, TasksKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("chunked value did not round trip")
	}
}

func TestTablesRejectsOversizedValues(t *testing.T) {
	kv := newTables(&fakeTable{}, "p")
	value := make([]byte, tableChunkSize*tableMaxChunks+1)
	if err := kv.Set(context.Background(), TasksKey, value); !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}
}

func TestDecodeChunkedEntityCorrupt(t *testing.T) {
	tests := map[string]string{
		"no count":      `{"PartitionKey":"p","RowKey":"k"}`,
		"missing chunk": `{"Chunks":2,"Data0":"YQ=="}`,
		"bad base64":    `{"Chunks":1,"Data0":"***"}`,
	}
	for name, ent := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeChunkedEntity([]byte(ent)); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}
