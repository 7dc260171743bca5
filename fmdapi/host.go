package fmdapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/tidwall/gjson"
)

// HostBridge runs a script inside the hosting FileMaker application with an
// Execute Data API payload and returns the script result verbatim.
type HostBridge interface {
	Call(ctx context.Context, script string, payload []byte) ([]byte, error)
}

// HostBridgeFunc adapts a function to HostBridge.
type HostBridgeFunc func(ctx context.Context, script string, payload []byte) ([]byte, error)

// Call implements HostBridge.
func (f HostBridgeFunc) Call(ctx context.Context, script string, payload []byte) ([]byte, error) {
	return f(ctx, script, payload)
}

var (
	hostMu     sync.RWMutex
	hostBridge HostBridge
)

// RegisterHost installs the process-wide bridge used by host adapters
// created without an explicit one.
func RegisterHost(b HostBridge) {
	hostMu.Lock()
	defer hostMu.Unlock()
	hostBridge = b
}

func registeredHost() HostBridge {
	hostMu.RLock()
	defer hostMu.RUnlock()
	return hostBridge
}

// HostOptions configures a HostAdapter.
type HostOptions struct {
	// ScriptName is the host script that executes the Data API payload.
	ScriptName string
	// Bridge overrides the bridge installed with RegisterHost.
	Bridge HostBridge
}

// HostAdapter proxies every request through a host application script.
// It needs no server address or credentials.
type HostAdapter struct {
	script string
	bridge HostBridge
}

// NewHostAdapter returns an adapter bound to the host script.
func NewHostAdapter(opts HostOptions) *HostAdapter {
	return &HostAdapter{script: opts.ScriptName, bridge: opts.Bridge}
}

type hostAction string

const (
	actionRead     hostAction = "read"
	actionMetadata hostAction = "metaData"
	actionCreate   hostAction = "create"
	actionUpdate   hostAction = "update"
	actionDelete   hostAction = "delete"
)

func (a *HostAdapter) call(ctx context.Context, layout string, action hostAction, body map[string]any, out any) error {
	bridge := a.bridge
	if bridge == nil {
		bridge = registeredHost()
	}
	if bridge == nil {
		return ErrNoHost
	}
	if body == nil {
		body = map[string]any{}
	}
	body["layouts"] = layout
	body["action"] = string(action)
	body["version"] = "vLatest"
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("fmdapi: encode host payload: %w", err)
	}
	data, err := bridge.Call(ctx, a.script, payload)
	if err != nil {
		return fmt.Errorf("fmdapi: host script %q: %w", a.script, err)
	}
	code := gjson.GetBytes(data, "messages.0.code").String()
	if code != CodeOK {
		if code == "" {
			code = "500"
		}
		return &Error{Code: code, Message: gjson.GetBytes(data, "messages.0.message").String()}
	}
	if out == nil {
		return nil
	}
	if raw := gjson.GetBytes(data, "response"); raw.Exists() {
		if err := json.Unmarshal([]byte(raw.Raw), out); err != nil {
			return fmt.Errorf("fmdapi: decode host response: %w", err)
		}
	}
	return nil
}

func readBody(p ListParams) map[string]any {
	body := map[string]any{}
	for k, v := range p.query() {
		body[k] = v
	}
	for name, rng := range p.PortalRanges {
		if rng.Offset > 0 {
			body["offset."+name] = strconv.Itoa(rng.Offset)
		}
		if rng.Limit > 0 {
			body["limit."+name] = strconv.Itoa(rng.Limit)
		}
	}
	return body
}

func (a *HostAdapter) List(ctx context.Context, layout string, p ListParams) (*GetResponse, error) {
	out := &GetResponse{}
	if err := a.call(ctx, layout, actionRead, readBody(p), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) Get(ctx context.Context, layout string, recordID int, p GetParams) (*GetResponse, error) {
	body := readBody(ListParams{GetParams: p})
	body["recordId"] = strconv.Itoa(recordID)
	out := &GetResponse{}
	if err := a.call(ctx, layout, actionRead, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) Find(ctx context.Context, layout string, p FindParams) (*GetResponse, error) {
	out := &GetResponse{}
	if err := a.call(ctx, layout, actionRead, p.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) Create(ctx context.Context, layout string, fieldData map[string]any, p CreateParams) (*CreateResponse, error) {
	out := &CreateResponse{}
	if err := a.call(ctx, layout, actionCreate, writeBody(fieldData, p, 0), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) Update(ctx context.Context, layout string, recordID int, fieldData map[string]any, p UpdateParams) (*UpdateResponse, error) {
	body := writeBody(fieldData, p.CreateParams, p.ModID)
	body["recordId"] = strconv.Itoa(recordID)
	out := &UpdateResponse{}
	if err := a.call(ctx, layout, actionUpdate, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) Delete(ctx context.Context, layout string, recordID int, p ScriptParams) (*DeleteResponse, error) {
	body := map[string]any{"recordId": strconv.Itoa(recordID)}
	for k, v := range p.values() {
		body[k] = v
	}
	out := &DeleteResponse{}
	if err := a.call(ctx, layout, actionDelete, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HostAdapter) LayoutMetadata(ctx context.Context, layout string) (*LayoutMetadata, error) {
	out := &LayoutMetadata{}
	if err := a.call(ctx, layout, actionMetadata, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
