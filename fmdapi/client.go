package fmdapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultPageSize is the page size of ListAll and FindAll.
const DefaultPageSize = 100

// Validators check records returned by the server. FieldData is required;
// PortalData may be nil when the layout has no portals.
type Validators[T, P any] struct {
	FieldData  func(map[string]any) (T, error)
	PortalData func(map[string]any) (P, error)
}

// ClientOptions configures a Client.
type ClientOptions[T, P any] struct {
	Adapter    Adapter
	Layout     string
	Validators *Validators[T, P]
}

// Client is a typed client bound to one layout. T is the field data type,
// P the portal data type.
type Client[T, P any] struct {
	adapter    Adapter
	layout     string
	validators *Validators[T, P]
}

// Response is a decoded read response.
type Response[T, P any] struct {
	ScriptResponse
	Data     []Record[T, P]
	DataInfo DataInfo
}

// NewClient returns a client for the layout.
func NewClient[T, P any](opts ClientOptions[T, P]) *Client[T, P] {
	return &Client[T, P]{
		adapter:    opts.Adapter,
		layout:     opts.Layout,
		validators: opts.Validators,
	}
}

// Layout returns the layout the client is bound to.
func (c *Client[T, P]) Layout() string { return c.layout }

// Adapter returns the underlying adapter.
func (c *Client[T, P]) Adapter() Adapter { return c.adapter }

// List returns a page of records.
func (c *Client[T, P]) List(ctx context.Context, p ListParams) (*Response[T, P], error) {
	res, err := c.adapter.List(ctx, c.layout, p)
	if err != nil {
		return nil, err
	}
	return c.decode(res)
}

// ListAll pages through every record of the layout.
func (c *Client[T, P]) ListAll(ctx context.Context, p ListParams) ([]Record[T, P], error) {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Offset <= 0 {
		p.Offset = 1
	}
	var all []Record[T, P]
	for {
		res, err := c.List(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if len(res.Data) == 0 || len(all) >= res.DataInfo.FoundCount {
			return all, nil
		}
		p.Offset += p.Limit
	}
}

// Get returns a single record by its internal record id.
func (c *Client[T, P]) Get(ctx context.Context, recordID int, p GetParams) (*Record[T, P], error) {
	res, err := c.adapter.Get(ctx, c.layout, recordID, p)
	if err != nil {
		return nil, err
	}
	out, err := c.decode(res)
	if err != nil {
		return nil, err
	}
	if len(out.Data) != 1 {
		return nil, &NotSingularError{Layout: c.layout, Count: len(out.Data)}
	}
	return &out.Data[0], nil
}

// Find runs a find request. With IgnoreEmptyResult, no matches yields an
// empty response instead of an error.
func (c *Client[T, P]) Find(ctx context.Context, p FindParams) (*Response[T, P], error) {
	if p.Offset <= 1 {
		p.Offset = 0
	}
	res, err := c.adapter.Find(ctx, c.layout, p)
	if err != nil {
		if p.IgnoreEmptyResult && ErrorCode(err) == CodeNoRecords {
			return &Response[T, P]{}, nil
		}
		return nil, err
	}
	return c.decode(res)
}

// FindOne runs a find request that must match exactly one record.
func (c *Client[T, P]) FindOne(ctx context.Context, p FindParams) (*Record[T, P], error) {
	res, err := c.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(res.Data) != 1 {
		return nil, &NotSingularError{Layout: c.layout, Count: len(res.Data)}
	}
	return &res.Data[0], nil
}

// FindFirst returns the first match of a find request, or nil when the
// request ignores empty results and nothing matched.
func (c *Client[T, P]) FindFirst(ctx context.Context, p FindParams) (*Record[T, P], error) {
	res, err := c.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, nil
	}
	return &res.Data[0], nil
}

// FindAll pages through every match of a find request.
func (c *Client[T, P]) FindAll(ctx context.Context, p FindParams) ([]Record[T, P], error) {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Offset <= 0 {
		p.Offset = 1
	}
	p.IgnoreEmptyResult = true
	var all []Record[T, P]
	for {
		res, err := c.Find(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if len(all) == 0 || len(res.Data) == 0 || len(all) >= res.DataInfo.FoundCount {
			return all, nil
		}
		p.Offset += p.Limit
	}
}

// Create adds a record. Only the keys present in fieldData are written, so
// calculation and summary fields can be left out.
func (c *Client[T, P]) Create(ctx context.Context, fieldData map[string]any, p CreateParams) (*CreateResponse, error) {
	if fieldData == nil {
		fieldData = map[string]any{}
	}
	return c.adapter.Create(ctx, c.layout, fieldData, p)
}

// Update modifies a record. Only the keys present in fieldData are written.
func (c *Client[T, P]) Update(ctx context.Context, recordID int, fieldData map[string]any, p UpdateParams) (*UpdateResponse, error) {
	return c.adapter.Update(ctx, c.layout, recordID, fieldData, p)
}

// Delete removes a record.
func (c *Client[T, P]) Delete(ctx context.Context, recordID int, p ScriptParams) (*DeleteResponse, error) {
	return c.adapter.Delete(ctx, c.layout, recordID, p)
}

// Metadata returns the layout metadata.
func (c *Client[T, P]) Metadata(ctx context.Context) (*LayoutMetadata, error) {
	return c.adapter.LayoutMetadata(ctx, c.layout)
}

func (c *Client[T, P]) decode(res *GetResponse) (*Response[T, P], error) {
	out := &Response[T, P]{
		ScriptResponse: res.ScriptResponse,
		DataInfo:       res.DataInfo,
		Data:           make([]Record[T, P], 0, len(res.Data)),
	}
	for _, raw := range res.Data {
		rec, err := c.record(raw)
		if err != nil {
			return nil, err
		}
		out.Data = append(out.Data, rec)
	}
	return out, nil
}

func (c *Client[T, P]) record(raw RawRecord) (Record[T, P], error) {
	rec := Record[T, P]{RecordID: raw.RecordID, ModID: raw.ModID}
	portals := make(map[string]any, len(raw.PortalData))
	for k, v := range raw.PortalData {
		portals[k] = v
	}
	if c.validators != nil && c.validators.FieldData != nil {
		fd, err := c.validators.FieldData(raw.FieldData)
		if err != nil {
			return rec, &ValidationError{Layout: c.layout, RecordID: raw.RecordID, Err: err}
		}
		rec.FieldData = fd
	} else if err := convert(raw.FieldData, &rec.FieldData); err != nil {
		return rec, err
	}
	if c.validators != nil && c.validators.PortalData != nil {
		pd, err := c.validators.PortalData(portals)
		if err != nil {
			return rec, &ValidationError{Layout: c.layout, RecordID: raw.RecordID, Err: err}
		}
		rec.PortalData = pd
	} else if err := convert(raw.PortalData, &rec.PortalData); err != nil {
		return rec, err
	}
	return rec, nil
}

// convert re-encodes v into out, used when no validator is configured.
func convert(v, out any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("fmdapi: encode record: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("fmdapi: decode record: %w", err)
	}
	return nil
}
