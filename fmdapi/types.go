package fmdapi

import (
	"encoding/json"
	"strconv"
)

// FieldMetaData describes one field as reported by the layout metadata endpoint.
type FieldMetaData struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	DisplayType     string `json:"displayType"`
	Result          string `json:"result"`
	ValueList       string `json:"valueList,omitempty"`
	Global          bool   `json:"global"`
	AutoEnter       bool   `json:"autoEnter"`
	FourDigitYear   bool   `json:"fourDigitYear"`
	MaxRepeat       int    `json:"maxRepeat"`
	MaxCharacters   int    `json:"maxCharacters"`
	NotEmpty        bool   `json:"notEmpty"`
	Numeric         bool   `json:"numeric"`
	TimeOfDay       bool   `json:"timeOfDay"`
	RepetitionStart int    `json:"repetitionStart"`
	RepetitionEnd   int    `json:"repetitionEnd"`
}

// ValueListItem is a single member of a value list.
type ValueListItem struct {
	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
}

// ValueList is a named value list attached to a layout.
type ValueList struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Values []ValueListItem `json:"values"`
}

// LayoutMetadata is the response of GET /layouts/{layout}.
type LayoutMetadata struct {
	FieldMetaData  []FieldMetaData            `json:"fieldMetaData"`
	PortalMetaData map[string][]FieldMetaData `json:"portalMetaData"`
	ValueLists     []ValueList                `json:"valueLists,omitempty"`
}

// PortalData is the untyped shape of the portalData member of a record.
type PortalData = map[string][]map[string]any

// RawRecord is a record as returned on the wire.
type RawRecord struct {
	FieldData  map[string]any `json:"fieldData"`
	PortalData PortalData     `json:"portalData"`
	RecordID   string         `json:"recordId"`
	ModID      string         `json:"modId"`
}

// Record is a decoded record of a layout.
type Record[T, P any] struct {
	FieldData  T      `json:"fieldData"`
	PortalData P      `json:"portalData"`
	RecordID   string `json:"recordId"`
	ModID      string `json:"modId"`
}

// DataInfo summarises a read request.
type DataInfo struct {
	Database         string `json:"database"`
	Layout           string `json:"layout"`
	Table            string `json:"table"`
	TotalRecordCount int    `json:"totalRecordCount"`
	FoundCount       int    `json:"foundCount"`
	ReturnedCount    int    `json:"returnedCount"`
}

// ScriptParams selects scripts to run around a request.
type ScriptParams struct {
	Script          string `json:"script,omitempty"`
	ScriptParam     string `json:"script.param,omitempty"`
	PreRequest      string `json:"script.prerequest,omitempty"`
	PreRequestParam string `json:"script.prerequest.param,omitempty"`
	PreSort         string `json:"script.presort,omitempty"`
	PreSortParam    string `json:"script.presort.param,omitempty"`
}

func (p ScriptParams) values() map[string]string {
	out := make(map[string]string)
	for k, v := range map[string]string{
		"script":                  p.Script,
		"script.param":            p.ScriptParam,
		"script.prerequest":       p.PreRequest,
		"script.prerequest.param": p.PreRequestParam,
		"script.presort":          p.PreSort,
		"script.presort.param":    p.PreSortParam,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// ScriptResponse carries script results reported alongside a response.
type ScriptResponse struct {
	ScriptResult           string `json:"scriptResult,omitempty"`
	ScriptError            string `json:"scriptError,omitempty"`
	PreRequestScriptResult string `json:"scriptResult.prerequest,omitempty"`
	PreRequestScriptError  string `json:"scriptError.prerequest,omitempty"`
	PreSortScriptResult    string `json:"scriptResult.presort,omitempty"`
	PreSortScriptError     string `json:"scriptError.presort,omitempty"`
}

// Range limits the rows returned for a portal.
type Range struct {
	Offset int
	Limit  int
}

// PortalRanges maps portal names to row ranges.
type PortalRanges map[string]Range

// Sort orders a read request by one field.
type Sort struct {
	FieldName string `json:"fieldName"`
	SortOrder string `json:"sortOrder,omitempty"`
}

// GetParams configures reading a single record.
type GetParams struct {
	ScriptParams
	PortalRanges   PortalRanges
	LayoutResponse string
}

// ListParams configures listing records.
type ListParams struct {
	GetParams
	Offset int
	Limit  int
	Sort   []Sort
}

// FindParams configures a find request. Each query map is one find request
// row; set "omit" to "true" to omit its matches.
type FindParams struct {
	ListParams
	Query []map[string]any
	// IgnoreEmptyResult turns a "no records match" error into an empty result.
	IgnoreEmptyResult bool
}

// CreateParams configures record creation.
type CreateParams struct {
	ScriptParams
	PortalData PortalData
}

// UpdateParams configures a record update. A non-zero ModID makes the
// update fail if the record was modified since.
type UpdateParams struct {
	CreateParams
	ModID int
}

// GetResponse is the response of list, get and find requests.
type GetResponse struct {
	ScriptResponse
	Data     []RawRecord `json:"data"`
	DataInfo DataInfo    `json:"dataInfo"`
}

// CreateResponse is the response of a create request.
type CreateResponse struct {
	ScriptResponse
	RecordID string `json:"recordId"`
	ModID    string `json:"modId"`
}

// UpdateResponse is the response of an update request.
type UpdateResponse struct {
	ScriptResponse
	ModID string `json:"modId"`
}

// DeleteResponse is the response of a delete request.
type DeleteResponse struct {
	ScriptResponse
}

func (p ListParams) query() map[string]string {
	q := p.ScriptParams.values()
	if p.Offset > 0 {
		q["_offset"] = strconv.Itoa(p.Offset)
	}
	if p.Limit > 0 {
		q["_limit"] = strconv.Itoa(p.Limit)
	}
	if len(p.Sort) > 0 {
		buf, _ := json.Marshal(p.Sort)
		q["_sort"] = string(buf)
	}
	if p.LayoutResponse != "" {
		q["layout.response"] = p.LayoutResponse
	}
	return q
}

func (p FindParams) body() map[string]any {
	body := map[string]any{"query": p.Query}
	for k, v := range p.ScriptParams.values() {
		body[k] = v
	}
	if p.Offset > 0 {
		body["offset"] = strconv.Itoa(p.Offset)
	}
	if p.Limit > 0 {
		body["limit"] = strconv.Itoa(p.Limit)
	}
	if len(p.Sort) > 0 {
		body["sort"] = p.Sort
	}
	if p.LayoutResponse != "" {
		body["layout.response"] = p.LayoutResponse
	}
	return body
}

// portalQuery encodes portal ranges as _offset.<portal> and _limit.<portal>.
func (r PortalRanges) portalQuery(q map[string]string) {
	for name, rng := range r {
		if rng.Offset > 0 {
			q["_offset."+name] = strconv.Itoa(rng.Offset)
		}
		if rng.Limit > 0 {
			q["_limit."+name] = strconv.Itoa(rng.Limit)
		}
	}
}
