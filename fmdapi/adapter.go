package fmdapi

import "context"

// Adapter is the transport a Client sends its requests through. Every
// method is addressed by layout name.
type Adapter interface {
	List(ctx context.Context, layout string, p ListParams) (*GetResponse, error)
	Get(ctx context.Context, layout string, recordID int, p GetParams) (*GetResponse, error)
	Find(ctx context.Context, layout string, p FindParams) (*GetResponse, error)
	Create(ctx context.Context, layout string, fieldData map[string]any, p CreateParams) (*CreateResponse, error)
	Update(ctx context.Context, layout string, recordID int, fieldData map[string]any, p UpdateParams) (*UpdateResponse, error)
	Delete(ctx context.Context, layout string, recordID int, p ScriptParams) (*DeleteResponse, error)
	LayoutMetadata(ctx context.Context, layout string) (*LayoutMetadata, error)
}

// TokenStore persists Data API session tokens between processes.
// Token returns "" and a nil error when no token is stored under key.
type TokenStore interface {
	Token(ctx context.Context, key string) (string, error)
	SetToken(ctx context.Context, key, token string) error
	ClearToken(ctx context.Context, key string) error
}
