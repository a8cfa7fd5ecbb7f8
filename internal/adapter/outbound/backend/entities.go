package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sentinel-Gate/appgate/internal/domain/links"
)

// UndefinedAppID is used for entity paths when no app id is configured.
const UndefinedAppID = "not-defined"

// Record is one entity record as returned by the backend.
type Record = map[string]any

// EntityClient performs CRUD on /apps/{appID}/entities/{name}.
type EntityClient struct {
	client *Client
	appID  string
	name   string
}

// Entity returns a client for the named entity collection.
func (c *Client) Entity(appID, name string) *EntityClient {
	if appID == "" {
		appID = UndefinedAppID
	}
	return &EntityClient{client: c, appID: appID, name: name}
}

// Name returns the entity name.
func (e *EntityClient) Name() string {
	return e.name
}

func (e *EntityClient) path(id string) string {
	if id == "" {
		return links.AppPath(e.appID, "entities", e.name)
	}
	return links.AppPath(e.appID, "entities", e.name, id)
}

// List returns all records, optionally sorted by the backend's sort key.
func (e *EntityClient) List(ctx context.Context, sort string) ([]Record, error) {
	path := e.path("")
	if sort != "" {
		path += "?" + url.Values{"sort": {sort}}.Encode()
	}
	var records []Record
	if err := e.client.doRequest(ctx, "entity_list", http.MethodGet, path, nil, &records); err != nil {
		return nil, fmt.Errorf("list %s: %w", e.name, err)
	}
	return records, nil
}

// Get returns one record.
func (e *EntityClient) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := e.client.doRequest(ctx, "entity_get", http.MethodGet, e.path(id), nil, &rec); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", e.name, id, err)
	}
	return rec, nil
}

// Create stores a new record and returns it as saved.
func (e *EntityClient) Create(ctx context.Context, data Record) (Record, error) {
	var rec Record
	if err := e.client.doRequest(ctx, "entity_create", http.MethodPost, e.path(""), data, &rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", e.name, err)
	}
	return rec, nil
}

// Update replaces a record with PUT and returns it as saved.
func (e *EntityClient) Update(ctx context.Context, id string, data Record) (Record, error) {
	var rec Record
	if err := e.client.doRequest(ctx, "entity_update", http.MethodPut, e.path(id), data, &rec); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", e.name, id, err)
	}
	return rec, nil
}

// Delete removes a record and returns the backend's response body.
func (e *EntityClient) Delete(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := e.client.doRequest(ctx, "entity_delete", http.MethodDelete, e.path(id), nil, &rec); err != nil {
		return nil, fmt.Errorf("delete %s %s: %w", e.name, id, err)
	}
	return rec, nil
}
